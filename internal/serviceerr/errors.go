package serviceerr

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("not found")
var ErrUnknownKind = errors.New("unknown subscription kind")
var ErrInvalidProfile = errors.New("invalid profile")
var ErrInvalidFreshness = errors.New("invalid freshness thresholds")
var ErrUnknownStoreType = errors.New("unknown store type")
var ErrInvalidWatchInterval = errors.New("invalid watch interval")

// NetworkError is the failure reported by the remote account service.
// Status is set when the service answered with a non-2xx status, Reason when
// the request never got an answer.
type NetworkError struct {
	Status  int
	Reason  string
	Message string
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("network error: %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("network error: %s: %s", e.Reason, e.Message)
}

// StatusOrReason returns the HTTP status text when a status is known and the
// transport reason otherwise.
func (e *NetworkError) StatusOrReason() string {
	if e.Status != 0 {
		return http.StatusText(e.Status)
	}

	return e.Reason
}

// Message extracts the user facing message of err. A NetworkError anywhere in
// the chain wins over the wrapped error text.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return netErr.Message
	}

	return err.Error()
}
