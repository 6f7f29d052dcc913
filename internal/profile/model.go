package profile

import (
	"fmt"
	"time"

	"github.com/openkcm/profile-session/internal/serviceerr"
)

// BirthdateLayout is the layout of Profile.Birthdate.
const BirthdateLayout = time.DateOnly

// Profile is the user profile as cached locally and served by the account service.
// Optional fields are empty when absent.
type Profile struct {
	Name      string `json:"name" yaml:"name"`
	Birthdate string `json:"birthdate,omitempty" yaml:"birthdate,omitempty"` // YYYY-MM-DD
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Session is the authentication state of the local user.
type Session struct {
	Token         string // Empty before authentication
	LastFetchedAt int64  // Epoch milliseconds of the last profile fetch, 0 if never fetched
}

// ProfileUpdate carries the fields of an update. Nil fields are taken from the
// stored profile.
type ProfileUpdate struct {
	Name      *string
	Location  *string
	Birthdate *string
}

// Result is the outcome of an operation.
type Result struct {
	Success      bool   `json:"success" yaml:"success"`
	ErrorMessage string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
}

// Kind selects the events a subscriber receives.
type Kind int

const (
	SignupResult Kind = iota
	LoginResult
	ProfileUpdateResult
	ProfileChanged
	ProfileRefreshResult
)

func (k Kind) String() string {
	switch k {
	case SignupResult:
		return "SignupResult"
	case LoginResult:
		return "LoginResult"
	case ProfileUpdateResult:
		return "ProfileUpdateResult"
	case ProfileChanged:
		return "ProfileChanged"
	case ProfileRefreshResult:
		return "ProfileRefreshResult"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ResultKinds lists the kinds whose events are Results.
var ResultKinds = []Kind{SignupResult, LoginResult, ProfileUpdateResult, ProfileRefreshResult}

func success() Result {
	return Result{Success: true}
}

func failure(msg string) Result {
	return Result{Success: false, ErrorMessage: msg}
}

// merge fills the omitted fields of u from p.
func (u ProfileUpdate) merge(p Profile) Profile {
	merged := p
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Location != nil {
		merged.Location = *u.Location
	}
	if u.Birthdate != nil {
		merged.Birthdate = *u.Birthdate
	}

	return merged
}

func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// Validate checks the invariants a profile sent to the account service must hold.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", serviceerr.ErrInvalidProfile)
	}
	if p.Birthdate != "" {
		if _, err := time.Parse(BirthdateLayout, p.Birthdate); err != nil {
			return fmt.Errorf("%w: birthdate %q is not YYYY-MM-DD", serviceerr.ErrInvalidProfile, p.Birthdate)
		}
	}

	return nil
}
