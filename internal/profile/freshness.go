package profile

import (
	"fmt"
	"time"

	"github.com/openkcm/profile-session/internal/serviceerr"
)

const (
	DefaultSoftTTL = 5 * time.Minute
	DefaultHardTTL = 60 * time.Minute
)

// Freshness classifies the age of the cached profile.
type Freshness int

const (
	// Fresh cache is served as is.
	Fresh Freshness = iota
	// StaleSoft cache is served, then replaced by a fetched profile.
	StaleSoft
	// StaleHard cache is not served; only the fetched profile is.
	StaleHard
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case StaleSoft:
		return "stale_soft"
	case StaleHard:
		return "stale_hard"
	default:
		return fmt.Sprintf("freshness(%d)", int(f))
	}
}

// Classify maps the age of the cache to a Freshness. Both thresholds are
// inclusive lower bounds of the staler class.
func Classify(elapsed, softTTL, hardTTL time.Duration) Freshness {
	switch {
	case elapsed >= hardTTL:
		return StaleHard
	case elapsed >= softTTL:
		return StaleSoft
	default:
		return Fresh
	}
}

// Policy holds the TTL thresholds.
type Policy struct {
	SoftTTL time.Duration
	HardTTL time.Duration
}

func DefaultPolicy() Policy {
	return Policy{SoftTTL: DefaultSoftTTL, HardTTL: DefaultHardTTL}
}

func (p Policy) Validate() error {
	if p.SoftTTL <= 0 || p.HardTTL <= 0 {
		return fmt.Errorf("%w: thresholds must be positive", serviceerr.ErrInvalidFreshness)
	}
	if p.SoftTTL >= p.HardTTL {
		return fmt.Errorf("%w: soft TTL %s must be below hard TTL %s", serviceerr.ErrInvalidFreshness, p.SoftTTL, p.HardTTL)
	}

	return nil
}

// Evaluate classifies a cache last fetched at lastFetchedAt (epoch millis) as seen at now.
func (p Policy) Evaluate(now time.Time, lastFetchedAt int64) Freshness {
	elapsed := time.Duration(epochMillis(now)-lastFetchedAt) * time.Millisecond
	return Classify(elapsed, p.SoftTTL, p.HardTTL)
}
