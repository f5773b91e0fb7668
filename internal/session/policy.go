package session

import (
	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/strategy"
)

// RetryPolicy is the resilience tuning attached to every connection.
// The core constructs it once per connect; downstream request code
// consults it and never mutates it.
type RetryPolicy struct {
	// MinimalHealthScore gates requests on the server-reported health
	// score. -1 disables the gate entirely.
	MinimalHealthScore int

	RetryCount       int
	RetryWaitSeconds int
	RequestTimeoutMs int
}

// PolicyFromRequest validates the request's tuning fields and builds the
// immutable policy.
func PolicyFromRequest(req strategy.ConnectRequest) (RetryPolicy, error) {
	if req.RetryCount < 0 {
		return RetryPolicy{}, scerrors.ValidationError{Strategy: "connect", Message: "retry-count must be >= 0"}
	}
	if req.RetryWaitSeconds < 0 {
		return RetryPolicy{}, scerrors.ValidationError{Strategy: "connect", Message: "retry-wait must be >= 0"}
	}
	if req.RequestTimeoutMs <= 0 {
		return RetryPolicy{}, scerrors.ValidationError{Strategy: "connect", Message: "request-timeout must be > 0"}
	}
	if req.MinimalHealthScore < -1 {
		return RetryPolicy{}, scerrors.ValidationError{Strategy: "connect", Message: "minimal-health-score must be -1 (disabled) or >= 0"}
	}
	return RetryPolicy{
		MinimalHealthScore: req.MinimalHealthScore,
		RetryCount:         req.RetryCount,
		RetryWaitSeconds:   req.RetryWaitSeconds,
		RequestTimeoutMs:   req.RequestTimeoutMs,
	}, nil
}

// HealthGateEnabled reports whether the health-score gate is active.
func (p RetryPolicy) HealthGateEnabled() bool {
	return p.MinimalHealthScore >= 0
}
