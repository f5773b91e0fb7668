package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/systmms/sitectl/internal/errors"
	"github.com/systmms/sitectl/internal/session"
	"github.com/systmms/sitectl/internal/strategy"
)

func TestPolicyFromRequest(t *testing.T) {
	t.Parallel()

	req := strategy.NewConnectRequest("https://contoso.example")
	req.RetryCount = 3
	req.RetryWaitSeconds = 2
	req.RequestTimeoutMs = 5000
	req.MinimalHealthScore = 4

	policy, err := session.PolicyFromRequest(req)
	require.NoError(t, err)

	assert.Equal(t, 3, policy.RetryCount)
	assert.Equal(t, 2, policy.RetryWaitSeconds)
	assert.Equal(t, 5000, policy.RequestTimeoutMs)
	assert.Equal(t, 4, policy.MinimalHealthScore)
	assert.True(t, policy.HealthGateEnabled())
}

func TestPolicyFromRequestRejectsBadTuning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*strategy.ConnectRequest)
	}{
		{
			name:   "negative_retry_count",
			mutate: func(req *strategy.ConnectRequest) { req.RetryCount = -1 },
		},
		{
			name:   "negative_retry_wait",
			mutate: func(req *strategy.ConnectRequest) { req.RetryWaitSeconds = -1 },
		},
		{
			name:   "zero_timeout",
			mutate: func(req *strategy.ConnectRequest) { req.RequestTimeoutMs = 0 },
		},
		{
			name:   "health_score_below_sentinel",
			mutate: func(req *strategy.ConnectRequest) { req.MinimalHealthScore = -2 },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := strategy.NewConnectRequest("https://contoso.example")
			tt.mutate(&req)

			_, err := session.PolicyFromRequest(req)
			var validation scerrors.ValidationError
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestHealthGateDisabledBySentinel(t *testing.T) {
	t.Parallel()

	policy := session.RetryPolicy{MinimalHealthScore: -1}
	assert.False(t, policy.HealthGateEnabled())

	policy.MinimalHealthScore = 0
	assert.True(t, policy.HealthGateEnabled())
}
