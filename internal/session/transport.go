package session

import (
	"context"
	"crypto/tls"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"

	"github.com/systmms/sitectl/internal/logging"
)

// healthScoreHeader is the server-reported load indicator: 0 is healthy,
// higher values mean the farm is shedding load.
const healthScoreHeader = "X-Health-Score"

var (
	insecureOnce sync.Once
)

// EnableInsecureTransport installs a process-wide permissive certificate
// validator. There is no teardown: once enabled it persists for the
// process lifetime, which is why enabling it logs a warning every time
// it is requested.
func EnableInsecureTransport(logger *logging.Logger) {
	logger.Warn("Certificate validation disabled for the remainder of this process")
	insecureOnce.Do(func() {
		transport, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			return
		}
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	})
}

// newRetryClient builds the HTTP client every connection request flows
// through, configured entirely from the connection's retry policy.
func newRetryClient(policy RetryPolicy) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = policy.RetryCount
	client.RetryWaitMin = time.Duration(policy.RetryWaitSeconds) * time.Second
	// Backoff doubles per attempt; cap it well above the base wait so a
	// throttled server gets real breathing room.
	client.RetryWaitMax = time.Duration(policy.RetryWaitSeconds) * 16 * time.Second
	if client.RetryWaitMax == 0 {
		client.RetryWaitMax = time.Second
	}
	client.HTTPClient = &http.Client{
		Timeout:   time.Duration(policy.RequestTimeoutMs) * time.Millisecond,
		Transport: http.DefaultTransport,
	}
	client.Logger = nil
	client.CheckRetry = healthAwareRetryPolicy(policy)
	return client
}

// healthAwareRetryPolicy augments the default retry conditions with the
// health-score gate: a response whose reported score exceeds the
// configured minimum is treated as retryable even when its status code
// is fine.
func healthAwareRetryPolicy(policy RetryPolicy) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, checkErr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if retry || checkErr != nil {
			return retry, checkErr
		}
		if resp != nil && policy.HealthGateEnabled() && unhealthy(resp, policy.MinimalHealthScore) {
			return true, nil
		}
		return false, nil
	}
}

// unhealthy reports whether the response carries a health score above
// the allowed minimum. Responses without the header pass the gate.
func unhealthy(resp *http.Response, minimalHealthScore int) bool {
	raw := resp.Header.Get(healthScoreHeader)
	if raw == "" {
		return false
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return score > minimalHealthScore
}

// newBreaker builds the circuit breaker gating a connection's request
// path. The breaker opens after a run of exhausted-retry failures and
// probes again after a cooldown.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
