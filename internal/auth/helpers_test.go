package auth

import (
	"io"
	"net/http"
	"net/url"

	"github.com/systmms/sitectl/internal/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewWithWriter(true, true, io.Discard)
}

// rewriteTransport redirects every request to the test server, keeping
// the original path. Lets exchanges with hardwired https endpoints run
// against httptest.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}
