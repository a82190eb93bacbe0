package analysis

import (
	"net/http"
	"strings"
	"time"
)

// authTransport injects a Bearer token into every request when a token is set.
type authTransport struct {
	base  http.RoundTripper
	token string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

// NewClient creates an *http.Client configured for analysis service calls.
// timeout is the per-request deadline (0 = no timeout).
// token is automatically injected as a Bearer token on every request when non-empty.
func NewClient(timeout time.Duration, token string) *http.Client {
	token = strings.TrimSpace(token)
	base := http.DefaultTransport
	var transport http.RoundTripper = base
	if token != "" {
		transport = &authTransport{base: base, token: token}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
