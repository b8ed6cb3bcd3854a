// Package httpkit builds the outbound HTTP clients shared by every
// component that talks to a remote service. All clients identify
// themselves with the Argos User-Agent and can opt in to bounded
// retries for transient transport failures.
package httpkit

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bacoazul/Argos-Core/internal/buildinfo"
)

// Option configures a client built by [NewClient].
type Option func(*settings)

type settings struct {
	timeout    time.Duration
	userAgent  string
	retryMax   int
	retryDelay time.Duration
}

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithRetry enables retries on transport errors and 5xx responses.
// max is the number of retries after the initial attempt; delay is the
// pause between attempts.
func WithRetry(max int, delay time.Duration) Option {
	return func(s *settings) {
		s.retryMax = max
		s.retryDelay = delay
	}
}

// NewClient returns an *http.Client configured with the given options.
// The zero configuration yields a 30-second timeout and the Argos
// User-Agent.
func NewClient(opts ...Option) *http.Client {
	s := settings{
		timeout:   30 * time.Second,
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	var rt http.RoundTripper = http.DefaultTransport
	rt = &userAgentTransport{base: rt, userAgent: s.userAgent}
	if s.retryMax > 0 {
		rt = &retryTransport{base: rt, max: s.retryMax, delay: s.retryDelay}
	}

	return &http.Client{
		Timeout:   s.timeout,
		Transport: rt,
	}
}

// userAgentTransport sets the User-Agent header on every request that
// does not already carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// retryTransport retries transport errors and 5xx status codes.
// Requests with a body are only retried when GetBody is available to
// rewind them.
type retryTransport struct {
	base  http.RoundTripper
	max   int
	delay time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= t.max; attempt++ {
		if attempt > 0 {
			if req.Body != nil {
				if req.GetBody == nil {
					return resp, err
				}
				body, berr := req.GetBody()
				if berr != nil {
					return resp, err
				}
				req.Body = body
			}
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.delay):
			}
		}

		resp, err = t.base.RoundTrip(req)
		if err != nil {
			continue
		}
		if resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt < t.max {
			resp.Body.Close()
		}
	}
	return resp, err
}

// ReadErrorBody drains up to limit bytes of a response body for error
// messages, so failures include what the server actually said.
func ReadErrorBody(resp *http.Response, limit int64) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return fmt.Sprintf("(unreadable body: %v)", err)
	}
	return string(body)
}
