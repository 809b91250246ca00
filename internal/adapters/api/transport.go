package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"

	// rateLimitBuffer is added on top of the advertised reset time.
	rateLimitBuffer = time.Second
)

// ErrRateLimitRetriesExhausted is returned once MaxRetries waits did not
// get the request past the rate limit.
var ErrRateLimitRetriesExhausted = errors.New("github rate limit retries exhausted")

// RateLimitRecorder is notified every time the transport waits for a reset.
type RateLimitRecorder interface {
	RateLimitWait()
}

// RateLimitTransport is an http.RoundTripper that hides GitHub's primary
// rate limit from its callers. A 403 with no remaining quota is not returned;
// the transport waits until the advertised reset (plus a one second buffer)
// and sends the same request again. Every other response is passed through.
type RateLimitTransport struct {
	Base     http.RoundTripper
	Clock    clock.Clock
	Recorder RateLimitRecorder
	Logger   logrus.FieldLogger

	// MaxRetries bounds the number of waits per request. Zero means unbounded.
	MaxRetries int
}

// NewRateLimitTransport wraps base, defaulting to http.DefaultTransport.
func NewRateLimitTransport(base http.RoundTripper, clk clock.Clock, recorder RateLimitRecorder, logger logrus.FieldLogger) *RateLimitTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RateLimitTransport{
		Base:     base,
		Clock:    clk,
		Recorder: recorder,
		Logger:   logger,
	}
}

func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.Base.RoundTrip(req)

	for attempt := 0; err == nil && IsRateLimited(resp); attempt++ {
		if t.MaxRetries > 0 && attempt >= t.MaxRetries {
			discard(resp)
			return nil, fmt.Errorf("%w: %s %s after %d waits", ErrRateLimitRetriesExhausted, req.Method, req.URL.Redacted(), attempt)
		}

		wait := WaitDuration(resp.Header, t.Clock.Now())
		discard(resp)

		t.Logger.WithFields(logrus.Fields{
			"url":  req.URL.Redacted(),
			"wait": wait.String(),
		}).Warnf("GitHub API rate limit exceeded. Waiting for %d seconds...", int(wait.Round(time.Second)/time.Second))
		if t.Recorder != nil {
			t.Recorder.RateLimitWait()
		}

		if err := t.sleep(req.Context(), wait); err != nil {
			return nil, err
		}

		retry, rewindErr := rewind(req)
		if rewindErr != nil {
			return nil, rewindErr
		}

		t.Logger.WithField("url", req.URL.Redacted()).Info("Rate limit reset. Retrying request...")
		resp, err = t.Base.RoundTrip(retry)
	}

	return resp, err
}

func (t *RateLimitTransport) sleep(ctx context.Context, d time.Duration) error {
	timer := t.Clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

// IsRateLimited reports whether resp signals an exhausted primary rate limit.
func IsRateLimited(resp *http.Response) bool {
	return resp != nil &&
		resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get(headerRateLimitRemaining) == "0"
}

// WaitDuration computes how long to wait for the quota to reset: the whole
// seconds left until X-RateLimit-Reset, never negative, plus the buffer. An
// unparsable reset header means no wait beyond the buffer.
func WaitDuration(h http.Header, now time.Time) time.Duration {
	reset, err := strconv.ParseInt(h.Get(headerRateLimitReset), 10, 64)
	if err != nil {
		return rateLimitBuffer
	}

	seconds := reset - now.Unix()
	if seconds < 0 {
		seconds = 0
	}

	return time.Duration(seconds)*time.Second + rateLimitBuffer
}

// rewind returns a request that can be sent again. Bodies are restored via
// GetBody; requests without a body are reused as is.
func rewind(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("failed to retry %s %s: request body cannot be replayed", req.Method, req.URL.Redacted())
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}

	retry := req.Clone(req.Context())
	retry.Body = body
	return retry, nil
}

func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
