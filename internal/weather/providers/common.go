package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
)

// Backoff controls how failed upstream calls are retried.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var defaultBackoff = Backoff{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

// delay is the wait before retry n (0-based), doubling up to MaxInterval.
func (b Backoff) delay(n int) time.Duration {
	d := b.InitialInterval << uint(n)
	if b.MaxInterval > 0 && (d > b.MaxInterval || d <= 0) {
		d = b.MaxInterval
	}
	return d
}

var (
	errRateLimited    = errors.New("rate limited")
	errServerError    = errors.New("server error")
	errUnexpected     = errors.New("unexpected status code")
	errCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidBackoff = errors.New("invalid backoff configuration")
)

// statusError is a non-2xx answer.
type statusError struct {
	code       int
	retryAfter time.Duration
	err        error
}

func (e *statusError) Error() string { return fmt.Sprintf("%v: %d", e.err, e.code) }

func (e *statusError) Unwrap() error { return e.err }

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// upstream is one remote JSON API reached through retries and a circuit
// breaker. The breaker trips after five consecutive failures and probes again
// after two minutes.
type upstream struct {
	name    string
	client  *http.Client
	backoff Backoff
	breaker *gobreaker.CircuitBreaker
}

func newUpstream(name string, client *http.Client) *upstream {
	return &upstream{
		name:    name,
		client:  client,
		backoff: defaultBackoff,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.L().Warn("upstream_breaker", "upstream", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// getJSON fetches base?query and decodes the body into dst.
func (u *upstream) getJSON(ctx context.Context, base string, query url.Values, dst any) error {
	target := base + "?" + query.Encode()
	resp, err := u.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", u.name, err)
	}
	return nil
}

// do sends the request built by build until it succeeds. Transport errors,
// 429 and 5xx are retried with backoff (a longer Retry-After is honoured up
// to MaxInterval); other statuses fail at once. An open breaker fails fast.
func (u *upstream) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	if u.client == nil {
		return nil, errNoHTTPClient
	}
	if u.backoff.MaxRetries < 0 || u.backoff.InitialInterval <= 0 {
		return nil, errInvalidBackoff
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := build()
		if err != nil {
			return nil, err
		}

		res, err := u.breaker.Execute(func() (interface{}, error) {
			return u.roundTrip(req)
		})
		if err == nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(u.name, "ok").Inc()
			return res.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequestsTotal.WithLabelValues(u.name, "open").Inc()
			return nil, fmt.Errorf("%s: %w: %v", u.name, errCircuitOpen, err)
		}

		wait, retry := u.retryAfter(ctx, err, attempt)
		if !retry {
			metrics.UpstreamRequestsTotal.WithLabelValues(u.name, "error").Inc()
			return nil, err
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(u.name, "retry").Inc()
		logger.L().Debug("upstream_retry", "upstream", u.name, "attempt", attempt+1, "wait", wait, "err", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryAfter decides whether a failed attempt is retried and how long to
// wait first.
func (u *upstream) retryAfter(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= u.backoff.MaxRetries || ctx.Err() != nil {
		return 0, false
	}
	wait := u.backoff.delay(attempt)

	var se *statusError
	if !errors.As(err, &se) {
		return wait, true
	}
	if !se.retryable() {
		return 0, false
	}
	if se.retryAfter > wait {
		wait = se.retryAfter
		if u.backoff.MaxInterval > 0 && wait > u.backoff.MaxInterval {
			wait = u.backoff.MaxInterval
		}
	}
	return wait, true
}

func (u *upstream) roundTrip(req *http.Request) (*http.Response, error) {
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	resp.Body.Close()

	se := &statusError{code: resp.StatusCode, err: errUnexpected}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		se.err = errRateLimited
		se.retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	case resp.StatusCode >= 500:
		se.err = errServerError
	}
	return nil, se
}

// parseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
