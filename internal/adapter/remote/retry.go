// Package remote holds the timeout, retry and throttling policy shared by
// the embedding and completion clients.
package remote

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 200 * time.Millisecond
	defaultMaxDelay  = 5 * time.Second
)

// RetryableError marks a failure worth another attempt. After, when set,
// overrides the computed backoff (e.g. from a Retry-After header).
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so Retrier.Do tries again.
func Retryable(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// Retrier runs a call with bounded attempts and exponential backoff. An
// optional rate limiter spaces out outbound requests.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	limiter     *rate.Limiter
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. maxAttempts <= 0 means 3; rps <= 0 disables
// throttling.
func NewRetrier(maxAttempts int, rps float64) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = defaultAttempts
	}
	r := &Retrier{
		maxAttempts: maxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		sleep:       sleepContext,
	}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return r
}

// MaxAttempts returns the attempt bound.
func (r *Retrier) MaxAttempts() int { return r.maxAttempts }

// Do calls fn until it succeeds, returns a non-retryable error, the attempt
// bound is reached or ctx is done. The returned error is never a
// *RetryableError.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		if attempt+1 >= r.maxAttempts {
			return re.Err
		}

		delay := re.After
		if delay <= 0 {
			delay = r.backoff(attempt)
		}
		if delay > r.maxDelay {
			delay = r.maxDelay
		}
		if err := r.sleep(ctx, delay); err != nil {
			return errors.Join(re.Err, err)
		}
	}
}

func (r *Retrier) backoff(attempt int) time.Duration {
	d := r.baseDelay << attempt
	if d <= 0 || d > r.maxDelay {
		return r.maxDelay
	}
	return d
}

// ShouldRetryStatus reports whether an HTTP status is transient.
func ShouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// RetryAfter parses a Retry-After header given in seconds.
func RetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
