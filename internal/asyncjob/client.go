package asyncjob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"server/internal/infra"
)

// State tracks the lifecycle of a remote job.
type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Handle is created on submission and mutated only by the client. It is
// discarded when the owning task finishes.
type Handle struct {
	ProviderJobID string
	SubmittedAt   time.Time
	Attempts      int
	State         State
}

// Status is one observation of a remote job, as reported by the provider.
type Status struct {
	Done       bool
	Failed     bool
	ResultURL  string
	ShareURL   string
	ErrCode    string
	ErrMessage string
	ErrDetail  string
}

// StatusError carries a non-2xx provider response so callers can classify it.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("provider status %d", e.Code)
	}
	return fmt.Sprintf("provider status %d: %s", e.Code, body)
}

// IsTransient reports whether err is a retry-worthy server-side failure.
func IsTransient(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= http.StatusInternalServerError
}

// IsPermanent reports whether err is a client-side failure that must not be
// retried.
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= http.StatusBadRequest && se.Code < http.StatusInternalServerError
}

// IsNotFound reports whether err marks a resource the provider no longer has.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// SubmitFunc issues one submission request and returns the provider job id.
type SubmitFunc func(ctx context.Context) (string, error)

// StatusFunc queries the remote job once.
type StatusFunc func(ctx context.Context, jobID string) (Status, error)

// PollResult is the terminal outcome of a poll loop.
type PollResult struct {
	State         State
	URL           string
	ShareFallback bool
	ErrCode       string
	ErrMessage    string
	ErrDetail     string
}

// Client runs the submit-then-poll protocol used by slow asynchronous
// providers. Submission retries transient failures with linear backoff;
// polling treats transient failures as "not yet ready" and never aborts the
// loop early for them.
type Client struct {
	Logger           *infra.Logger
	MaxSubmitRetries int
	RetryDelay       time.Duration
	PollInterval     time.Duration
	MaxPollAttempts  int

	// Sleep is injectable for tests; defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

const (
	defaultSubmitRetries = 3
	defaultRetryDelay    = 2 * time.Second
	defaultPollInterval  = 5 * time.Second
	defaultPollAttempts  = 60
)

func (c *Client) submitRetries() int {
	if c.MaxSubmitRetries > 0 {
		return c.MaxSubmitRetries
	}
	return defaultSubmitRetries
}

func (c *Client) retryDelay() time.Duration {
	if c.RetryDelay > 0 {
		return c.RetryDelay
	}
	return defaultRetryDelay
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

func (c *Client) pollAttempts() int {
	if c.MaxPollAttempts > 0 {
		return c.MaxPollAttempts
	}
	return defaultPollAttempts
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit issues the submission call, retrying 5xx responses with linear
// backoff (retryDelay x attempt number) up to the configured budget. 4xx
// responses are returned immediately and never retried.
func (c *Client) Submit(ctx context.Context, fn SubmitFunc) (*Handle, error) {
	budget := c.submitRetries()
	var lastErr error
	for attempt := 1; attempt <= budget+1; attempt++ {
		jobID, err := fn(ctx)
		if err == nil {
			return &Handle{
				ProviderJobID: jobID,
				SubmittedAt:   time.Now().UTC(),
				State:         StateSubmitted,
			}, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		if attempt > budget {
			break
		}
		delay := c.retryDelay() * time.Duration(attempt)
		if c.Logger != nil {
			c.Logger.Warn().Err(err).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("asyncjob: transient submit failure, retrying")
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// Poll queries job status on a fixed interval until the remote reports a
// terminal state or the attempt budget is exhausted. Exhaustion yields
// StateTimedOut carrying the last known reference URL as a best-effort
// result; partial success is preferred over total failure for a long job.
func (c *Client) Poll(ctx context.Context, handle *Handle, fn StatusFunc) PollResult {
	handle.State = StatePolling
	var lastResult, lastShare string

	attempts := c.pollAttempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		handle.Attempts = attempt

		status, err := fn(ctx, handle.ProviderJobID)
		switch {
		case err == nil:
			if status.ResultURL != "" {
				lastResult = status.ResultURL
			}
			if status.ShareURL != "" {
				lastShare = status.ShareURL
			}
			if status.Failed {
				handle.State = StateFailed
				return PollResult{
					State:      StateFailed,
					ErrCode:    status.ErrCode,
					ErrMessage: status.ErrMessage,
					ErrDetail:  status.ErrDetail,
				}
			}
			if status.Done {
				handle.State = StateCompleted
				if status.ResultURL != "" {
					return PollResult{State: StateCompleted, URL: status.ResultURL}
				}
				return PollResult{State: StateCompleted, URL: status.ShareURL, ShareFallback: status.ShareURL != ""}
			}
		case IsTransient(err):
			// Server-side hiccup while the job renders; treat as not ready.
			if c.Logger != nil {
				c.Logger.Warn().Err(err).
					Str("job_id", handle.ProviderJobID).
					Int("attempt", attempt).
					Msg("asyncjob: transient poll failure")
			}
		case ctx.Err() != nil:
			handle.State = StateTimedOut
			return c.timedOut(lastResult, lastShare)
		default:
			handle.State = StateFailed
			return PollResult{State: StateFailed, ErrMessage: err.Error()}
		}

		if attempt == attempts {
			break
		}
		if err := c.sleep(ctx, c.pollInterval()); err != nil {
			break
		}
	}

	handle.State = StateTimedOut
	return c.timedOut(lastResult, lastShare)
}

func (c *Client) timedOut(lastResult, lastShare string) PollResult {
	url := lastResult
	share := false
	if url == "" && lastShare != "" {
		url = lastShare
		share = true
	}
	return PollResult{State: StateTimedOut, URL: url, ShareFallback: share}
}
