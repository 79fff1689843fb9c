package polling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"darkroom/internal/api"
	"darkroom/internal/logging"
)

const (
	// DefaultInterval is the delay between status queries.
	DefaultInterval = 10 * time.Second
	// DefaultTimeout is the wall-clock budget for a single wait.
	DefaultTimeout = 30 * time.Minute
	// backoffCap bounds interval growth when backoff is enabled.
	backoffCap = 8
)

// StatusFunc issues one status query. The workflow adapts the edit and export
// status endpoints onto this signature.
type StatusFunc func(ctx context.Context, projectUUID string) (api.StatusDetails, error)

// TimeoutError reports that the wall-clock budget elapsed before the job
// reached a terminal state. The remote job is not cancelled; only the local
// wait is abandoned. LastStatus carries the most recent snapshot for
// diagnostics.
type TimeoutError struct {
	Budget     time.Duration
	LastStatus api.StatusDetails
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("polling timed out after %s (last status %s)", e.Budget, e.LastStatus.Status)
}

func (e *TimeoutError) Unwrap() error { return api.ErrTimeout }

// EditingFailedError reports that the service marked the job FAILED.
type EditingFailedError struct {
	Message    string
	LastStatus api.StatusDetails
}

func (e *EditingFailedError) Error() string {
	if e.Message == "" {
		return "editing job reported failure"
	}
	return fmt.Sprintf("editing job reported failure: %s", e.Message)
}

func (e *EditingFailedError) Unwrap() error { return api.ErrEditingFailed }

// Config bounds one poller's wait behavior.
type Config struct {
	// Interval is the delay between non-terminal queries.
	Interval time.Duration
	// Timeout is the wall-clock budget before the wait is abandoned.
	Timeout time.Duration
	// Backoff doubles the interval after each non-terminal query, capped at
	// backoffCap times the initial interval.
	Backoff bool
	// QueryRetry bounds per-query transient retries. Retries do not extend
	// the overall timeout accounting.
	QueryRetry api.RetryPolicy
}

// Poller repeatedly queries job status until a terminal state or timeout.
type Poller struct {
	query  StatusFunc
	cfg    Config
	logger *slog.Logger

	now   func() time.Time
	sleep api.Sleeper
}

// Option customizes a Poller; used by tests to control time.
type Option func(*Poller)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithSleeper overrides how inter-attempt delays are performed.
func WithSleeper(sleep api.Sleeper) Option {
	return func(p *Poller) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// New constructs a Poller around the given status query.
func New(query StatusFunc, cfg Config, logger *slog.Logger, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	p := &Poller{
		query:  query,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "poller"),
		now:    time.Now,
		sleep:  api.SleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait polls until the job reaches a terminal state or the budget elapses.
// COMPLETED and EXPORTED return the final snapshot; FAILED returns an
// *EditingFailedError carrying the service message; budget exhaustion returns
// a *TimeoutError carrying the last observed snapshot.
func (p *Poller) Wait(ctx context.Context, projectUUID string) (api.StatusDetails, error) {
	deadline := p.now().Add(p.cfg.Timeout)
	interval := p.cfg.Interval
	var last api.StatusDetails

	for {
		var status api.StatusDetails
		err := p.cfg.QueryRetry.Retry(ctx, func() error {
			s, queryErr := p.query(ctx, projectUUID)
			if queryErr != nil {
				return queryErr
			}
			status = s
			return nil
		})
		if err != nil {
			return last, fmt.Errorf("status query: %w", err)
		}
		last = status
		p.logger.Debug("status observed",
			logging.FieldProjectUUID, projectUUID,
			"status", string(status.Status),
			"progress", progressValue(status),
		)

		switch status.Status {
		case api.StatusFailed:
			return status, &EditingFailedError{Message: status.Details, LastStatus: status}
		case api.StatusCompleted, api.StatusExported:
			return status, nil
		}

		if !p.now().Before(deadline) {
			return status, &TimeoutError{Budget: p.cfg.Timeout, LastStatus: status}
		}
		if err := p.sleep(ctx, interval); err != nil {
			return status, fmt.Errorf("polling interrupted: %w", err)
		}
		if p.cfg.Backoff && interval < p.cfg.Interval*backoffCap {
			interval *= 2
			if interval > p.cfg.Interval*backoffCap {
				interval = p.cfg.Interval * backoffCap
			}
		}
	}
}

func progressValue(status api.StatusDetails) float64 {
	if status.Progress == nil {
		return 0
	}
	return *status.Progress
}
