package transcribe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/config"
)

// PollPolicy bounds how a job is waited on. Delays start at Interval and grow
// by Multiplier up to MaxInterval; the whole wait gives up after Timeout.
type PollPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
	Timeout     time.Duration
	// NoticeEvery marks every n-th attempt as worth telling a waiting user about.
	NoticeEvery int
}

// PolicyFromConfig converts poll configuration.
func PolicyFromConfig(cfg config.PollConfig) PollPolicy {
	return PollPolicy{
		Interval:    cfg.Interval,
		MaxInterval: cfg.MaxInterval,
		Multiplier:  cfg.Multiplier,
		Timeout:     cfg.Timeout,
		NoticeEvery: cfg.NoticeEvery,
	}
}

// Next returns the delay that follows d.
func (p PollPolicy) Next(d time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return d
	}
	next := time.Duration(float64(d) * p.Multiplier)
	if p.MaxInterval > 0 && next > p.MaxInterval {
		return p.MaxInterval
	}
	return next
}

// Notice reports whether attempt is a notice attempt.
func (p PollPolicy) Notice(attempt int) bool {
	return p.NoticeEvery > 0 && attempt%p.NoticeEvery == 0
}

// StatusFunc observes each status read while waiting.
type StatusFunc func(attempt int, status JobStatus)

// Poller waits for jobs to reach a terminal state.
type Poller struct {
	client JobClient
	policy PollPolicy
	logger *zap.Logger
}

func NewPoller(client JobClient, policy PollPolicy, logger *zap.Logger) *Poller {
	return &Poller{client: client, policy: policy, logger: logger}
}

// Policy returns the poller's policy.
func (p *Poller) Policy() PollPolicy {
	return p.policy
}

// Wait polls until the job completes. A failed job yields ErrJobFailed, an
// exhausted timeout ErrPollTimeout. Errors reading the status end the wait.
func (p *Poller) Wait(ctx context.Context, name string, onStatus StatusFunc) (JobStatus, error) {
	timeout := time.NewTimer(p.policy.Timeout)
	defer timeout.Stop()

	delay := p.policy.Interval
	for attempt := 1; ; attempt++ {
		status, err := p.client.Status(ctx, name)
		if err != nil {
			return JobStatus{}, err
		}
		if onStatus != nil {
			onStatus(attempt, status)
		}

		switch status.State {
		case StateCompleted:
			p.logger.Info("transcription job completed", zap.String("job", name), zap.Int("attempts", attempt))
			return status, nil
		case StateFailed:
			p.logger.Warn("transcription job failed", zap.String("job", name), zap.String("reason", status.FailureReason))
			return status, errors.Wrapf(errors.ErrJobFailed, "job %s: %s", name, status.FailureReason)
		}

		p.logger.Debug("transcription job pending",
			zap.String("job", name),
			zap.String("state", string(status.State)),
			zap.Duration("next", delay))

		wait := time.NewTimer(delay)
		select {
		case <-wait.C:
		case <-timeout.C:
			wait.Stop()
			return status, errors.Timeout("job "+name, p.policy.Timeout.String())
		case <-ctx.Done():
			wait.Stop()
			return status, ctx.Err()
		}
		delay = p.policy.Next(delay)
	}
}
