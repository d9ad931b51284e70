package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/observability/metrics"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.BulkUpdateReaper // Required
	Config  config.ReaperConfig   // Required: schedule and stale threshold
	Logger  *slog.Logger          // Optional
	Metrics statsd.Sink           // Optional
	Clock   data.TimeProvider     // Optional
}

// ReaperService fails open bulk jobs that stopped heartbeating, which only
// happens when the process running the sweep died or hung.
type ReaperService struct {
	repo       core.BulkUpdateReaper
	schedule   cron.Schedule
	staleAfter time.Duration
	logger     *slog.Logger
	metrics    statsd.Sink
	clock      data.TimeProvider
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("BulkUpdateReaper is required")
	}
	schedule, err := opts.Config.ParsedSchedule()
	if err != nil {
		return nil, fmt.Errorf("parse reaper schedule %q: %w", opts.Config.Schedule, err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "reaper_service")
	logger.Debug("ReaperService initialized",
		"schedule", opts.Config.Schedule,
		"stale_after", opts.Config.StaleAfter,
	)

	return &ReaperService{
		repo:       opts.Repo,
		schedule:   schedule,
		staleAfter: opts.Config.StaleAfter,
		logger:     logger,
		metrics:    opts.Metrics,
		clock:      clock,
	}, nil
}

// Run sweeps on the configured cron schedule until ctx is cancelled.
// Returns nil on graceful shutdown.
func (s *ReaperService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting reaper service", "stale_after", s.staleAfter)

	for {
		now := s.clock.Now()
		wait := s.schedule.Next(now).Sub(now)
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logSweepError(ctx, err)
			}
		}
	}
}

// RunOnce closes every open job whose last heartbeat is older than the stale
// threshold.
func (s *ReaperService) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().Add(-s.staleAfter)
	closed, err := s.repo.CloseStale(ctx, cutoff)
	metrics.EmitReaper(s.metrics, closed, suppressContextCancellation(err))
	if err != nil {
		return 0, fmt.Errorf("close stale bulk updates: %w", err)
	}
	if closed > 0 {
		for range closed {
			metrics.EmitBulkJobLifecycle(s.metrics, metrics.BulkJobMetric{
				Transition: metrics.TransitionReaped,
				Result:     metrics.ResultError,
			})
		}
		s.logger.WarnContext(ctx, "failed stale bulk updates", "count", closed, "last_seen_before", cutoff)
	}
	return closed, nil
}

func (s *ReaperService) logSweepError(ctx context.Context, err error) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, "reaper sweep cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, "reaper sweep failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
