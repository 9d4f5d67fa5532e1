// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package maintenance schedules the recurring housekeeping jobs: sweeping
// expired sessions, pruning old analysis history, and running BadgerDB
// value-log garbage collection. The scheduler runs as a supervised service
// and uses robfig/cron with second-resolution specs.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
)

// Default schedules use the six-field cron format (seconds first). Sweeps
// and GC are staggered so they never contend for the session store.
const (
	defaultSessionSweepSpec = "0 15 * * * *"   // hourly at :15
	defaultHistoryPruneSpec = "0 30 3 * * *"   // daily at 03:30
	defaultBadgerGCSpec     = "0 45 * * * *"   // hourly at :45
	defaultJobTimeout       = 5 * time.Minute  // per-run deadline
	defaultDrainTimeout     = 10 * time.Second // shutdown grace for running jobs
)

// SessionSweeper removes expired sessions. Satisfied by auth.Store.
type SessionSweeper interface {
	CleanupExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// HistoryPruner deletes analysis records older than the retention window.
// Satisfied by *database.DB.
type HistoryPruner interface {
	PruneAnalysisHistory(ctx context.Context, retentionDays int) (int64, error)
}

// ValueLogGC runs one round of value-log garbage collection. Satisfied by
// *auth.BadgerStore; pass nil when sessions live in memory.
type ValueLogGC interface {
	RunGC() error
}

// Config holds the maintenance schedules. Zero values fall back to the
// package defaults.
type Config struct {
	SessionSweepSpec string
	HistoryPruneSpec string
	BadgerGCSpec     string

	// RetentionDays bounds the analysis history. Zero disables pruning
	// entirely: records are kept forever.
	RetentionDays int

	JobTimeout   time.Duration
	DrainTimeout time.Duration
}

// Service owns the cron scheduler and the registered jobs. It implements
// the supervisor's service contract: Serve blocks until the context is
// cancelled, then drains any job still running.
type Service struct {
	cron     *cron.Cron
	sessions SessionSweeper
	history  HistoryPruner
	gc       ValueLogGC
	cfg      Config
}

// New builds the scheduler and registers every applicable job. The history
// prune job is skipped when pruner is nil or retention is disabled, and the
// GC job when gc is nil. Invalid cron specs fail here, not at run time.
func New(cfg Config, sessions SessionSweeper, history HistoryPruner, gc ValueLogGC) (*Service, error) {
	if cfg.SessionSweepSpec == "" {
		cfg.SessionSweepSpec = defaultSessionSweepSpec
	}
	if cfg.HistoryPruneSpec == "" {
		cfg.HistoryPruneSpec = defaultHistoryPruneSpec
	}
	if cfg.BadgerGCSpec == "" {
		cfg.BadgerGCSpec = defaultBadgerGCSpec
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}

	s := &Service{
		// Overlapping runs are skipped, not queued: a slow prune must not
		// pile up behind itself.
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
		),
		sessions: sessions,
		history:  history,
		gc:       gc,
		cfg:      cfg,
	}

	if sessions != nil {
		if _, err := s.cron.AddFunc(cfg.SessionSweepSpec, func() {
			s.runJob("session_sweep", s.sweepSessions)
		}); err != nil {
			return nil, fmt.Errorf("invalid session sweep spec %q: %w", cfg.SessionSweepSpec, err)
		}
	}

	if history != nil && cfg.RetentionDays > 0 {
		if _, err := s.cron.AddFunc(cfg.HistoryPruneSpec, func() {
			s.runJob("history_prune", s.pruneHistory)
		}); err != nil {
			return nil, fmt.Errorf("invalid history prune spec %q: %w", cfg.HistoryPruneSpec, err)
		}
	}

	if gc != nil {
		if _, err := s.cron.AddFunc(cfg.BadgerGCSpec, func() {
			s.runJob("badger_gc", s.collectGarbage)
		}); err != nil {
			return nil, fmt.Errorf("invalid badger gc spec %q: %w", cfg.BadgerGCSpec, err)
		}
	}

	return s, nil
}

// JobCount reports how many jobs were registered.
func (s *Service) JobCount() int {
	return len(s.cron.Entries())
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "maintenance"
}

// Serve starts the scheduler and blocks until the context is cancelled.
// On shutdown it waits up to DrainTimeout for in-flight jobs to finish.
func (s *Service) Serve(ctx context.Context) error {
	s.cron.Start()
	logging.Info().
		Int("jobs", s.JobCount()).
		Msg("[Maintenance] Scheduler started")

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.cfg.DrainTimeout):
		logging.Warn().Msg("[Maintenance] Shutdown with jobs still running")
	}
	return ctx.Err()
}

// runJob wraps a job body with a deadline, metrics, and logging. Job errors
// are recorded but never propagate: a failed sweep must not take down the
// scheduler.
func (s *Service) runJob(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	metrics.RecordMaintenanceRun(name, duration, err)

	if err != nil {
		logging.Error().Err(err).
			Str("job", name).
			Dur("duration", duration).
			Msg("[Maintenance] Job failed")
		return
	}
	logging.Debug().
		Str("job", name).
		Dur("duration", duration).
		Msg("[Maintenance] Job completed")
}

func (s *Service) sweepSessions(ctx context.Context) error {
	removed, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	metrics.RecordSessionsExpired(removed)
	if removed > 0 {
		logging.Info().Int("removed", removed).Msg("[Maintenance] Expired sessions swept")
	}
	if active, err := s.sessions.Count(ctx); err == nil {
		metrics.SetSessionsActive(active)
	}
	return nil
}

func (s *Service) pruneHistory(ctx context.Context) error {
	deleted, err := s.history.PruneAnalysisHistory(ctx, s.cfg.RetentionDays)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logging.Info().
			Int64("deleted", deleted).
			Int("retention_days", s.cfg.RetentionDays).
			Msg("[Maintenance] Old analysis records pruned")
	}
	return nil
}

func (s *Service) collectGarbage(_ context.Context) error {
	return s.gc.RunGC()
}

// cronLogger adapts the cron logger interface onto the process logger. The
// only chatter at Info level is SkipIfStillRunning announcing a skipped
// overlapping run, which is worth surfacing.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Info().Fields(keysAndValues).Msgf("[Maintenance] cron: %s", msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Fields(keysAndValues).Msgf("[Maintenance] cron: %s", msg)
}
