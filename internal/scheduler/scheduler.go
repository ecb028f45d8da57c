// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic housekeeping of the ephemeral state store.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule sweeps expired state every five minutes.
const DefaultSchedule = "*/5 * * * *"

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 30 * time.Second

// Sweepable removes expired entries and reports how many were dropped.
type Sweepable interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper drops expired handshakes and sessions on a cron schedule.
type Sweeper struct {
	target Sweepable
	cron   *cron.Cron
	logger *slog.Logger
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return nil
}

// New creates a sweeper for target. The schedule is a standard cron
// expression; an empty one means DefaultSchedule.
func New(target Sweepable, schedule string, logger *slog.Logger) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Sweeper{
		target: target,
		cron:   cron.New(),
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("scheduling state sweep: %w", err)
	}
	return s, nil
}

// Start begins running the sweep in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce performs a single sweep and returns the number of entries removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.target.Sweep(ctx)
	if err != nil {
		return n, fmt.Errorf("sweeping state: %w", err)
	}
	return n, nil
}

func (s *Sweeper) run() {
	n, err := s.RunOnce(context.Background())
	if err != nil {
		s.logger.Error("failed to sweep expired state", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("swept expired state", "count", n)
		return
	}
	s.logger.Debug("state sweep found nothing to remove")
}
