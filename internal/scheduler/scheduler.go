// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package scheduler runs periodic maintenance jobs. Content
// operations themselves are request-driven; only housekeeping lives
// here.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/byceps/byceps-go/internal/service"
)

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron           *cron.Cron
	events         *service.EventService
	eventRetention time.Duration
	log            *slog.Logger
}

// New creates a Scheduler that prunes the event log to the given
// retention.
func New(events *service.EventService, eventRetention time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		events:         events,
		eventRetention: eventRetention,
		log:            log,
	}
}

// Start registers the jobs and begins running them. Event log pruning
// runs nightly.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneEventLog(); err != nil {
			s.log.Error("failed to prune event log", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) pruneEventLog() error {
	removed, err := s.events.DeleteOldEvents(context.Background(), s.eventRetention)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Info("pruned event log", "removed", removed)
	}
	return nil
}
