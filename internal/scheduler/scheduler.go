// Package scheduler runs the recurring pipeline jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-projector/internal/service"
)

// Scheduler manages the recurring feature-build and label-attach jobs.
type Scheduler struct {
	cron            *cron.Cron
	builder         *service.FeatureBuilder
	attacher        *service.LabelAttacher
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler.
func NewScheduler(builder *service.FeatureBuilder, attacher *service.LabelAttacher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		builder:         builder,
		attacher:        attacher,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleFeatureBuild schedules recurring feature builds for one market.
func (s *Scheduler) ScheduleFeatureBuild(cronExpression, marketCode string, lookback int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		rows, err := s.builder.Build(ctx, marketCode, lookback)
		if err != nil {
			s.logger.WithError(err).WithField("market_code", marketCode).
				Error("Scheduled feature build failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"market_code": marketCode,
			"rows":        rows,
		}).Info("Scheduled feature build completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add feature build job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"market_code": marketCode,
		"cron":        cronExpression,
	}).Info("Scheduled feature build job")
	return nil
}

// ScheduleLabelAttach schedules recurring label attachment for one market.
func (s *Scheduler) ScheduleLabelAttach(cronExpression, marketCode string, lookback int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		updated, err := s.attacher.Attach(ctx, marketCode, lookback)
		if err != nil {
			s.logger.WithError(err).WithField("market_code", marketCode).
				Error("Scheduled label attach failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"market_code":  marketCode,
			"rows_updated": updated,
		}).Info("Scheduled label attach completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add label attach job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"market_code": marketCode,
		"cron":        cronExpression,
	}).Info("Scheduled label attach job")
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest upcoming job time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}
