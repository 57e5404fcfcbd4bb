// Package scheduler runs the periodic background jobs: the achievement
// evaluation sweep and the monthly violation counter reset.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/urbansignal/billboard-watch/internal/config"
	prommetrics "github.com/urbansignal/billboard-watch/internal/metrics"
	"github.com/urbansignal/billboard-watch/pkg/logger"
)

// monthlyResetExpr fires at midnight on the first of every month.
const monthlyResetExpr = "0 0 1 * *"

// Evaluator runs an achievement evaluation sweep over all accounts.
type Evaluator interface {
	EvaluateAll() (int, error)
}

// CounterResetter clears the counters that track per-month progress.
type CounterResetter interface {
	ResetMonthlyViolations() error
}

// Service handles periodic job scheduling.
type Service struct {
	config    *config.Config
	evaluator Evaluator
	counters  CounterResetter
	log       *logger.Logger
	cron      *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, evaluator Evaluator, counters CounterResetter, log *logger.Logger) *Service {
	return &Service{
		config:    cfg,
		evaluator: evaluator,
		counters:  counters,
		log:       log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if _, err := s.cron.AddFunc(s.config.Scheduler.EvaluationTime, s.runEvaluation); err != nil {
		return fmt.Errorf("failed to register achievement evaluation job: %w", err)
	}
	if _, err := s.cron.AddFunc(monthlyResetExpr, s.runMonthlyReset); err != nil {
		return fmt.Errorf("failed to register monthly reset job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("evaluation_schedule", s.config.Scheduler.EvaluationTime).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runEvaluation executes the achievement evaluation sweep.
func (s *Service) runEvaluation() {
	start := time.Now()

	defer func() {
		prommetrics.ObserveEvaluationDuration(time.Since(start).Seconds())
	}()

	s.log.Info().Msg("Running achievement evaluation job")

	awarded, err := s.evaluator.EvaluateAll()
	if err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Achievement evaluation job failed")
		prommetrics.RecordEvaluationRun("error")
		return
	}

	prommetrics.RecordEvaluationRun("success")
	s.log.Info().
		Int("achievements_awarded", awarded).
		Dur("duration", time.Since(start)).
		Msg("Achievement evaluation job completed successfully")
}

// runMonthlyReset clears the monthly violation counters.
func (s *Service) runMonthlyReset() {
	s.log.Info().Msg("Running monthly counter reset job")

	if err := s.counters.ResetMonthlyViolations(); err != nil {
		s.log.Error().Err(err).Msg("Monthly counter reset failed")
		return
	}

	s.log.Info().Msg("Monthly counters reset")
}
