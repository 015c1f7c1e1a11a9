package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/config"
	"mlb_blowouts/checker/internal/metrics"
	"mlb_blowouts/checker/internal/pipeline"
)

// Scheduler triggers check runs: a daily cron job, plus an optional intraday
// ticker that refines records while games are still in progress. Both paths
// invoke the same single-run pipeline entry point the CLI uses.
type Scheduler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipe *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipe:     pipe,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.ScheduleCron, func() {
		s.runForToday(ctx, "cron")
	}); err != nil {
		return fmt.Errorf("failed to schedule daily check: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.ScheduleCron).
		Msg("Daily check scheduled")

	if s.cfg.IntradayPollInterval > 0 {
		interval := time.Duration(s.cfg.IntradayPollInterval) * time.Second
		s.ticker = time.NewTicker(interval)
		log.Info().
			Dur("interval", interval).
			Msg("Intraday polling started")

		go s.pollIntraday(ctx)
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollIntraday re-runs the pipeline on a fixed interval so in-progress
// records are refined as innings complete
func (s *Scheduler) pollIntraday(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping intraday polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping intraday polling")
			return
		case <-s.ticker.C:
			s.runForToday(ctx, "intraday")
		}
	}
}

// runForToday runs the pipeline for the current UTC date
func (s *Scheduler) runForToday(ctx context.Context, trigger string) {
	date := time.Now().UTC().Format("2006-01-02")
	start := time.Now()

	summary, err := s.pipe.Run(ctx, date)
	if err != nil {
		log.Error().Err(err).Str("date", date).Str("trigger", trigger).Msg("Scheduled check run failed")
		metrics.RecordRun(trigger, "error", time.Since(start).Seconds())
		return
	}

	metrics.RecordRun(trigger, "success", time.Since(start).Seconds())
	log.Info().
		Str("trigger", trigger).
		Int("classified", summary.Classified).
		Int("blowouts", summary.Blowouts).
		Msg("Scheduled check run finished")
}
