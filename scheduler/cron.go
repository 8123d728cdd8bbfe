package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"gpustats/models"
)

// Submitter queues runs
type Submitter interface {
	Submit(sources []string) (models.Run, error)
}

// Schedule submits a run of every enabled source on a cron spec with seconds
type Schedule struct {
	cron      *cron.Cron
	submitter Submitter
	logger    *slog.Logger
}

// NewSchedule parses spec and registers the job
func NewSchedule(spec string, submitter Submitter, logger *slog.Logger) (*Schedule, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Schedule{
		cron:      cron.New(cron.WithSeconds()),
		submitter: submitter,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron scheduler in its own goroutine
func (s *Schedule) Start() {
	s.cron.Start()
	s.logger.Info("Scheduled runs enabled")
}

// Stop stops the scheduler; a run already submitted keeps going
func (s *Schedule) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns the next activation time as text
func (s *Schedule) Next() string {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return "not scheduled"
	}
	return entries[0].Next.Format("2006-01-02 15:04:05")
}

func (s *Schedule) trigger() {
	run, err := s.submitter.Submit(nil)
	if err != nil {
		s.logger.Warn("Scheduled run skipped", "error", err)
		return
	}
	s.logger.Info("Scheduled run submitted", "run", run.ID)
}
