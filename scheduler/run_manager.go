package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gpustats/metrics"
	"gpustats/models"
)

// RunFunc executes one run over the named sources
type RunFunc func(ctx context.Context, sources []string) ([]models.RunSummary, error)

// RunManager queues runs and executes them one at a time so runs never overlap
type RunManager struct {
	runs    map[string]*models.Run
	queue   chan *models.Run
	runFunc RunFunc
	maxAge  time.Duration
	mutex   sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Recorder

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewRunManager creates a manager with room for queueSize waiting runs.
// Finished runs are forgotten after maxAge.
func NewRunManager(runFunc RunFunc, queueSize int, maxAge time.Duration, logger *slog.Logger, recorder *metrics.Recorder) *RunManager {
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunManager{
		runs:    make(map[string]*models.Run),
		queue:   make(chan *models.Run, queueSize),
		runFunc: runFunc,
		maxAge:  maxAge,
		logger:  logger,
		metrics: recorder,
		stopped: make(chan struct{}),
	}
}

// Submit queues a run over sources and returns a snapshot of it
func (m *RunManager) Submit(sources []string) (models.Run, error) {
	run := models.NewRun(sources)

	select {
	case <-m.stopped:
		return models.Run{}, ErrStopped
	default:
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	select {
	case m.queue <- run:
	default:
		m.logger.Warn("Run rejected, queue full", "run", run.ID)
		return models.Run{}, ErrQueueFull
	}
	m.runs[run.ID] = run
	m.metrics.QueueDepth(len(m.queue))
	m.logger.Info("Run submitted", "run", run.ID, "sources", sources)
	return snapshot(run), nil
}

// Get returns a snapshot of the run with id
func (m *RunManager) Get(id string) (models.Run, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return models.Run{}, false
	}
	return snapshot(run), true
}

// List returns snapshots of all known runs, newest first
func (m *RunManager) List() []models.Run {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	runs := make([]models.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, snapshot(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// Start drains the queue until ctx is cancelled or Stop is called. It blocks.
func (m *RunManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case run := <-m.queue:
			m.metrics.QueueDepth(len(m.queue))
			m.execute(ctx, run)
		case <-ticker.C:
			m.cleanup()
		case <-m.stopped:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop stops the worker after the current run
func (m *RunManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopped)
	})
}

func (m *RunManager) execute(ctx context.Context, run *models.Run) {
	m.mutex.Lock()
	run.Start()
	m.mutex.Unlock()

	m.logger.Info("Run started", "run", run.ID)
	summaries, err := m.runFunc(ctx, run.Sources)

	m.mutex.Lock()
	if err != nil {
		run.Fail(summaries, err)
	} else {
		run.Complete(summaries)
	}
	status := run.Status
	m.mutex.Unlock()

	m.metrics.RunStatus(string(status))
	if err != nil {
		m.logger.Error("Run failed", "run", run.ID, "error", err)
		return
	}
	m.logger.Info("Run completed", "run", run.ID, "sources", len(summaries))
}

// cleanup forgets finished runs older than maxAge
func (m *RunManager) cleanup() {
	if m.maxAge <= 0 {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	cutoff := time.Now().Add(-m.maxAge)
	for id, run := range m.runs {
		if run.IsDone() && run.CompletedAt != nil && run.CompletedAt.Before(cutoff) {
			delete(m.runs, id)
		}
	}
}

func snapshot(run *models.Run) models.Run {
	c := *run
	c.Sources = append([]string(nil), run.Sources...)
	c.Summaries = append([]models.RunSummary(nil), run.Summaries...)
	return c
}
