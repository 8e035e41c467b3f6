package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-summary-pipeline/internal/pipeline"
	"github.com/drive-summary-pipeline/internal/source"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds a single pipeline run. It sits above the per-task
// summarization timeout so slow Gemini calls are cut off by the pool,
// not the run.
const runTimeout = time.Hour

// Scheduler manages periodic pipeline runs
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	sources  []source.Source
	manager  pipeline.ManagerInterface
}

// New creates a new scheduler
func New(interval time.Duration, sources []source.Source, manager pipeline.ManagerInterface) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		interval: interval,
		sources:  sources,
		manager:  manager,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	logrus.Infof("Starting scheduler with interval: %v", s.interval)

	cronSpec := fmt.Sprintf("@every %v", s.interval)
	_, err := s.cron.AddFunc(cronSpec, func() {
		logrus.Info("Running scheduled pipeline run")
		if err := s.RunOnce(); err != nil {
			logrus.Errorf("Scheduled pipeline run failed: %v", err)
		}
	})
	if err != nil {
		logrus.Errorf("Failed to schedule pipeline job: %v", err)
		return
	}

	s.cron.Start()

	// Wait for context cancellation
	<-ctx.Done()
	logrus.Info("Stopping scheduler...")
	s.cron.Stop()
}

// RunOnce runs a single pipeline cycle
func (s *Scheduler) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	return s.manager.ProcessOnce(ctx, s.sources)
}
