package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps a gocron scheduler for periodic rebuild requests.
type Scheduler struct {
	scheduler gocron.Scheduler
}

func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Every runs fn on interval. A run that is still going when the next one is
// due pushes the next one back. It returns the job ID.
func (s *Scheduler) Every(interval time.Duration, name string, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	slog.Debug("Scheduled job", slog.String("name", name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
