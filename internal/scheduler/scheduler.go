package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/SebastianObert/AirCare/internal/channels"
	"github.com/SebastianObert/AirCare/internal/logger"
	"github.com/SebastianObert/AirCare/models"
)

// RefreshSource enumerates work for one refresh cycle and enqueues it.
type RefreshSource interface {
	RunRefreshJob(ctx context.Context, ch chan<- models.RefreshRequest) error
}

type Scheduler struct {
	Cron *gocron.Scheduler
	WG   *sync.WaitGroup
}

func New() (*Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		Cron: s,
		WG:   &sync.WaitGroup{},
	}, nil
}

func (s *Scheduler) StartJob(ctx context.Context, interval time.Duration, chans *channels.Channels, sources []RefreshSource) error {

	_, err := s.Cron.Every(interval).Do(func() {
		s.runAllJobs(ctx, chans, sources)
	})
	if err != nil {
		logger.Error("Failed to schedule job: %v", err)
		return err
	}

	s.Cron.StartAsync()
	return nil
}

func (s *Scheduler) runAllJobs(ctx context.Context, chans *channels.Channels, sources []RefreshSource) {
	logger.Info("--- Refresh Job Started ---")
	defer logger.Info("--- Refresh Job Finished ---")

	for _, source := range sources {
		err := source.RunRefreshJob(ctx, chans.RefreshRequest)
		if err != nil {
			logger.Error("Error running refresh job for source: %v", err)
		}
	}

	logger.Info("Waiting for all submitted jobs to complete...")
	chans.WG.Wait()
	logger.Info("All jobs completed successfully.")
}

func (s *Scheduler) RunImmediateJob(ctx context.Context, chans *channels.Channels, sources []RefreshSource) {
	logger.Info("--- Immediate Refresh Job Started ---")
	defer logger.Info("--- Immediate Refresh Job Finished ---")

	s.runAllJobs(ctx, chans, sources)
}
