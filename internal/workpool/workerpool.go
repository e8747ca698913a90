package workpool

import (
	"context"
	"time"

	"github.com/SebastianObert/AirCare/internal/channels"
	"github.com/SebastianObert/AirCare/internal/logger"
	"github.com/SebastianObert/AirCare/models"
)

type WorkerPool struct {
	WorkerCount int
	Channels    *channels.Channels
}

func New(channels *channels.Channels, workerCount int) *WorkerPool {
	return &WorkerPool{
		WorkerCount: workerCount,
		Channels:    channels,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.WorkerCount; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logger.Info("Worker %d started.", id)
	for req := range wp.Channels.RefreshRequest {

		wp.Channels.WG.Add(1)

		func(req models.RefreshRequest) {
			defer wp.Channels.WG.Done()

			opCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			logger.Info("Worker %d checking %q for user %s", id, req.Location, req.UserID)

			// 1. Re-check air quality at the saved location
			advisory, err := req.CheckFunc(opCtx, req.Coord)
			if err != nil {
				logger.Error("Worker %d failed to check %q for user %s: %v", id, req.Location, req.UserID, err)
				return
			}

			// 2. Conditions below the advisory threshold need no notification
			if advisory == "" {
				logger.Info("Worker %d: %q is fine for user %s", id, req.Location, req.UserID)
				return
			}

			// 3. Deliver the advisory
			err = req.NotifyFunc(opCtx, req.UserID, req.Location, advisory)
			if err != nil {
				logger.Error("Worker %d failed to notify user %s about %q: %v", id, req.UserID, req.Location, err)
				return
			}

			logger.Info("Worker %d notified user %s about %q", id, req.UserID, req.Location)
		}(req)
	}

	logger.Info("Worker %d stopped.", id)
}

func (wp *WorkerPool) Stop() {
	close(wp.Channels.RefreshRequest)
}
