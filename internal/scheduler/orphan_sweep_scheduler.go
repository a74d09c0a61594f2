package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vukanihub/vukani-backend/internal/app/service"
	"github.com/vukanihub/vukani-backend/pkg/logger"
)

const sweepBatchSize = 100

// OrphanSweepScheduler periodically retries storage deletes that failed at
// media-delete time, so abandoned objects do not accumulate in the bucket.
type OrphanSweepScheduler struct {
	cron         *cron.Cron
	mediaService service.MediaService
}

func NewOrphanSweepScheduler(mediaService service.MediaService) *OrphanSweepScheduler {
	return &OrphanSweepScheduler{
		cron:         cron.New(),
		mediaService: mediaService,
	}
}

func (s *OrphanSweepScheduler) Start() error {
	// Hourly is plenty: orphans are rare and the bucket does not care about
	// an hour of lag.
	_, err := s.cron.AddFunc("@hourly", s.runSweep)
	if err != nil {
		logger.Error("Failed to schedule orphan sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Orphan sweep scheduler started (hourly)", nil)
	return nil
}

func (s *OrphanSweepScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reclaimed, err := s.mediaService.SweepOrphans(ctx, sweepBatchSize)
	if err != nil {
		logger.Error("Orphan sweep failed", err)
		return
	}

	if reclaimed > 0 {
		logger.Info("Orphan sweep reclaimed objects", map[string]interface{}{
			"reclaimed": reclaimed,
		})
	}
}

func (s *OrphanSweepScheduler) Stop() {
	logger.Info("Stopping orphan sweep scheduler", nil)
	s.cron.Stop()
}
