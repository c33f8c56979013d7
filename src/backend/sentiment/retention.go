package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hannes/sentimento/src/backend/logging"
	"github.com/hannes/sentimento/src/backend/metrics"
)

// RetentionJob periodically deletes history entries older than the retention window
type RetentionJob struct {
	store     HistoryStore
	retention time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewRetentionJob schedules cleanup of store on the given cron spec
// (standard five fields or descriptors such as "@hourly")
func NewRetentionJob(store HistoryStore, schedule string, retention time.Duration) (*RetentionJob, error) {
	job := &RetentionJob{
		store:     store,
		retention: retention,
		cron:      cron.New(),
		logger:    logging.Named("RetentionJob"),
	}
	if _, err := job.cron.AddFunc(schedule, func() { job.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return job, nil
}

// RunOnce deletes expired entries immediately and returns how many were removed
func (j *RetentionJob) RunOnce(ctx context.Context) int64 {
	deleted, err := j.store.CleanupOlderThan(ctx, j.retention)
	if err != nil {
		j.logger.Error("history cleanup failed", zap.Error(err))
		return 0
	}
	metrics.HistoryCleanupDeleted.Add(float64(deleted))
	if deleted > 0 {
		j.logger.Info("removed expired history entries",
			zap.Int64("deleted", deleted), zap.Duration("retention", j.retention))
	}
	return deleted
}

// Start begins running the schedule in its own goroutine
func (j *RetentionJob) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running cleanup to finish
func (j *RetentionJob) Stop() {
	<-j.cron.Stop().Done()
}
