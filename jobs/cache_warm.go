package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// CacheWarmer fills the supplier cache and reports how many rows it stored.
type CacheWarmer interface {
	WarmCache(ctx context.Context) (int, error)
}

// JobRecorder receives job outcomes.
type JobRecorder interface {
	RecordJob(task string, err error)
}

// CacheWarmJob handles TaskSupplierCacheWarm.
type CacheWarmJob struct {
	warmer  CacheWarmer
	logger  *slog.Logger
	metrics JobRecorder
}

// NewCacheWarmJob wires dependencies for the warm-up handler.
func NewCacheWarmJob(warmer CacheWarmer, logger *slog.Logger, metrics JobRecorder) *CacheWarmJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheWarmJob{warmer: warmer, logger: logger, metrics: metrics}
}

// TaskHandler exposes the job for WorkerConfig.Handlers.
func (j *CacheWarmJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskSupplierCacheWarm, Handler: j.Handle}
}

// Handle processes cache warm-up tasks.
func (j *CacheWarmJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.warmer == nil {
		return errors.New("cache warm: handler not configured")
	}
	payload, err := decodeCacheWarmPayload(t)
	if err != nil {
		j.logger.Warn("drop malformed cache warm task", slog.Any("error", err))
		return fmt.Errorf("cache warm: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	defer func() {
		if j.metrics != nil {
			j.metrics.RecordJob(TaskSupplierCacheWarm, err)
		}
	}()

	logger := j.logger.With(slog.String("reason", payload.Reason), slog.Int64("version", payload.Version))
	count, err := j.warmer.WarmCache(ctx)
	if err != nil {
		logger.Error("warm supplier cache", slog.Any("error", err))
		return err
	}
	logger.Info("supplier cache warmed", slog.Int("suppliers", count))
	return nil
}
