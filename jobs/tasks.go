package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSupplierCacheWarm refills the supplier listing cache.
	TaskSupplierCacheWarm = "suppliers:cache-warm"
)

// CacheWarmPayload describes why a warm-up was requested.
type CacheWarmPayload struct {
	Version int64  `json:"version,omitempty"`
	Reason  string `json:"reason"`
}

// NewTaskID returns an option assigning a fresh task id. It is applied at
// enqueue time so scheduled tasks do not share one id.
func NewTaskID() asynq.Option {
	return asynq.TaskID(uuid.NewString())
}

// NewCacheWarmTask constructs an Asynq task.
func NewCacheWarmTask(payload CacheWarmPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = "manual"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode cache warm payload: %w", err)
	}
	return asynq.NewTask(TaskSupplierCacheWarm, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	), nil
}

func decodeCacheWarmPayload(t *asynq.Task) (CacheWarmPayload, error) {
	var payload CacheWarmPayload
	if len(t.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return CacheWarmPayload{}, err
	}
	return payload, nil
}
