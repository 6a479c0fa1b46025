package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStorageSweep removes browser profiles idle for longer than the retention.
	TaskStorageSweep = "storage:sweep"
)

// StorageSweepPayload carries the retention used by one sweep.
type StorageSweepPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewStorageSweepTask constructs an Asynq task for the storage sweep.
func NewStorageSweepTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(StorageSweepPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStorageSweep, body, asynq.Queue(QueueDefault)), nil
}
