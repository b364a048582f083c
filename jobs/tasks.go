package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-populates report caches for active tenants.
	TaskReportsWarmup = "reports:warmup"
	// TaskLowStockScan flags stock levels at or below their minimum.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// ReportsWarmupPayload scopes a warmup run. A zero ProfileID warms every
// tenant that is not in maintenance mode.
type ReportsWarmupPayload struct {
	ProfileID int64 `json:"profile_id"`
	Days      int   `json:"days"`
}

// NewReportsWarmupTask constructs the warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// LowStockScanPayload scopes a low-stock scan run.
type LowStockScanPayload struct {
	ProfileID int64 `json:"profile_id"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
