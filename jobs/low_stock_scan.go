package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tillpoint/tillpoint/internal/inventory"
	jobmetrics "github.com/tillpoint/tillpoint/internal/jobs"
)

// Notifier delivers low-stock alerts. The push transport itself lives
// outside this process.
type Notifier interface {
	Notify(ctx context.Context, profileID int64, message string) error
}

// StockSource lists the stock levels at or below their minimum.
type StockSource interface {
	LowStock(ctx context.Context, profileID int64) ([]inventory.StockLevel, error)
}

// LowStockScanJob flags stock levels needing restock and dispatches
// alerts through the notifier.
type LowStockScanJob struct {
	Stock    StockSource
	Notifier Notifier
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	printer  *message.Printer
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(stock StockSource, notifier Notifier, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{
		Stock:    stock,
		Notifier: notifier,
		Pool:     pool,
		Logger:   logger,
		Metrics:  metrics,
		printer:  message.NewPrinter(language.English),
	}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	tenants, err := j.fetchTenants(ctx, payload.ProfileID)
	if err != nil {
		resultErr = err
		j.logger().Error("load scan tenants", slog.Any("error", err))
		return resultErr
	}

	for _, profileID := range tenants {
		if err := j.scanTenant(ctx, profileID); err != nil {
			resultErr = err
			j.logger().Error("scan tenant", slog.Int64("profile_id", profileID), slog.Any("error", err))
			return resultErr
		}
	}
	return resultErr
}

func (j *LowStockScanJob) scanTenant(ctx context.Context, profileID int64) error {
	levels, err := j.Stock.LowStock(ctx, profileID)
	if err != nil {
		return err
	}
	if len(levels) == 0 {
		return nil
	}

	counts := map[string]int{}
	for _, level := range levels {
		counts[level.Status]++
		if j.Notifier == nil {
			continue
		}
		text := j.message(level)
		if err := j.Notifier.Notify(ctx, profileID, text); err != nil {
			return err
		}
	}
	for status, count := range counts {
		j.metrics().AddLowStock(status, profileID, count)
	}

	j.logger().Info("low stock scan finished",
		slog.Int64("profile_id", profileID),
		slog.Int("flagged", len(levels)))
	return nil
}

func (j *LowStockScanJob) message(level inventory.StockLevel) string {
	units, _ := level.Units.Float64()
	minimum, _ := level.MinimumUnits.Float64()
	if level.Status == inventory.StatusOutOfStock {
		return j.printer.Sprintf("Product %d is out of stock at store %d.", level.ProductRegNo, level.StoreRegNo)
	}
	return j.printer.Sprintf("Product %d is down to %v units at store %d (minimum %v).",
		level.ProductRegNo, units, level.StoreRegNo, minimum)
}

func (j *LowStockScanJob) fetchTenants(ctx context.Context, profileID int64) ([]int64, error) {
	if profileID > 0 {
		return []int64{profileID}, nil
	}
	if j.Pool == nil {
		return nil, nil
	}

	const query = `SELECT id FROM profiles WHERE is_active = TRUE ORDER BY id`
	rows, err := j.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
