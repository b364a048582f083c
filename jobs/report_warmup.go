package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/tillpoint/tillpoint/internal/jobs"
	"github.com/tillpoint/tillpoint/internal/reports"
	"github.com/tillpoint/tillpoint/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SummaryWarmer builds the summary payload, populating the report cache
// as a side effect.
type SummaryWarmer interface {
	Summary(ctx context.Context, principal *shared.Principal, q reports.Query) (reports.SummaryPayload, error)
}

// ReportWarmupJob pre-populates report caches for active tenants.
type ReportWarmupJob struct {
	Reports SummaryWarmer
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reportsSvc SummaryWarmer, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reportsSvc,
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Days <= 0 {
		payload.Days = 30
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("days", payload.Days))
	logger.Info("starting report warmup")

	tenants, err := j.fetchTenants(ctx, payload.ProfileID)
	if err != nil {
		resultErr = err
		logger.Error("load warmup tenants", slog.Any("error", err))
		return resultErr
	}
	if len(tenants) == 0 {
		logger.Info("no tenants discovered for warmup")
		return resultErr
	}

	now := j.now()
	after := now.AddDate(0, 0, -payload.Days).Truncate(24 * time.Hour)
	before := now.Truncate(24 * time.Hour).AddDate(0, 0, 1)

	warmed := 0
	for _, profileID := range tenants {
		principal := &shared.Principal{ProfileID: profileID, Role: shared.RoleOwner, IsOwner: true}
		if _, err := j.Reports.Summary(ctx, principal, reports.Query{After: after, Before: before}); err != nil {
			resultErr = err
			logger.Error("warm tenant", slog.Int64("profile_id", profileID), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("report warmup finished", slog.Int("tenants", warmed))
	return resultErr
}

func (j *ReportWarmupJob) fetchTenants(ctx context.Context, profileID int64) ([]int64, error) {
	if profileID > 0 {
		return []int64{profileID}, nil
	}
	if j.Pool == nil {
		return nil, nil
	}

	const query = `SELECT id FROM profiles WHERE is_active = TRUE AND maintenance_mode = FALSE ORDER BY id`
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

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
