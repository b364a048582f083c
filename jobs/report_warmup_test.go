package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/reports"
	"github.com/tillpoint/tillpoint/internal/shared"
)

type stubWarmer struct {
	principals []*shared.Principal
	queries    []reports.Query
	err        error
}

func (s *stubWarmer) Summary(_ context.Context, principal *shared.Principal, q reports.Query) (reports.SummaryPayload, error) {
	s.principals = append(s.principals, principal)
	s.queries = append(s.queries, q)
	return reports.SummaryPayload{}, s.err
}

func warmupTask(t *testing.T, payload ReportsWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewReportsWarmupTask(payload)
	require.NoError(t, err)
	return task
}

func TestReportWarmupWarmsRequestedTenant(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewReportWarmupJob(warmer, nil, nil, nil)
	job.clock = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}

	err := job.Handle(context.Background(), warmupTask(t, ReportsWarmupPayload{ProfileID: 7, Days: 7}))
	require.NoError(t, err)

	require.Len(t, warmer.principals, 1)
	require.Equal(t, int64(7), warmer.principals[0].ProfileID)
	require.True(t, warmer.principals[0].IsOwner)

	q := warmer.queries[0]
	require.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), q.After)
	require.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), q.Before)
}

func TestReportWarmupDefaultsWindow(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewReportWarmupJob(warmer, nil, nil, nil)
	job.clock = func() time.Time {
		return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	}

	err := job.Handle(context.Background(), warmupTask(t, ReportsWarmupPayload{ProfileID: 1}))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), warmer.queries[0].After)
}

func TestReportWarmupSkipsMalformedPayload(t *testing.T) {
	job := NewReportWarmupJob(&stubWarmer{}, nil, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportsWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
