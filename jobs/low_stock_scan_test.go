package jobs

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/inventory"
)

type stubStock struct {
	levels map[int64][]inventory.StockLevel
}

func (s *stubStock) LowStock(_ context.Context, profileID int64) ([]inventory.StockLevel, error) {
	return s.levels[profileID], nil
}

type stubNotifier struct {
	messages []string
}

func (s *stubNotifier) Notify(_ context.Context, _ int64, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func scanTask(t *testing.T, payload LowStockScanPayload) *asynq.Task {
	t.Helper()
	task, err := NewLowStockScanTask(payload)
	require.NoError(t, err)
	return task
}

func TestLowStockScanNotifiesFlaggedLevels(t *testing.T) {
	stock := &stubStock{levels: map[int64][]inventory.StockLevel{
		3: {
			{
				ProfileID:    3,
				ProductRegNo: 101,
				StoreRegNo:   1,
				Units:        decimal.NewFromInt(2),
				MinimumUnits: decimal.NewFromInt(5),
				Status:       inventory.StatusLowStock,
			},
			{
				ProfileID:    3,
				ProductRegNo: 102,
				StoreRegNo:   1,
				Units:        decimal.Zero,
				MinimumUnits: decimal.NewFromInt(5),
				Status:       inventory.StatusOutOfStock,
			},
		},
	}}
	notifier := &stubNotifier{}
	job := NewLowStockScanJob(stock, notifier, nil, nil, nil)

	err := job.Handle(context.Background(), scanTask(t, LowStockScanPayload{ProfileID: 3}))
	require.NoError(t, err)

	require.Len(t, notifier.messages, 2)
	require.Contains(t, notifier.messages[0], "Product 101 is down to 2 units at store 1")
	require.Contains(t, notifier.messages[1], "Product 102 is out of stock at store 1.")
}

func TestLowStockScanQuietTenant(t *testing.T) {
	notifier := &stubNotifier{}
	job := NewLowStockScanJob(&stubStock{levels: map[int64][]inventory.StockLevel{}}, notifier, nil, nil, nil)

	err := job.Handle(context.Background(), scanTask(t, LowStockScanPayload{ProfileID: 8}))
	require.NoError(t, err)
	require.Empty(t, notifier.messages)
}

func TestLowStockScanSkipsMalformedPayload(t *testing.T) {
	job := NewLowStockScanJob(&stubStock{}, &stubNotifier{}, nil, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskLowStockScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
