package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage/mysql"
)

type MockReportStorage struct {
	mock.Mock
}

func (m *MockReportStorage) ListOrders(ctx context.Context, filter mysql.OrderFilter) ([]storage.OrderSummary, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]storage.OrderSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportStorage) WorkUnitTotals(ctx context.Context, from, to time.Time) (map[string]storage.WorkTotal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]storage.WorkTotal), args.Error(1)
}

func TestGenerateExcel(t *testing.T) {
	mockStorage := new(MockReportStorage)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, storage.BusinessZone)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, storage.BusinessZone)

	completion := storage.NewDate(2024, 1, 20)
	mockStorage.On("ListOrders", mock.Anything, mock.Anything).Return([]storage.OrderSummary{
		{
			ID:                 "ord-1",
			CustomerName:       "ACME",
			ProductName:        "Multivit",
			ProductionQuantity: 1000,
			UnitWeightMg:       decimal.NewFromInt(500),
			BatchTotalWeightMg: decimal.NewFromInt(500000),
			CompletionDate:     &completion,
			CreatedAt:          time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC),
		},
	}, int64(1), nil)
	mockStorage.On("WorkUnitTotals", mock.Anything, from, to).Return(map[string]storage.WorkTotal{
		"ord-1": {EffectiveMinutes: 540, WorkUnits: decimal.RequireFromString("3.375")},
	}, nil)

	svc := NewReportService(mockStorage)
	data, err := svc.GenerateExcel(context.Background(), from, to)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheet := "生產訂單報表"

	customer, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "ACME", customer)

	completionCell, err := f.GetCellValue(sheet, "G2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", completionCell)

	minutes, err := f.GetCellValue(sheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "540", minutes)

	mockStorage.AssertExpectations(t)
}

func TestGenerateExcel_StorageError(t *testing.T) {
	mockStorage := new(MockReportStorage)
	mockStorage.On("ListOrders", mock.Anything, mock.Anything).
		Return(nil, int64(0), assert.AnError)
	mockStorage.On("WorkUnitTotals", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string]storage.WorkTotal{}, nil).Maybe()

	svc := NewReportService(mockStorage)
	_, err := svc.GenerateExcel(context.Background(), time.Now().Add(-time.Hour), time.Now())

	assert.Error(t, err)
}
