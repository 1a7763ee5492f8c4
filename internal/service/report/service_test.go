package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/mocks"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestSummary_RejectsUnknownGrouping(t *testing.T) {
	// Arrange
	service := NewService(&mocks.MockReportRepository{}, newTestLogger())

	// Act
	_, err := service.Summary(context.Background(), "hour")

	// Assert
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestTopConsumers_MapsGroupingToColumn(t *testing.T) {
	// Arrange
	var gotField string
	var gotLimit int
	mockReports := &mocks.MockReportRepository{
		TopConsumersFunc: func(ctx context.Context, groupBy string, limit int) ([]ports.ConsumerEnergy, error) {
			gotField = groupBy
			gotLimit = limit
			return nil, nil
		},
	}
	service := NewService(mockReports, newTestLogger())

	// Act
	if _, err := service.TopConsumers(context.Background(), "chargePointId", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Assert
	if gotField != "charge_point" {
		t.Errorf("expected charge_point grouping, got %q", gotField)
	}
	if gotLimit != 10 {
		t.Errorf("expected default limit 10, got %d", gotLimit)
	}
}

func TestDailyByChargePoint_SortedRowsInKWh(t *testing.T) {
	// Arrange
	mockReports := &mocks.MockReportRepository{
		DailyEnergyByChargePointFunc: func(ctx context.Context, start, end *time.Time) (map[string]map[string]float64, error) {
			return map[string]map[string]float64{
				"2025-07-08": {"CP001": 1500},
				"2025-07-07": {"CP001": 2000, "CP002": 500},
			}, nil
		},
	}
	service := NewService(mockReports, newTestLogger())

	// Act
	rows, err := service.DailyByChargePoint(context.Background(), nil, nil)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["period"] != "2025-07-07" {
		t.Errorf("expected rows sorted by day, got first %v", rows[0]["period"])
	}
	if rows[0]["CP001"] != 2.0 {
		t.Errorf("expected 2.0 kWh, got %v", rows[0]["CP001"])
	}
}

func TestDashboard_DegradesPerWidget(t *testing.T) {
	// Arrange: one widget fails, the others still come back
	mockReports := &mocks.MockReportRepository{
		OpenTransactionCountFunc: func(ctx context.Context) (int, error) {
			return 3, nil
		},
		LatestMeterSumFunc: func(ctx context.Context) (float64, error) {
			return 0, errors.New("boom")
		},
		EnergySinceFunc: func(ctx context.Context, since time.Time) (float64, error) {
			return 4250, nil
		},
	}
	service := NewService(mockReports, newTestLogger())

	// Act
	out := service.Dashboard(context.Background(), time.Date(2025, time.July, 7, 15, 0, 0, 0, time.UTC))

	// Assert
	if out.ChargingCount != 3 {
		t.Errorf("expected 3 charging, got %d", out.ChargingCount)
	}
	if out.TotalPowerW != 0 {
		t.Errorf("expected failed widget to degrade to 0, got %v", out.TotalPowerW)
	}
	if out.EnergyTodayKWh != 4.25 {
		t.Errorf("expected 4.25 kWh, got %v", out.EnergyTodayKWh)
	}
}
