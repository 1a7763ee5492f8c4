package transaction

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/mocks"
)

func closedTransaction(meterStart, meterStop int) *domain.Transaction {
	start := time.Date(2025, time.July, 7, 10, 0, 0, 0, time.UTC)
	stop := start.Add(time.Hour)
	return &domain.Transaction{
		ID:            1001,
		ChargePointID: "CP001",
		ConnectorID:   1,
		IdTag:         "ABC123",
		MeterStart:    meterStart,
		StartTime:     start,
		MeterStop:     &meterStop,
		StopTime:      &stop,
	}
}

func flatPriceTariff(price float64) *mocks.MockTariffService {
	return &mocks.MockTariffService{
		PriceAtFunc: func(ctx context.Context, at time.Time) (float64, error) {
			return price, nil
		},
		BaseRateFunc: func(ctx context.Context) (*domain.BaseRate, error) {
			return &domain.BaseRate{MonthlyBasicFee: 75.0, ThresholdKWh: 2000, OverusePriceDelta: 1.02}, nil
		},
	}
}

func TestSettlementCost_FlatRateAtStartTime(t *testing.T) {
	// Arrange: 2 kWh at 5.01
	service := NewBillingService(&mocks.MockTransactionRepository{}, flatPriceTariff(5.01), newTestLogger())
	tx := closedTransaction(1000, 3000)

	// Act
	cost, err := service.SettlementCost(context.Background(), tx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cost != 10.02 {
		t.Errorf("expected 10.02, got %v", cost)
	}
}

func TestSettlementCost_NegativeDeltaClampedToZero(t *testing.T) {
	// Arrange: register went backwards
	service := NewBillingService(&mocks.MockTransactionRepository{}, flatPriceTariff(5.01), newTestLogger())
	tx := closedTransaction(3000, 1000)

	// Act
	cost, err := service.SettlementCost(context.Background(), tx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cost != 0 {
		t.Errorf("expected 0 for negative delta, got %v", cost)
	}
}

func TestComputeCost_UnknownTransaction(t *testing.T) {
	// Arrange
	service := NewBillingService(&mocks.MockTransactionRepository{}, flatPriceTariff(5.01), newTestLogger())

	// Act
	_, err := service.ComputeCost(context.Background(), 999)

	// Assert
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestComputeCost_OpenTransaction(t *testing.T) {
	// Arrange
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, MeterStart: 100}, nil
		},
	}
	service := NewBillingService(mockRepo, flatPriceTariff(5.01), newTestLogger())

	// Act
	_, err := service.ComputeCost(context.Background(), 1001)

	// Assert
	if !errors.Is(err, domain.ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestComputeCost_FewerThanTwoSamplesFallsBackToFlatRate(t *testing.T) {
	// Arrange: 2 kWh, no samples, priced at the start-time rate
	tx := closedTransaction(1000, 3000)
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return tx, nil
		},
	}
	service := NewBillingService(mockRepo, flatPriceTariff(5.01), newTestLogger())

	// Act
	breakdown, err := service.ComputeCost(context.Background(), tx.ID)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if breakdown.EnergyCost != 10.02 {
		t.Errorf("expected energy cost 10.02, got %v", breakdown.EnergyCost)
	}
	if len(breakdown.Details) != 1 {
		t.Fatalf("expected a single detail line, got %d", len(breakdown.Details))
	}
	if breakdown.Details[0].KWh != 2.0 {
		t.Errorf("expected 2.0 kWh on the flat line, got %v", breakdown.Details[0].KWh)
	}
	if breakdown.BasicFee != 75.0 {
		t.Errorf("expected basic fee 75.0, got %v", breakdown.BasicFee)
	}
	if breakdown.TotalCost != 85.02 {
		t.Errorf("expected total 85.02, got %v", breakdown.TotalCost)
	}
}

func TestComputeCost_PerPairIntegration(t *testing.T) {
	// Arrange: three samples, two pairs, per-pair price fixed at the first
	// sample of the pair; one pair has a negative delta clamped to zero
	tx := closedTransaction(1000, 4000)
	samples := []domain.MeterSample{
		{TransactionID: tx.ID, Timestamp: tx.StartTime, Value: 1000},
		{TransactionID: tx.ID, Timestamp: tx.StartTime.Add(20 * time.Minute), Value: 2500},
		{TransactionID: tx.ID, Timestamp: tx.StartTime.Add(40 * time.Minute), Value: 2000},
	}
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return tx, nil
		},
		FindSamplesFunc: func(ctx context.Context, transactionID int64) ([]domain.MeterSample, error) {
			return samples, nil
		},
	}
	service := NewBillingService(mockRepo, flatPriceTariff(2.0), newTestLogger())

	// Act
	breakdown, err := service.ComputeCost(context.Background(), tx.ID)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(breakdown.Details) != 2 {
		t.Fatalf("expected two detail lines, got %d", len(breakdown.Details))
	}
	// Pair 1: 1.5 kWh * 2.0 = 3.0; pair 2 clamped to 0
	if breakdown.EnergyCost != 3.0 {
		t.Errorf("expected energy cost 3.0, got %v", breakdown.EnergyCost)
	}
	if breakdown.Details[1].KWh != 0 {
		t.Errorf("expected clamped 0 kWh on the second pair, got %v", breakdown.Details[1].KWh)
	}
	// TotalKWh comes from the registers, unclamped view of the whole session
	if breakdown.TotalKWh != 3.0 {
		t.Errorf("expected total 3.0 kWh from registers, got %v", breakdown.TotalKWh)
	}
}

func TestComputeCost_OveruseFee(t *testing.T) {
	// Arrange: 2500 kWh against a 2000 kWh threshold at 1.02 delta
	tx := closedTransaction(0, 2_500_000)
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return tx, nil
		},
	}
	service := NewBillingService(mockRepo, flatPriceTariff(2.0), newTestLogger())

	// Act
	breakdown, err := service.ComputeCost(context.Background(), tx.ID)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantOveruse := 500 * 1.02
	if math.Abs(breakdown.OveruseFee-wantOveruse) > 1e-9 {
		t.Errorf("expected overuse fee %v, got %v", wantOveruse, breakdown.OveruseFee)
	}
}
