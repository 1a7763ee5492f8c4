package transaction

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestStart_RejectedAdmissionCreatesNothing(t *testing.T) {
	// Arrange
	created := false
	mockRepo := &mocks.MockTransactionRepository{
		CreateFunc: func(ctx context.Context, tx *domain.Transaction) error {
			created = true
			return nil
		},
	}
	mockAuth := &mocks.MockAuthorizationService{
		AdmitStartFunc: func(ctx context.Context, chargePointID string, connectorID int, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
			return domain.AuthorizationBlocked, nil
		},
	}
	service := NewService(mockRepo, mockAuth, &mocks.MockBillingService{}, &mocks.MockSettlementService{}, newTestLogger())

	// Act
	result, err := service.Start(context.Background(), "CP001", 1, "USER999", 1000, time.Now())

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != domain.AuthorizationBlocked {
		t.Errorf("expected Blocked, got %s", result.Status)
	}
	if result.TransactionID != 0 {
		t.Errorf("expected transaction id 0 on rejection, got %d", result.TransactionID)
	}
	if created {
		t.Error("no ledger record may be created on a rejected admission")
	}
}

func TestStart_AcceptedUsesClockMillisAsID(t *testing.T) {
	// Arrange
	var createdTx *domain.Transaction
	mockRepo := &mocks.MockTransactionRepository{
		CreateFunc: func(ctx context.Context, tx *domain.Transaction) error {
			createdTx = tx
			return nil
		},
	}
	service := NewService(mockRepo, &mocks.MockAuthorizationService{}, &mocks.MockBillingService{}, &mocks.MockSettlementService{}, newTestLogger())
	fixed := time.Date(2025, time.July, 7, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }
	startTime := fixed.Add(-2 * time.Second)

	// Act
	result, err := service.Start(context.Background(), "CP001", 1, "ABC123", 1000, startTime)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != domain.AuthorizationAccepted {
		t.Errorf("expected Accepted, got %s", result.Status)
	}
	if result.TransactionID != fixed.UnixMilli() {
		t.Errorf("expected id %d, got %d", fixed.UnixMilli(), result.TransactionID)
	}
	if createdTx == nil {
		t.Fatal("expected a ledger record")
	}
	if !createdTx.StartTime.Equal(startTime) {
		t.Errorf("expected reported start time kept, got %v", createdTx.StartTime)
	}
	if createdTx.MeterStart != 1000 {
		t.Errorf("expected meter start 1000, got %d", createdTx.MeterStart)
	}
}

func TestStart_ConflictingIDSurfaces(t *testing.T) {
	// Arrange
	mockRepo := &mocks.MockTransactionRepository{
		CreateFunc: func(ctx context.Context, tx *domain.Transaction) error {
			return domain.ErrConflict
		},
	}
	service := NewService(mockRepo, &mocks.MockAuthorizationService{}, &mocks.MockBillingService{}, &mocks.MockSettlementService{}, newTestLogger())

	// Act
	_, err := service.Start(context.Background(), "CP001", 1, "ABC123", 1000, time.Now())

	// Assert
	if err != domain.ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestStop_UnknownTransaction(t *testing.T) {
	// Arrange: unknown ids are acknowledged with Expired, nothing is closed
	closed := false
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return nil, nil
		},
		CloseFunc: func(ctx context.Context, id int64, meterStop int, stopTime time.Time, reason string) error {
			closed = true
			return nil
		},
	}
	service := NewService(mockRepo, &mocks.MockAuthorizationService{}, &mocks.MockBillingService{}, &mocks.MockSettlementService{}, newTestLogger())

	// Act
	status, err := service.Stop(context.Background(), 999, 2000, time.Now(), "ABC123", "Local")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired, got %s", status)
	}
	if closed {
		t.Error("nothing may be closed for an unknown id")
	}
}

func TestStop_AlreadyClosedTransaction(t *testing.T) {
	// Arrange
	meterStop := 2000
	settled := false
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id, MeterStart: 1000, MeterStop: &meterStop}, nil
		},
	}
	mockSettlement := &mocks.MockSettlementService{
		SettleFunc: func(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error {
			settled = true
			return nil
		},
	}
	service := NewService(mockRepo, &mocks.MockAuthorizationService{}, &mocks.MockBillingService{}, mockSettlement, newTestLogger())

	// Act
	status, err := service.Stop(context.Background(), 1001, 3000, time.Now(), "ABC123", "Local")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired for a closed transaction, got %s", status)
	}
	if settled {
		t.Error("a closed transaction must not be settled again")
	}
}

func TestStop_SettlesWithStoredTagWhenStopOmitsIt(t *testing.T) {
	// Arrange
	var settledTag string
	var settledCost float64
	mockRepo := &mocks.MockTransactionRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Transaction, error) {
			return &domain.Transaction{
				ID:         id,
				IdTag:      "ABC123",
				MeterStart: 1000,
				StartTime:  time.Date(2025, time.July, 7, 10, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	mockBilling := &mocks.MockBillingService{
		SettlementCostFunc: func(ctx context.Context, tx *domain.Transaction) (float64, error) {
			return 10.02, nil
		},
	}
	mockSettlement := &mocks.MockSettlementService{
		SettleFunc: func(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error {
			settledTag = idTag
			settledCost = cost
			return nil
		},
	}
	service := NewService(mockRepo, &mocks.MockAuthorizationService{}, mockBilling, mockSettlement, newTestLogger())

	// Act: StopTransaction without an idTag
	status, err := service.Stop(context.Background(), 1001, 3000, time.Now(), "", "Local")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationAccepted {
		t.Errorf("expected Accepted, got %s", status)
	}
	if settledTag != "ABC123" {
		t.Errorf("expected settlement against the stored tag, got %q", settledTag)
	}
	if settledCost != 10.02 {
		t.Errorf("expected cost 10.02, got %v", settledCost)
	}
}
