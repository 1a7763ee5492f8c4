package authorization

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

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func acceptedTag(idTag string) *domain.IdTag {
	return &domain.IdTag{
		IdTag:      idTag,
		Status:     "Accepted",
		ValidUntil: "2030-12-31T23:59:59Z",
	}
}

func activeReservation(chargePointID, idTag string) *domain.Reservation {
	return &domain.Reservation{
		ID:            "res-1",
		ChargePointID: chargePointID,
		IdTag:         idTag,
		StartTime:     testNow.Add(-time.Hour),
		EndTime:       testNow.Add(time.Hour),
		Status:        domain.ReservationStatusActive,
	}
}

func TestAuthorize_UnknownTag(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return nil, nil
		},
	}
	service := NewService(mockTags, &mocks.MockReservationRepository{}, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.Authorize(context.Background(), "NOPE", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationInvalid {
		t.Errorf("expected Invalid, got %s", status)
	}
}

func TestAuthorize_StoredStatusNotAccepted(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return &domain.IdTag{IdTag: idTag, Status: "Blocked", ValidUntil: "2030-12-31T23:59:59Z"}, nil
		},
	}
	service := NewService(mockTags, &mocks.MockReservationRepository{}, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.Authorize(context.Background(), "TAG001", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired, got %s", status)
	}
}

func TestAuthorize_ExpiredValidUntil(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return &domain.IdTag{IdTag: idTag, Status: "Accepted", ValidUntil: "2020-01-01T00:00:00Z"}, nil
		},
	}
	service := NewService(mockTags, &mocks.MockReservationRepository{}, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.Authorize(context.Background(), "TAG001", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired, got %s", status)
	}
}

func TestAuthorize_MalformedValidUntil(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return &domain.IdTag{IdTag: idTag, Status: "Accepted", ValidUntil: "not-a-date"}, nil
		},
	}
	service := NewService(mockTags, &mocks.MockReservationRepository{}, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.Authorize(context.Background(), "TAG001", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired for malformed expiry, got %s", status)
	}
}

func TestAuthorize_Accepted(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return acceptedTag(idTag), nil
		},
	}
	service := NewService(mockTags, &mocks.MockReservationRepository{}, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.Authorize(context.Background(), "ABC123", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationAccepted {
		t.Errorf("expected Accepted, got %s", status)
	}
}

func TestAdmitStart_TagGateFailsFirst(t *testing.T) {
	// Arrange: tag is unknown, reservation must not even be touched
	reservationCalled := false
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return nil, nil
		},
	}
	mockReservations := &mocks.MockReservationRepository{
		ConsumeActiveFunc: func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
			reservationCalled = true
			return activeReservation(chargePointID, idTag), nil
		},
	}
	service := NewService(mockTags, mockReservations, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.AdmitStart(context.Background(), "CP001", 1, "NOPE", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationInvalid {
		t.Errorf("expected Invalid, got %s", status)
	}
	if reservationCalled {
		t.Error("reservation gate ran before tag gate rejected")
	}
}

func TestAdmitStart_NoReservation(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return acceptedTag(idTag), nil
		},
	}
	mockReservations := &mocks.MockReservationRepository{
		ConsumeActiveFunc: func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
			return nil, domain.ErrNotFound
		},
	}
	service := NewService(mockTags, mockReservations, &mocks.MockCardRepository{}, newTestLogger())

	// Act
	status, err := service.AdmitStart(context.Background(), "CP001", 1, "ABC123", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationExpired {
		t.Errorf("expected Expired without a reservation, got %s", status)
	}
}

func TestAdmitStart_NoCardAccount(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return acceptedTag(idTag), nil
		},
	}
	mockReservations := &mocks.MockReservationRepository{
		ConsumeActiveFunc: func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
			return activeReservation(chargePointID, idTag), nil
		},
	}
	mockCards := &mocks.MockCardRepository{
		FindByCardIDFunc: func(ctx context.Context, cardID string) (*domain.CardAccount, error) {
			return nil, nil
		},
	}
	service := NewService(mockTags, mockReservations, mockCards, newTestLogger())

	// Act
	status, err := service.AdmitStart(context.Background(), "CP001", 1, "ABC123", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationInvalid {
		t.Errorf("expected Invalid without a card account, got %s", status)
	}
}

func TestAdmitStart_InsufficientBalance(t *testing.T) {
	// Arrange: balance below the start minimum; the reservation is already
	// consumed by the time the balance gate rejects
	consumed := 0
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return acceptedTag(idTag), nil
		},
	}
	mockReservations := &mocks.MockReservationRepository{
		ConsumeActiveFunc: func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
			consumed++
			return activeReservation(chargePointID, idTag), nil
		},
	}
	mockCards := &mocks.MockCardRepository{
		FindByCardIDFunc: func(ctx context.Context, cardID string) (*domain.CardAccount, error) {
			return &domain.CardAccount{CardID: cardID, Balance: domain.MinStartBalance - 0.01}, nil
		},
	}
	service := NewService(mockTags, mockReservations, mockCards, newTestLogger())

	// Act
	status, err := service.AdmitStart(context.Background(), "CP001", 1, "USER999", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationBlocked {
		t.Errorf("expected Blocked, got %s", status)
	}
	if consumed != 1 {
		t.Errorf("expected reservation consumed exactly once, got %d", consumed)
	}
}

func TestAdmitStart_AllGatesPass(t *testing.T) {
	// Arrange
	mockTags := &mocks.MockIdTagRepository{
		FindByIDFunc: func(ctx context.Context, idTag string) (*domain.IdTag, error) {
			return acceptedTag(idTag), nil
		},
	}
	mockReservations := &mocks.MockReservationRepository{
		ConsumeActiveFunc: func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
			return activeReservation(chargePointID, idTag), nil
		},
	}
	mockCards := &mocks.MockCardRepository{
		FindByCardIDFunc: func(ctx context.Context, cardID string) (*domain.CardAccount, error) {
			return &domain.CardAccount{CardID: cardID, Balance: 200}, nil
		},
	}
	service := NewService(mockTags, mockReservations, mockCards, newTestLogger())

	// Act
	status, err := service.AdmitStart(context.Background(), "CP001", 1, "ABC123", testNow)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status != domain.AuthorizationAccepted {
		t.Errorf("expected Accepted, got %s", status)
	}
}
