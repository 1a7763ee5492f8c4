package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// MockAuthorizationService is a mock implementation of AuthorizationService
type MockAuthorizationService struct {
	AuthorizeFunc  func(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error)
	AdmitStartFunc func(ctx context.Context, chargePointID string, connectorID int, idTag string, now time.Time) (domain.AuthorizationStatus, error)
}

func (m *MockAuthorizationService) Authorize(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, idTag, now)
	}
	return domain.AuthorizationAccepted, nil
}

func (m *MockAuthorizationService) AdmitStart(ctx context.Context, chargePointID string, connectorID int, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
	if m.AdmitStartFunc != nil {
		return m.AdmitStartFunc(ctx, chargePointID, connectorID, idTag, now)
	}
	return domain.AuthorizationAccepted, nil
}

// MockTariffService is a mock implementation of TariffService
type MockTariffService struct {
	PriceAtFunc  func(ctx context.Context, at time.Time) (float64, error)
	BaseRateFunc func(ctx context.Context) (*domain.BaseRate, error)
}

func (m *MockTariffService) PriceAt(ctx context.Context, at time.Time) (float64, error) {
	if m.PriceAtFunc != nil {
		return m.PriceAtFunc(ctx, at)
	}
	return 0, nil
}

func (m *MockTariffService) BaseRate(ctx context.Context) (*domain.BaseRate, error) {
	if m.BaseRateFunc != nil {
		return m.BaseRateFunc(ctx)
	}
	return nil, domain.ErrNotFound
}

// MockTransactionService is a mock implementation of TransactionService
type MockTransactionService struct {
	StartFunc         func(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error)
	RecordSamplesFunc func(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error
	StopFunc          func(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error)
	GetFunc           func(ctx context.Context, transactionID int64) (*domain.Transaction, error)
	FindFunc          func(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error)
	SamplesFunc       func(ctx context.Context, transactionID int64) ([]domain.MeterSample, error)
}

func (m *MockTransactionService) Start(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, chargePointID, connectorID, idTag, meterStart, timestamp)
	}
	return ports.StartResult{TransactionID: 1, Status: domain.AuthorizationAccepted}, nil
}

func (m *MockTransactionService) RecordSamples(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error {
	if m.RecordSamplesFunc != nil {
		return m.RecordSamplesFunc(ctx, chargePointID, connectorID, samples)
	}
	return nil
}

func (m *MockTransactionService) Stop(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, transactionID, meterStop, timestamp, idTag, reason)
	}
	return domain.AuthorizationAccepted, nil
}

func (m *MockTransactionService) Get(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, transactionID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockTransactionService) Find(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockTransactionService) Samples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error) {
	if m.SamplesFunc != nil {
		return m.SamplesFunc(ctx, transactionID)
	}
	return nil, nil
}

// MockBillingService is a mock implementation of BillingService
type MockBillingService struct {
	ComputeCostFunc    func(ctx context.Context, transactionID int64) (*ports.CostBreakdown, error)
	SettlementCostFunc func(ctx context.Context, tx *domain.Transaction) (float64, error)
}

func (m *MockBillingService) ComputeCost(ctx context.Context, transactionID int64) (*ports.CostBreakdown, error) {
	if m.ComputeCostFunc != nil {
		return m.ComputeCostFunc(ctx, transactionID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockBillingService) SettlementCost(ctx context.Context, tx *domain.Transaction) (float64, error) {
	if m.SettlementCostFunc != nil {
		return m.SettlementCostFunc(ctx, tx)
	}
	return 0, nil
}

// MockSettlementService is a mock implementation of SettlementService
type MockSettlementService struct {
	SettleFunc func(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error
}

func (m *MockSettlementService) Settle(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, transactionID, idTag, cost, timestamp)
	}
	return nil
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	Pushed   []PushedMessage
	PushFunc func(ctx context.Context, message string, recipients []string) error
}

type PushedMessage struct {
	Message    string
	Recipients []string
}

func (m *MockNotifier) Push(ctx context.Context, message string, recipients []string) error {
	if m.PushFunc != nil {
		return m.PushFunc(ctx, message, recipients)
	}
	m.Pushed = append(m.Pushed, PushedMessage{Message: message, Recipients: recipients})
	return nil
}

// MockStatusStore is a mock implementation of StatusStore
type MockStatusStore struct {
	SetStatusFunc func(chargePointID string, connectorID int, state ports.ConnectorState)
	SnapshotFunc  func() map[string]map[int]ports.ConnectorState
	States        map[string]map[int]ports.ConnectorState
}

func (m *MockStatusStore) SetStatus(chargePointID string, connectorID int, state ports.ConnectorState) {
	if m.SetStatusFunc != nil {
		m.SetStatusFunc(chargePointID, connectorID, state)
		return
	}
	if m.States == nil {
		m.States = make(map[string]map[int]ports.ConnectorState)
	}
	if m.States[chargePointID] == nil {
		m.States[chargePointID] = make(map[int]ports.ConnectorState)
	}
	m.States[chargePointID][connectorID] = state
}

func (m *MockStatusStore) Snapshot() map[string]map[int]ports.ConnectorState {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return m.States
}
