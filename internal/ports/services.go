package ports

import (
	"context"
	"time"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// AuthorizationService is the admission gate for charging sessions.
type AuthorizationService interface {
	// Authorize checks the tag alone: missing tag is Invalid; anything but a
	// literal "Accepted" status with an unexpired valid-until is Expired.
	Authorize(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error)
	// AdmitStart runs the three admission gates in order (tag, reservation,
	// balance), short-circuiting on the first failure. A consumed
	// reservation stays consumed even if a later gate rejects.
	AdmitStart(ctx context.Context, chargePointID string, connectorID int, idTag string, now time.Time) (domain.AuthorizationStatus, error)
}

// TariffService resolves time-of-use unit prices.
type TariffService interface {
	// PriceAt is total: it returns 0 (not an error) when no band matches.
	PriceAt(ctx context.Context, at time.Time) (float64, error)
	BaseRate(ctx context.Context) (*domain.BaseRate, error)
}

// StartResult is the outcome of a StartTransaction admission.
type StartResult struct {
	TransactionID int64
	Status        domain.AuthorizationStatus
}

// TransactionService owns the transaction ledger.
type TransactionService interface {
	Start(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (StartResult, error)
	RecordSamples(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error
	// Stop closes the transaction, computes the settlement cost at the
	// start-time rate and invokes settlement. Unknown ids yield Expired
	// with no side effects.
	Stop(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error)
	Get(ctx context.Context, id int64) (*domain.Transaction, error)
	Find(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	Samples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error)
}

// CostLineItem is one priced interval in a detailed cost breakdown.
type CostLineItem struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	KWh   float64   `json:"kWh"`
	Price float64   `json:"price"`
	Cost  float64   `json:"cost"`
}

// CostBreakdown is the reporting-grade cost of a closed transaction.
type CostBreakdown struct {
	TransactionID int64          `json:"transactionId"`
	TotalCost     float64        `json:"totalCost"`
	BasicFee      float64        `json:"basicFee"`
	EnergyCost    float64        `json:"energyCost"`
	OveruseFee    float64        `json:"overuseFee"`
	TotalKWh      float64        `json:"totalKWh"`
	Unit          string         `json:"unit"`
	Details       []CostLineItem `json:"details"`
}

// BillingService computes transaction costs. The two computations diverge on
// purpose: ComputeCost integrates per-sample for reporting, SettlementCost
// prices the whole session at the start-time rate and is what actually gets
// debited.
type BillingService interface {
	ComputeCost(ctx context.Context, transactionID int64) (*CostBreakdown, error)
	SettlementCost(ctx context.Context, tx *domain.Transaction) (float64, error)
}

// SettlementService applies a computed cost to a prepaid account.
type SettlementService interface {
	Settle(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error
}

// Cache is a best-effort key/value store for non-authoritative state.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// Notifier delivers free-text push messages to recipients. Callers treat
// delivery as best-effort.
type Notifier interface {
	Push(ctx context.Context, message string, recipients []string) error
}

// ConnectorState is the last reported state of one connector.
type ConnectorState struct {
	Status    string    `json:"status"`
	ErrorCode string    `json:"error_code"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusStore tracks the live connector snapshot served by the status API.
// It is rebuilt from scratch on restart; the status log keeps the history.
type StatusStore interface {
	SetStatus(chargePointID string, connectorID int, state ConnectorState)
	Snapshot() map[string]map[int]ConnectorState
}
