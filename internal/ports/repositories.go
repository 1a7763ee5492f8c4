package ports

import (
	"context"
	"time"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// Repositories return (nil, nil) when a record does not exist unless
// documented otherwise; storage failures are returned as errors.

type IdTagRepository interface {
	Save(ctx context.Context, tag *domain.IdTag) error
	Create(ctx context.Context, tag *domain.IdTag) error // domain.ErrConflict on duplicate
	FindByID(ctx context.Context, idTag string) (*domain.IdTag, error)
	FindAll(ctx context.Context) ([]domain.IdTag, error)
	Delete(ctx context.Context, idTag string) error
}

// TransactionFilter narrows transaction queries on the reporting surface.
type TransactionFilter struct {
	IdTag         string
	ChargePointID string
	Start         *time.Time
	End           *time.Time
	ClosedOnly    bool
}

type TransactionRepository interface {
	// Create inserts a new open transaction. A colliding transaction id
	// returns domain.ErrConflict rather than overwriting.
	Create(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// FindOpenByConnector returns the open transaction on a connector, if any.
	FindOpenByConnector(ctx context.Context, chargePointID string, connectorID int) (*domain.Transaction, error)
	// Close sets meter_stop, stop_time and reason exactly once. Closing an
	// unknown id returns domain.ErrNotFound.
	Close(ctx context.Context, id int64, meterStop int, stopTime time.Time, reason string) error
	Find(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)

	SaveSamples(ctx context.Context, samples []domain.MeterSample) error
	FindSamples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error)
	LatestSample(ctx context.Context, chargePointID string) (*domain.MeterSample, error)
}

type TariffRepository interface {
	FindRules(ctx context.Context, season domain.Season, dayType domain.DayType) ([]domain.PricingRule, error)
	FindAllRules(ctx context.Context) ([]domain.PricingRule, error)
	SaveRule(ctx context.Context, rule *domain.PricingRule) error
	DeleteRule(ctx context.Context, id uint) error
	BaseRate(ctx context.Context) (*domain.BaseRate, error)
}

type ReservationRepository interface {
	Save(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	Delete(ctx context.Context, id string) error
	// ConsumeActive atomically finds an active reservation for the charge
	// point and tag whose window contains now, and transitions it to
	// completed. Concurrent callers racing for the same reservation
	// serialize on the row; exactly one wins. domain.ErrNotFound when no
	// matching reservation exists.
	ConsumeActive(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error)
}

type CardRepository interface {
	FindByCardID(ctx context.Context, cardID string) (*domain.CardAccount, error)
	FindAll(ctx context.Context) ([]domain.CardAccount, error)
	// TopUp credits the account, creating it when missing. Returns the new
	// balance and whether the account was created.
	TopUp(ctx context.Context, cardID string, amount float64) (float64, bool, error)
	// Settle debits the account (floored at zero) and appends the payment in
	// one storage transaction, locking the account row. domain.ErrNotFound
	// when no account exists for the payment's tag; no payment is recorded
	// in that case.
	Settle(ctx context.Context, payment *domain.Payment) (newBalance float64, err error)
	FindPayments(ctx context.Context) ([]domain.Payment, error)
}

type StatusLogRepository interface {
	Save(ctx context.Context, log *domain.StatusLog) error
	Find(ctx context.Context, chargePointID string, start, end *time.Time, limit int) ([]domain.StatusLog, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	Create(ctx context.Context, user *domain.User) error // domain.ErrConflict on duplicate
	FindByID(ctx context.Context, idTag string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, idTag string) error
	// RecipientsFor resolves push-notification recipient ids for the given
	// tags; tags with no bound recipient are skipped. An empty tag list
	// means every user with a bound recipient.
	RecipientsFor(ctx context.Context, idTags []string) ([]string, error)
}

// PeriodEnergy is an aggregate row for usage summaries.
type PeriodEnergy struct {
	Period           string  `json:"period"`
	TransactionCount int     `json:"transaction_count"`
	TotalEnergyWh    float64 `json:"total_energy_wh"`
}

// ConsumerEnergy is an aggregate row for top-consumer rankings.
type ConsumerEnergy struct {
	Key              string  `json:"key"`
	TransactionCount int     `json:"transaction_count"`
	TotalEnergyWh    float64 `json:"total_energy_wh"`
}

type ReportRepository interface {
	EnergyByPeriod(ctx context.Context, groupBy string) ([]PeriodEnergy, error)
	TopConsumers(ctx context.Context, groupBy string, limit int) ([]ConsumerEnergy, error)
	TopConsumersSince(ctx context.Context, since time.Time, limit int) ([]ConsumerEnergy, error)
	DailyEnergyByChargePoint(ctx context.Context, start, end *time.Time) (map[string]map[string]float64, error)
	OpenTransactionCount(ctx context.Context) (int, error)
	EnergySince(ctx context.Context, since time.Time) (float64, error)
	// LatestMeterSum sums the most recent meter reading of every charge
	// point, a rough instantaneous-load figure for the dashboard.
	LatestMeterSum(ctx context.Context) (float64, error)
}
