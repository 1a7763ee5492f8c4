package mocks

import (
	"context"
	"time"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// MockIdTagRepository is a mock implementation of IdTagRepository
type MockIdTagRepository struct {
	SaveFunc     func(ctx context.Context, tag *domain.IdTag) error
	CreateFunc   func(ctx context.Context, tag *domain.IdTag) error
	FindByIDFunc func(ctx context.Context, idTag string) (*domain.IdTag, error)
	FindAllFunc  func(ctx context.Context) ([]domain.IdTag, error)
	DeleteFunc   func(ctx context.Context, idTag string) error
}

func (m *MockIdTagRepository) Save(ctx context.Context, tag *domain.IdTag) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tag)
	}
	return nil
}

func (m *MockIdTagRepository) Create(ctx context.Context, tag *domain.IdTag) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tag)
	}
	return nil
}

func (m *MockIdTagRepository) FindByID(ctx context.Context, idTag string) (*domain.IdTag, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, idTag)
	}
	return nil, nil
}

func (m *MockIdTagRepository) FindAll(ctx context.Context) ([]domain.IdTag, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockIdTagRepository) Delete(ctx context.Context, idTag string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, idTag)
	}
	return nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	CreateFunc              func(ctx context.Context, tx *domain.Transaction) error
	FindByIDFunc            func(ctx context.Context, id int64) (*domain.Transaction, error)
	FindOpenByConnectorFunc func(ctx context.Context, chargePointID string, connectorID int) (*domain.Transaction, error)
	CloseFunc               func(ctx context.Context, id int64, meterStop int, stopTime time.Time, reason string) error
	FindFunc                func(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error)
	SaveSamplesFunc         func(ctx context.Context, samples []domain.MeterSample) error
	FindSamplesFunc         func(ctx context.Context, transactionID int64) ([]domain.MeterSample, error)
	LatestSampleFunc        func(ctx context.Context, chargePointID string) (*domain.MeterSample, error)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	return nil
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTransactionRepository) FindOpenByConnector(ctx context.Context, chargePointID string, connectorID int) (*domain.Transaction, error) {
	if m.FindOpenByConnectorFunc != nil {
		return m.FindOpenByConnectorFunc(ctx, chargePointID, connectorID)
	}
	return nil, nil
}

func (m *MockTransactionRepository) Close(ctx context.Context, id int64, meterStop int, stopTime time.Time, reason string) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, id, meterStop, stopTime, reason)
	}
	return nil
}

func (m *MockTransactionRepository) Find(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockTransactionRepository) SaveSamples(ctx context.Context, samples []domain.MeterSample) error {
	if m.SaveSamplesFunc != nil {
		return m.SaveSamplesFunc(ctx, samples)
	}
	return nil
}

func (m *MockTransactionRepository) FindSamples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error) {
	if m.FindSamplesFunc != nil {
		return m.FindSamplesFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockTransactionRepository) LatestSample(ctx context.Context, chargePointID string) (*domain.MeterSample, error) {
	if m.LatestSampleFunc != nil {
		return m.LatestSampleFunc(ctx, chargePointID)
	}
	return nil, nil
}

// MockTariffRepository is a mock implementation of TariffRepository
type MockTariffRepository struct {
	FindRulesFunc    func(ctx context.Context, season domain.Season, dayType domain.DayType) ([]domain.PricingRule, error)
	FindAllRulesFunc func(ctx context.Context) ([]domain.PricingRule, error)
	SaveRuleFunc     func(ctx context.Context, rule *domain.PricingRule) error
	DeleteRuleFunc   func(ctx context.Context, id uint) error
	BaseRateFunc     func(ctx context.Context) (*domain.BaseRate, error)
}

func (m *MockTariffRepository) FindRules(ctx context.Context, season domain.Season, dayType domain.DayType) ([]domain.PricingRule, error) {
	if m.FindRulesFunc != nil {
		return m.FindRulesFunc(ctx, season, dayType)
	}
	return nil, nil
}

func (m *MockTariffRepository) FindAllRules(ctx context.Context) ([]domain.PricingRule, error) {
	if m.FindAllRulesFunc != nil {
		return m.FindAllRulesFunc(ctx)
	}
	return nil, nil
}

func (m *MockTariffRepository) SaveRule(ctx context.Context, rule *domain.PricingRule) error {
	if m.SaveRuleFunc != nil {
		return m.SaveRuleFunc(ctx, rule)
	}
	return nil
}

func (m *MockTariffRepository) DeleteRule(ctx context.Context, id uint) error {
	if m.DeleteRuleFunc != nil {
		return m.DeleteRuleFunc(ctx, id)
	}
	return nil
}

func (m *MockTariffRepository) BaseRate(ctx context.Context) (*domain.BaseRate, error) {
	if m.BaseRateFunc != nil {
		return m.BaseRateFunc(ctx)
	}
	return nil, nil
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	SaveFunc          func(ctx context.Context, r *domain.Reservation) error
	FindByIDFunc      func(ctx context.Context, id string) (*domain.Reservation, error)
	FindAllFunc       func(ctx context.Context) ([]domain.Reservation, error)
	DeleteFunc        func(ctx context.Context, id string) error
	ConsumeActiveFunc func(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error)
}

func (m *MockReservationRepository) Save(ctx context.Context, r *domain.Reservation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, r)
	}
	return nil
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockReservationRepository) ConsumeActive(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
	if m.ConsumeActiveFunc != nil {
		return m.ConsumeActiveFunc(ctx, chargePointID, idTag, now)
	}
	return nil, domain.ErrNotFound
}

// MockCardRepository is a mock implementation of CardRepository
type MockCardRepository struct {
	FindByCardIDFunc func(ctx context.Context, cardID string) (*domain.CardAccount, error)
	FindAllFunc      func(ctx context.Context) ([]domain.CardAccount, error)
	TopUpFunc        func(ctx context.Context, cardID string, amount float64) (float64, bool, error)
	SettleFunc       func(ctx context.Context, payment *domain.Payment) (float64, error)
	FindPaymentsFunc func(ctx context.Context) ([]domain.Payment, error)
}

func (m *MockCardRepository) FindByCardID(ctx context.Context, cardID string) (*domain.CardAccount, error) {
	if m.FindByCardIDFunc != nil {
		return m.FindByCardIDFunc(ctx, cardID)
	}
	return nil, nil
}

func (m *MockCardRepository) FindAll(ctx context.Context) ([]domain.CardAccount, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockCardRepository) TopUp(ctx context.Context, cardID string, amount float64) (float64, bool, error) {
	if m.TopUpFunc != nil {
		return m.TopUpFunc(ctx, cardID, amount)
	}
	return amount, true, nil
}

func (m *MockCardRepository) Settle(ctx context.Context, payment *domain.Payment) (float64, error) {
	if m.SettleFunc != nil {
		return m.SettleFunc(ctx, payment)
	}
	return 0, nil
}

func (m *MockCardRepository) FindPayments(ctx context.Context) ([]domain.Payment, error) {
	if m.FindPaymentsFunc != nil {
		return m.FindPaymentsFunc(ctx)
	}
	return nil, nil
}

// MockStatusLogRepository is a mock implementation of StatusLogRepository
type MockStatusLogRepository struct {
	SaveFunc func(ctx context.Context, log *domain.StatusLog) error
	FindFunc func(ctx context.Context, chargePointID string, start, end *time.Time, limit int) ([]domain.StatusLog, error)
}

func (m *MockStatusLogRepository) Save(ctx context.Context, log *domain.StatusLog) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, log)
	}
	return nil
}

func (m *MockStatusLogRepository) Find(ctx context.Context, chargePointID string, start, end *time.Time, limit int) ([]domain.StatusLog, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, chargePointID, start, end, limit)
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc          func(ctx context.Context, user *domain.User) error
	CreateFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc      func(ctx context.Context, idTag string) (*domain.User, error)
	FindAllFunc       func(ctx context.Context) ([]domain.User, error)
	DeleteFunc        func(ctx context.Context, idTag string) error
	RecipientsForFunc func(ctx context.Context, idTags []string) ([]string, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, idTag string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, idTag)
	}
	return nil, nil
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, idTag string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, idTag)
	}
	return nil
}

func (m *MockUserRepository) RecipientsFor(ctx context.Context, idTags []string) ([]string, error) {
	if m.RecipientsForFunc != nil {
		return m.RecipientsForFunc(ctx, idTags)
	}
	return nil, nil
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	EnergyByPeriodFunc           func(ctx context.Context, groupBy string) ([]ports.PeriodEnergy, error)
	TopConsumersFunc             func(ctx context.Context, groupBy string, limit int) ([]ports.ConsumerEnergy, error)
	TopConsumersSinceFunc        func(ctx context.Context, since time.Time, limit int) ([]ports.ConsumerEnergy, error)
	DailyEnergyByChargePointFunc func(ctx context.Context, start, end *time.Time) (map[string]map[string]float64, error)
	OpenTransactionCountFunc     func(ctx context.Context) (int, error)
	EnergySinceFunc              func(ctx context.Context, since time.Time) (float64, error)
	LatestMeterSumFunc           func(ctx context.Context) (float64, error)
}

func (m *MockReportRepository) EnergyByPeriod(ctx context.Context, groupBy string) ([]ports.PeriodEnergy, error) {
	if m.EnergyByPeriodFunc != nil {
		return m.EnergyByPeriodFunc(ctx, groupBy)
	}
	return nil, nil
}

func (m *MockReportRepository) TopConsumers(ctx context.Context, groupBy string, limit int) ([]ports.ConsumerEnergy, error) {
	if m.TopConsumersFunc != nil {
		return m.TopConsumersFunc(ctx, groupBy, limit)
	}
	return nil, nil
}

func (m *MockReportRepository) TopConsumersSince(ctx context.Context, since time.Time, limit int) ([]ports.ConsumerEnergy, error) {
	if m.TopConsumersSinceFunc != nil {
		return m.TopConsumersSinceFunc(ctx, since, limit)
	}
	return nil, nil
}

func (m *MockReportRepository) DailyEnergyByChargePoint(ctx context.Context, start, end *time.Time) (map[string]map[string]float64, error) {
	if m.DailyEnergyByChargePointFunc != nil {
		return m.DailyEnergyByChargePointFunc(ctx, start, end)
	}
	return nil, nil
}

func (m *MockReportRepository) OpenTransactionCount(ctx context.Context) (int, error) {
	if m.OpenTransactionCountFunc != nil {
		return m.OpenTransactionCountFunc(ctx)
	}
	return 0, nil
}

func (m *MockReportRepository) EnergySince(ctx context.Context, since time.Time) (float64, error) {
	if m.EnergySinceFunc != nil {
		return m.EnergySinceFunc(ctx, since)
	}
	return 0, nil
}

func (m *MockReportRepository) LatestMeterSum(ctx context.Context) (float64, error) {
	if m.LatestMeterSumFunc != nil {
		return m.LatestMeterSumFunc(ctx)
	}
	return 0, nil
}
