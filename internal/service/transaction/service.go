package transaction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/observability/telemetry"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// Service owns the transaction ledger: admission, telemetry ingest and the
// stop/settlement path.
type Service struct {
	transactions ports.TransactionRepository
	auth         ports.AuthorizationService
	billing      ports.BillingService
	settlement   ports.SettlementService
	log          *zap.Logger
	now          func() time.Time
}

func NewService(
	transactions ports.TransactionRepository,
	auth ports.AuthorizationService,
	billing ports.BillingService,
	settlement ports.SettlementService,
	log *zap.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		auth:         auth,
		billing:      billing,
		settlement:   settlement,
		log:          log,
		now:          time.Now,
	}
}

// Start admits a new charging session. A rejected admission returns
// transaction id 0 and the gate's status; no ledger record is created.
// Transaction ids are derived from the server clock in milliseconds; a
// colliding id surfaces as a conflict instead of overwriting the open record.
func (s *Service) Start(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error) {
	status, err := s.auth.AdmitStart(ctx, chargePointID, connectorID, idTag, s.now().UTC())
	if err != nil {
		return ports.StartResult{}, err
	}
	if status != domain.AuthorizationAccepted {
		return ports.StartResult{TransactionID: 0, Status: status}, nil
	}

	tx := &domain.Transaction{
		ID:            s.now().UnixMilli(),
		ChargePointID: chargePointID,
		ConnectorID:   connectorID,
		IdTag:         idTag,
		MeterStart:    meterStart,
		StartTime:     timestamp,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return ports.StartResult{}, err
	}

	s.log.Info("Transaction started",
		zap.Int64("transaction_id", tx.ID),
		zap.String("charge_point_id", chargePointID),
		zap.String("id_tag", idTag),
		zap.Int("meter_start", meterStart),
	)
	return ports.StartResult{TransactionID: tx.ID, Status: domain.AuthorizationAccepted}, nil
}

// RecordSamples persists a batch of meter readings as-is.
func (s *Service) RecordSamples(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error {
	return s.transactions.SaveSamples(ctx, samples)
}

// Stop closes the session and settles it. Unknown or already-closed ids are
// acknowledged with Expired and leave no trace; the charge point cannot do
// anything useful with a harder failure.
func (s *Service) Stop(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error) {
	tx, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return "", err
	}
	if tx == nil || !tx.Open() {
		s.log.Warn("StopTransaction for unknown or closed transaction",
			zap.Int64("transaction_id", transactionID),
		)
		return domain.AuthorizationExpired, nil
	}

	if err := s.transactions.Close(ctx, transactionID, meterStop, timestamp, reason); err != nil {
		return "", err
	}
	tx.MeterStop = &meterStop
	tx.StopTime = &timestamp
	telemetry.EnergyDeliveredTotal.Add(tx.TotalEnergyKWh())

	cost, err := s.billing.SettlementCost(ctx, tx)
	if err != nil {
		return "", err
	}

	if idTag == "" {
		idTag = tx.IdTag
	}
	if err := s.settlement.Settle(ctx, transactionID, idTag, cost, timestamp); err != nil {
		return "", err
	}

	s.log.Info("Transaction stopped",
		zap.Int64("transaction_id", transactionID),
		zap.Int("meter_stop", meterStop),
		zap.Float64("cost", cost),
	)
	return domain.AuthorizationAccepted, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

func (s *Service) Find(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	return s.transactions.Find(ctx, filter)
}

func (s *Service) Samples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error) {
	return s.transactions.FindSamples(ctx, transactionID)
}
