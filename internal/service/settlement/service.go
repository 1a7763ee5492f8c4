package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/adapter/queue"
	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/observability/telemetry"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// SubjectLowBalance is the queue subject for low-balance events.
const SubjectLowBalance = "billing.low_balance"

// Service applies a computed session cost to the prepaid account: one atomic
// debit-plus-payment write, then best-effort notifications.
type Service struct {
	cards    ports.CardRepository
	users    ports.UserRepository
	queue    queue.MessageQueue
	notifier ports.Notifier
	log      *zap.Logger
}

func NewService(
	cards ports.CardRepository,
	users ports.UserRepository,
	mq queue.MessageQueue,
	notifier ports.Notifier,
	log *zap.Logger,
) *Service {
	return &Service{
		cards:    cards,
		users:    users,
		queue:    mq,
		notifier: notifier,
		log:      log,
	}
}

type lowBalanceEvent struct {
	CardID    string    `json:"card_id"`
	Balance   float64   `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}

// Settle debits the tag's account (floored at zero) and records the payment.
// A tag without an account is logged and skipped: the session stays closed
// and no payment row is written. Notification failures never surface to the
// caller.
func (s *Service) Settle(ctx context.Context, transactionID int64, idTag string, cost float64, timestamp time.Time) error {
	payment := &domain.Payment{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		IdTag:         idTag,
		Amount:        cost,
		Timestamp:     timestamp,
	}

	newBalance, err := s.cards.Settle(ctx, payment)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("No card account for tag, skipping settlement",
				zap.String("id_tag", idTag),
				zap.Int64("transaction_id", transactionID),
			)
			telemetry.SettlementsTotal.WithLabelValues("no_account").Inc()
			return nil
		}
		telemetry.SettlementsTotal.WithLabelValues("error").Inc()
		return err
	}

	telemetry.SettlementsTotal.WithLabelValues("ok").Inc()
	telemetry.SettlementAmountTotal.Add(cost)
	s.log.Info("Settlement applied",
		zap.Int64("transaction_id", transactionID),
		zap.String("id_tag", idTag),
		zap.Float64("amount", cost),
		zap.Float64("new_balance", newBalance),
	)

	if newBalance < domain.LowBalanceThreshold {
		s.publishLowBalance(idTag, newBalance, timestamp)
		go s.notifyLowBalance(idTag, newBalance)
	}
	return nil
}

func (s *Service) publishLowBalance(idTag string, balance float64, ts time.Time) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(lowBalanceEvent{CardID: idTag, Balance: balance, Timestamp: ts})
	if err != nil {
		return
	}
	if err := s.queue.Publish(SubjectLowBalance, data); err != nil {
		s.log.Warn("Failed to publish low-balance event", zap.Error(err))
	}
}

func (s *Service) notifyLowBalance(idTag string, balance float64) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	recipients, err := s.users.RecipientsFor(ctx, []string{idTag})
	if err != nil || len(recipients) == 0 {
		recipients = nil
	}

	msg := fmt.Sprintf("⚠️ 卡片 %s 餘額僅剩 %.2f 元，請儘速儲值", idTag, balance)
	if err := s.notifier.Push(ctx, msg, recipients); err != nil {
		telemetry.NotificationsSentTotal.WithLabelValues("low_balance", "error").Inc()
		s.log.Warn("Low-balance notification failed",
			zap.String("id_tag", idTag),
			zap.Error(err),
		)
		return
	}
	telemetry.NotificationsSentTotal.WithLabelValues("low_balance", "ok").Inc()
}
