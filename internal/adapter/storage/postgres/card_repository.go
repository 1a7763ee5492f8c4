package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type CardRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCardRepository(db *gorm.DB, log *zap.Logger) ports.CardRepository {
	return &CardRepository{db: db, log: log}
}

func (r *CardRepository) FindByCardID(ctx context.Context, cardID string) (*domain.CardAccount, error) {
	var card domain.CardAccount
	err := r.db.WithContext(ctx).First(&card, "card_id = ?", cardID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CardRepository) FindAll(ctx context.Context) ([]domain.CardAccount, error) {
	var cards []domain.CardAccount
	err := r.db.WithContext(ctx).Order("card_id asc").Find(&cards).Error
	return cards, err
}

func (r *CardRepository) TopUp(ctx context.Context, cardID string, amount float64) (float64, bool, error) {
	var balance float64
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card domain.CardAccount
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&card, "card_id = ?", cardID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			card = domain.CardAccount{CardID: cardID, Balance: amount}
			if err := tx.Create(&card).Error; err != nil {
				return err
			}
			balance, created = card.Balance, true
			return nil
		}
		if err != nil {
			return err
		}
		card.Balance += amount
		if err := tx.Save(&card).Error; err != nil {
			return err
		}
		balance = card.Balance
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return balance, created, nil
}

// Settle debits the account and records the payment in one transaction. The
// balance never goes below zero; the recorded payment keeps the full amount.
func (r *CardRepository) Settle(ctx context.Context, payment *domain.Payment) (float64, error) {
	var newBalance float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card domain.CardAccount
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&card, "card_id = ?", payment.IdTag).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		newBalance = card.Debit(payment.Amount)
		if err := tx.Save(&card).Error; err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *CardRepository) FindPayments(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).Order("timestamp desc").Find(&payments).Error
	return payments, err
}
