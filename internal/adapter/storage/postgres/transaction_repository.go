package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type TransactionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTransactionRepository(db *gorm.DB, log *zap.Logger) ports.TransactionRepository {
	return &TransactionRepository{db: db, log: log}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.WithContext(ctx).First(&tx, "transaction_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) FindOpenByConnector(ctx context.Context, chargePointID string, connectorID int) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.WithContext(ctx).
		Where("charge_point_id = ? AND connector_id = ? AND meter_stop IS NULL", chargePointID, connectorID).
		Order("start_time desc").
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Close(ctx context.Context, id int64, meterStop int, stopTime time.Time, reason string) error {
	res := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("transaction_id = ?", id).
		Updates(map[string]interface{}{
			"meter_stop": meterStop,
			"stop_time":  stopTime,
			"reason":     reason,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Find(ctx context.Context, filter ports.TransactionFilter) ([]domain.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.IdTag != "" {
		q = q.Where("id_tag = ?", filter.IdTag)
	}
	if filter.ChargePointID != "" {
		q = q.Where("charge_point_id = ?", filter.ChargePointID)
	}
	if filter.Start != nil {
		q = q.Where("start_time >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("start_time <= ?", *filter.End)
	}
	if filter.ClosedOnly {
		q = q.Where("meter_stop IS NOT NULL")
	}
	var txs []domain.Transaction
	err := q.Order("start_time asc").Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) SaveSamples(ctx context.Context, samples []domain.MeterSample) error {
	if len(samples) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&samples).Error
}

func (r *TransactionRepository) FindSamples(ctx context.Context, transactionID int64) ([]domain.MeterSample, error) {
	var samples []domain.MeterSample
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("timestamp asc").
		Find(&samples).Error
	return samples, err
}

func (r *TransactionRepository) LatestSample(ctx context.Context, chargePointID string) (*domain.MeterSample, error) {
	var sample domain.MeterSample
	err := r.db.WithContext(ctx).
		Where("charge_point_id = ?", chargePointID).
		Order("timestamp desc").
		First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}
