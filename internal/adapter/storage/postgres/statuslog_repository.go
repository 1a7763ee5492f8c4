package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type StatusLogRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStatusLogRepository(db *gorm.DB, log *zap.Logger) ports.StatusLogRepository {
	return &StatusLogRepository{db: db, log: log}
}

func (r *StatusLogRepository) Save(ctx context.Context, entry *domain.StatusLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *StatusLogRepository) Find(ctx context.Context, chargePointID string, start, end *time.Time, limit int) ([]domain.StatusLog, error) {
	q := r.db.WithContext(ctx).Model(&domain.StatusLog{})
	if chargePointID != "" {
		q = q.Where("charge_point_id = ?", chargePointID)
	}
	if start != nil {
		q = q.Where("timestamp >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp <= ?", *end)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []domain.StatusLog
	err := q.Order("timestamp desc").Find(&logs).Error
	return logs, err
}
