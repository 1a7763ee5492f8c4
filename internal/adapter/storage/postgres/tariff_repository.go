package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type TariffRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTariffRepository(db *gorm.DB, log *zap.Logger) ports.TariffRepository {
	return &TariffRepository{db: db, log: log}
}

func (r *TariffRepository) FindRules(ctx context.Context, season domain.Season, dayType domain.DayType) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	err := r.db.WithContext(ctx).
		Where("season = ? AND day_type = ?", season, dayType).
		Order("start_time asc").
		Find(&rules).Error
	return rules, err
}

func (r *TariffRepository) FindAllRules(ctx context.Context) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	err := r.db.WithContext(ctx).
		Order("season asc, day_type asc, start_time asc").
		Find(&rules).Error
	return rules, err
}

func (r *TariffRepository) SaveRule(ctx context.Context, rule *domain.PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *TariffRepository) DeleteRule(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.PricingRule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TariffRepository) BaseRate(ctx context.Context) (*domain.BaseRate, error) {
	var rate domain.BaseRate
	err := r.db.WithContext(ctx).First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}
