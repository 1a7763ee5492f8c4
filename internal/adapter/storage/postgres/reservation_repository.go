package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type ReservationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReservationRepository(db *gorm.DB, log *zap.Logger) ports.ReservationRepository {
	return &ReservationRepository{db: db, log: log}
}

func (r *ReservationRepository) Save(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := r.db.WithContext(ctx).Order("start_time asc").Find(&reservations).Error
	return reservations, err
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ConsumeActive locks the matching reservation row for the duration of the
// transaction so two sessions starting with the same tag cannot both consume
// it.
func (r *ReservationRepository) ConsumeActive(ctx context.Context, chargePointID, idTag string, now time.Time) (*domain.Reservation, error) {
	var consumed *domain.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res domain.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("charge_point_id = ? AND id_tag = ? AND status = ? AND start_time <= ? AND end_time >= ?",
				chargePointID, idTag, domain.ReservationStatusActive, now, now).
			Order("start_time asc").
			First(&res).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := res.Consume(now); err != nil {
			return err
		}
		if err := tx.Save(&res).Error; err != nil {
			return err
		}
		consumed = &res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}
