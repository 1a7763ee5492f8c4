package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type IdTagRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewIdTagRepository(db *gorm.DB, log *zap.Logger) ports.IdTagRepository {
	return &IdTagRepository{db: db, log: log}
}

func (r *IdTagRepository) Save(ctx context.Context, tag *domain.IdTag) error {
	return r.db.WithContext(ctx).Save(tag).Error
}

func (r *IdTagRepository) Create(ctx context.Context, tag *domain.IdTag) error {
	err := r.db.WithContext(ctx).Create(tag).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *IdTagRepository) FindByID(ctx context.Context, idTag string) (*domain.IdTag, error) {
	var tag domain.IdTag
	err := r.db.WithContext(ctx).First(&tag, "id_tag = ?", idTag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

func (r *IdTagRepository) FindAll(ctx context.Context) ([]domain.IdTag, error) {
	var tags []domain.IdTag
	err := r.db.WithContext(ctx).Order("id_tag asc").Find(&tags).Error
	return tags, err
}

func (r *IdTagRepository) Delete(ctx context.Context, idTag string) error {
	return r.db.WithContext(ctx).Delete(&domain.IdTag{}, "id_tag = ?", idTag).Error
}
