package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type UserRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserRepository(db *gorm.DB, log *zap.Logger) ports.UserRepository {
	return &UserRepository{db: db, log: log}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, idTag string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id_tag = ?", idTag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("id_tag asc").Find(&users).Error
	return users, err
}

func (r *UserRepository) Delete(ctx context.Context, idTag string) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id_tag = ?", idTag)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RecipientsFor(ctx context.Context, idTags []string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("card_number <> ''")
	if len(idTags) > 0 {
		q = q.Where("id_tag IN ?", idTags)
	}
	var recipients []string
	err := q.Pluck("card_number", &recipients).Error
	return recipients, err
}
