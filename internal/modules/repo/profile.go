package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepo interface {
	Create(ctx context.Context, p *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Profile, error)
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, p *model.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
