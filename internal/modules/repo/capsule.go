package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CapsuleRepo interface {
	Create(ctx context.Context, c *model.Capsule) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Capsule, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	List(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]*model.Capsule, error)
}

type capsuleRepo struct{ db *gorm.DB }

func NewCapsuleRepo(db *gorm.DB) CapsuleRepo {
	return &capsuleRepo{db: db}
}

func (r *capsuleRepo) Create(ctx context.Context, c *model.Capsule) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *capsuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Capsule, error) {
	var c model.Capsule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *capsuleRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Capsule{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// List returns a user's capsules in stable (created_at, id) order,
// optionally filtered by profile.
func (r *capsuleRepo) List(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]*model.Capsule, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if profileID != nil {
		q = q.Where("profile_id = ?", *profileID)
	}

	var capsules []*model.Capsule
	err := q.Order("created_at ASC, id ASC").Find(&capsules).Error
	if err != nil {
		return nil, err
	}
	return capsules, nil
}
