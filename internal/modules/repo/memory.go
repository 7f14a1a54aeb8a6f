package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemoryRepo interface {
	Create(ctx context.Context, m *model.Memory) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Memory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Memory, error)
}

type memoryRepo struct{ db *gorm.DB }

func NewMemoryRepo(db *gorm.DB) MemoryRepo {
	return &memoryRepo{db: db}
}

func (r *memoryRepo) Create(ctx context.Context, m *model.Memory) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Memory, error) {
	var m model.Memory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Memory{}).Error
}

func (r *memoryRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Memory{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (r *memoryRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Memory, error) {
	var memories []*model.Memory
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC, id ASC").
		Find(&memories).Error
	if err != nil {
		return nil, err
	}
	return memories, nil
}
