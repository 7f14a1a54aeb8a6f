package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepo interface {
	Create(ctx context.Context, c *model.Contact) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Contact, error)
}

type contactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) ContactRepo {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, c *model.Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contactRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Contact, error) {
	var contacts []*model.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
