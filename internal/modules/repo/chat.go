package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepo interface {
	Create(ctx context.Context, m *model.ChatMessage) error
	// ListRecent returns the newest exchanges first.
	ListRecent(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]*model.ChatMessage, error)
}

type chatRepo struct{ db *gorm.DB }

func NewChatRepo(db *gorm.DB) ChatRepo {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, m *model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *chatRepo) ListRecent(ctx context.Context, userID, profileID uuid.UUID, limit int) ([]*model.ChatMessage, error) {
	if limit <= 0 {
		limit = 5
	}
	var msgs []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND profile_id = ?", userID, profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
