package repo

import (
	"context"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *model.ScheduledNotification) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduledNotification, error)
	ListUnsent(ctx context.Context) ([]*model.ScheduledNotification, error)
	// Claim atomically flips sent false -> true and reports whether this
	// caller won. A row is claimed before any send so two overlapping
	// sweeps can never both dispatch it.
	Claim(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.ScheduledNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduledNotification, error) {
	var n model.ScheduledNotification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListUnsent(ctx context.Context) ([]*model.ScheduledNotification, error) {
	var rows []*model.ScheduledNotification
	err := r.db.WithContext(ctx).
		Where("sent = ?", false).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationRepo) Claim(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ScheduledNotification{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]interface{}{"sent": true, "sent_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
