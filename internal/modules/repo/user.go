package repo

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetOrCreate(ctx context.Context, authSubject, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetOrCreate(ctx context.Context, authSubject, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("auth_subject = ?", authSubject).
		First(&u).Error

	if err == nil {
		return &u, nil
	}

	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	u = model.User{
		AuthSubject: authSubject,
		Email:       email,
	}
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		// Handle race condition: another request might have created the
		// user. Try to get it again.
		var existing model.User
		if getErr := r.db.WithContext(ctx).
			Where("auth_subject = ?", authSubject).
			First(&existing).Error; getErr == nil {
			return &existing, nil
		}
		return nil, err
	}

	return &u, nil
}

func (r *userRepo) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL).Error
}
