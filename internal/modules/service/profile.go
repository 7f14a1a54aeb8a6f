package service

import (
	"context"
	"errors"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileService interface {
	Create(ctx context.Context, in CreateProfileInput) (*model.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Profile, error)
}

type CreateProfileInput struct {
	UserID       uuid.UUID `json:"user_id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Traits       string    `json:"traits"`
	Sayings      string    `json:"sayings"`
	Memories     []string  `json:"memories"`
	AvatarURL    string    `json:"avatar_url"`
}

func (in *CreateProfileInput) validate() error {
	var missing []string
	if in.UserID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Relationship == "" {
		missing = append(missing, "relationship")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

type profileService struct {
	r repo.ProfileRepo
}

func NewProfileService(r repo.ProfileRepo) ProfileService {
	return &profileService{r: r}
}

func (s *profileService) Create(ctx context.Context, in CreateProfileInput) (*model.Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Memories == nil {
		in.Memories = []string{}
	}
	p := &model.Profile{
		UserID:       in.UserID,
		Name:         in.Name,
		Relationship: in.Relationship,
		Traits:       in.Traits,
		Sayings:      in.Sayings,
		Memories:     datatypes.NewJSONSlice(in.Memories),
		AvatarURL:    in.AvatarURL,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *profileService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Profile, error) {
	return s.r.ListByUser(ctx, userID)
}
