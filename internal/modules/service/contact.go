package service

import (
	"context"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
)

type ContactService interface {
	Create(ctx context.Context, in CreateContactInput) (*model.Contact, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Contact, error)
}

type CreateContactInput struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
}

type contactService struct {
	r repo.ContactRepo
}

func NewContactService(r repo.ContactRepo) ContactService {
	return &contactService{r: r}
}

func (s *contactService) Create(ctx context.Context, in CreateContactInput) (*model.Contact, error) {
	var missing []string
	if in.UserID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	// A contact is unreachable without at least one channel.
	if in.Email == "" && in.Phone == "" {
		missing = append(missing, "email or phone")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	c := &model.Contact{
		UserID: in.UserID,
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
	}
	if err := s.r.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contactService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Contact, error) {
	return s.r.ListByUser(ctx, userID)
}
