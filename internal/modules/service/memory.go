package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MemoryService interface {
	Create(ctx context.Context, in CreateMemoryInput) (*MemoryView, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateMemoryInput) (*MemoryView, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*MemoryView, error)
}

type memoryService struct {
	r     repo.MemoryRepo
	media MediaService
	log   *zap.Logger
}

func NewMemoryService(r repo.MemoryRepo, media MediaService, log *zap.Logger) MemoryService {
	return &memoryService{r: r, media: media, log: log}
}

type MemoryView struct {
	*model.Memory
	LinkedMedia []*model.MediaAsset `json:"media"`
}

type CreateMemoryInput struct {
	UserID      uuid.UUID
	ProfileID   uuid.UUID
	Title       string
	Description string
	Tags        string
	ActualDate  *time.Time
	Address     string
	Location    string
	Files       []*multipart.FileHeader
}

// Create inserts the memory and uploads its files. If not a single file
// survives the upload fan-out the memory row is rolled back and the
// caller gets ErrNoMediaUploaded: a memory exists to hold media.
func (s *memoryService) Create(ctx context.Context, in CreateMemoryInput) (*MemoryView, error) {
	var missing []string
	if in.ProfileID == uuid.Nil {
		missing = append(missing, "profile_id")
	}
	if in.UserID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if len(in.Files) == 0 {
		missing = append(missing, "files")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	memory := &model.Memory{
		UserID:      in.UserID,
		ProfileID:   in.ProfileID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		ActualDate:  in.ActualDate,
		Address:     in.Address,
		Location:    in.Location,
	}
	if err := s.r.Create(ctx, memory); err != nil {
		return nil, err
	}

	urls, _ := uploadAll(ctx, s.media, s.log, in.UserID, in.ProfileID, in.Files)
	if len(urls) == 0 {
		if delErr := s.r.Delete(ctx, memory.ID); delErr != nil {
			s.log.Error("failed to roll back memory after upload failure",
				zap.String("memory_id", memory.ID.String()), zap.Error(delErr))
		}
		return nil, ErrNoMediaUploaded
	}

	rec, err := s.media.Reconcile(ctx, ReconcileInput{
		Kind:       repo.LinkMemory,
		EntityID:   memory.ID,
		TargetURLs: urls,
		UserID:     in.UserID,
		ProfileID:  &in.ProfileID,
	})
	if err != nil {
		return nil, err
	}

	return &MemoryView{Memory: memory, LinkedMedia: rec.Linked}, nil
}

type UpdateMemoryInput struct {
	Title       *string
	Description *string
	Tags        *string
	ActualDate  *time.Time
	Address     *string
	Location    *string
	MediaURLs   []string
}

func (s *memoryService) Update(ctx context.Context, id uuid.UUID, in UpdateMemoryInput) (*MemoryView, error) {
	memory, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}

	patch := map[string]interface{}{}
	if in.Title != nil {
		patch["title"] = *in.Title
	}
	if in.Description != nil {
		patch["description"] = *in.Description
	}
	if in.Tags != nil {
		patch["tags"] = *in.Tags
	}
	if in.ActualDate != nil {
		patch["actual_date"] = *in.ActualDate
	}
	if in.Address != nil {
		patch["address"] = *in.Address
	}
	if in.Location != nil {
		patch["location"] = *in.Location
	}
	if err := s.r.UpdateFields(ctx, id, patch); err != nil {
		return nil, err
	}

	rec, err := s.media.Reconcile(ctx, ReconcileInput{
		Kind:       repo.LinkMemory,
		EntityID:   id,
		TargetURLs: in.MediaURLs,
		UserID:     memory.UserID,
		ProfileID:  &memory.ProfileID,
	})
	if err != nil {
		return nil, err
	}

	memory, err = s.r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MemoryView{Memory: memory, LinkedMedia: rec.Linked}, nil
}

func (s *memoryService) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*MemoryView, error) {
	memories, err := s.r.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]*MemoryView, 0, len(memories))
	for _, m := range memories {
		media, err := s.media.Linked(ctx, repo.LinkMemory, m.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, &MemoryView{Memory: m, LinkedMedia: media})
	}
	return views, nil
}
