package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CapsuleService interface {
	Create(ctx context.Context, in CreateCapsuleInput) (*CapsuleView, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCapsuleInput) (*CapsuleView, error)
	Get(ctx context.Context, id uuid.UUID) (*CapsuleView, error)
	List(ctx context.Context, in ListCapsulesInput) ([]*CapsuleView, error)
}

type capsuleService struct {
	r     repo.CapsuleRepo
	media MediaService
	log   *zap.Logger
}

func NewCapsuleService(r repo.CapsuleRepo, media MediaService, log *zap.Logger) CapsuleService {
	return &capsuleService{r: r, media: media, log: log}
}

// CapsuleView is a capsule enriched with its linked media and the
// release date rendered in the capsule's own timezone.
type CapsuleView struct {
	*model.Capsule
	ReleaseDateLocal string              `json:"release_date_local"`
	LinkedMedia      []*model.MediaAsset `json:"media"`
	// PartialUpload is set when some files in a create/update failed and
	// were skipped while the operation went through.
	PartialUpload bool `json:"partial_upload,omitempty"`
}

type CreateCapsuleInput struct {
	UserID       uuid.UUID
	ProfileID    uuid.UUID
	Title        string
	Description  string
	ReleaseDate  time.Time
	Timezone     string
	PrivacyLevel string
	Address      string
	Location     string
	Files        []*multipart.FileHeader
}

func (in CreateCapsuleInput) validate() error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.ReleaseDate.IsZero() {
		missing = append(missing, "release_date")
	}
	if in.Timezone == "" {
		missing = append(missing, "timezone")
	}
	if in.UserID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if in.PrivacyLevel == "" {
		missing = append(missing, "privacy_level")
	}
	if in.ProfileID == uuid.Nil {
		missing = append(missing, "profile_id")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Create persists the capsule, uploads the provided files concurrently,
// then links whatever uploaded successfully. A single failed file is
// skipped and logged; the capsule itself still lands.
func (s *capsuleService) Create(ctx context.Context, in CreateCapsuleInput) (*CapsuleView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	capsule := &model.Capsule{
		UserID:       in.UserID,
		ProfileID:    in.ProfileID,
		Title:        in.Title,
		Description:  in.Description,
		ReleaseDate:  in.ReleaseDate,
		Timezone:     in.Timezone,
		PrivacyLevel: in.PrivacyLevel,
		Address:      in.Address,
		Location:     in.Location,
	}
	if err := s.r.Create(ctx, capsule); err != nil {
		return nil, err
	}

	urls, partial := uploadAll(ctx, s.media, s.log, in.UserID, in.ProfileID, in.Files)

	rec, err := s.media.Reconcile(ctx, ReconcileInput{
		Kind:       repo.LinkCapsule,
		EntityID:   capsule.ID,
		TargetURLs: urls,
		UserID:     in.UserID,
		ProfileID:  &in.ProfileID,
	})
	if err != nil {
		return nil, err
	}

	return &CapsuleView{
		Capsule:          capsule,
		ReleaseDateLocal: capsule.ReleaseDateLocal().Format(time.RFC3339),
		LinkedMedia:      rec.Linked,
		PartialUpload:    partial || rec.Partial,
	}, nil
}

// uploadAll fans the uploads out and joins before returning: links are
// only computed once every upload has settled. Used by both the capsule
// and memory managers.
func uploadAll(ctx context.Context, media MediaService, log *zap.Logger, userID, profileID uuid.UUID, files []*multipart.FileHeader) ([]string, bool) {
	if len(files) == 0 {
		return nil, false
	}

	var (
		mu      sync.Mutex
		urls    []string
		partial bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, fh := range files {
		fh := fh
		g.Go(func() error {
			asset, err := media.UploadAndRegister(gctx, UploadMediaInput{
				UserID:    userID,
				ProfileID: &profileID,
				File:      fh,
				KeyPrefix: "uploads",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("file upload failed, skipping",
					zap.String("filename", fh.Filename), zap.Error(err))
				partial = true
				return nil // partial success is acceptable
			}
			urls = append(urls, asset.URL)
			return nil
		})
	}
	_ = g.Wait()

	return urls, partial
}

type UpdateCapsuleInput struct {
	Title        *string
	Description  *string
	ReleaseDate  *time.Time
	Timezone     *string
	PrivacyLevel *string
	Address      *string
	Location     *string
	// MediaURLs is the full desired media set; the linked set is
	// reconciled to match it exactly.
	MediaURLs []string
}

func (s *capsuleService) Update(ctx context.Context, id uuid.UUID, in UpdateCapsuleInput) (*CapsuleView, error) {
	capsule, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCapsuleNotFound
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
	if in.ReleaseDate != nil {
		patch["release_date"] = *in.ReleaseDate
	}
	if in.Timezone != nil {
		patch["timezone"] = *in.Timezone
	}
	if in.PrivacyLevel != nil {
		patch["privacy_level"] = *in.PrivacyLevel
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
		Kind:       repo.LinkCapsule,
		EntityID:   id,
		TargetURLs: in.MediaURLs,
		UserID:     capsule.UserID,
		ProfileID:  &capsule.ProfileID,
	})
	if err != nil {
		return nil, err
	}

	capsule, err = s.r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CapsuleView{
		Capsule:          capsule,
		ReleaseDateLocal: capsule.ReleaseDateLocal().Format(time.RFC3339),
		LinkedMedia:      rec.Linked,
		PartialUpload:    rec.Partial,
	}, nil
}

func (s *capsuleService) Get(ctx context.Context, id uuid.UUID) (*CapsuleView, error) {
	capsule, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCapsuleNotFound
		}
		return nil, err
	}
	return s.enrich(ctx, capsule)
}

type ListCapsulesInput struct {
	UserID    uuid.UUID
	ProfileID *uuid.UUID
}

func (s *capsuleService) List(ctx context.Context, in ListCapsulesInput) ([]*CapsuleView, error) {
	capsules, err := s.r.List(ctx, in.UserID, in.ProfileID)
	if err != nil {
		return nil, err
	}

	views := make([]*CapsuleView, 0, len(capsules))
	for _, c := range capsules {
		v, err := s.enrich(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *capsuleService) enrich(ctx context.Context, c *model.Capsule) (*CapsuleView, error) {
	media, err := s.media.Linked(ctx, repo.LinkCapsule, c.ID)
	if err != nil {
		return nil, err
	}
	return &CapsuleView{
		Capsule:          c,
		ReleaseDateLocal: c.ReleaseDateLocal().Format(time.RFC3339),
		LinkedMedia:      media,
	}, nil
}
