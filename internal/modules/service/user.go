package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Resolve maps a verified auth subject to the local user row,
	// creating it on first sight.
	Resolve(ctx context.Context, authSubject, email string) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (string, error)
}

type userService struct {
	r    repo.UserRepo
	blob BlobStore
	log  *zap.Logger
}

func NewUserService(r repo.UserRepo, blob BlobStore, log *zap.Logger) UserService {
	return &userService{r: r, blob: blob, log: log}
}

func (s *userService) Resolve(ctx context.Context, authSubject, email string) (*model.User, error) {
	if authSubject == "" {
		return nil, &ValidationError{Missing: []string{"auth_subject"}}
	}
	return s.r.GetOrCreate(ctx, authSubject, email)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.r.GetByID(ctx, id)
}

// UploadAvatar stores the image under avatars/ and points the user row
// at the new public URL. The previous avatar object is left in place.
func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (string, error) {
	var missing []string
	if userID == uuid.Nil {
		missing = append(missing, "user_id")
	}
	if file == nil {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Missing: missing}
	}

	key := fmt.Sprintf("avatars/%s-%d.jpg", userID, time.Now().UnixMilli())
	meta, err := s.blob.UploadFormFile(ctx, key, file)
	if err != nil {
		return "", err
	}

	if err := s.r.UpdateAvatar(ctx, userID, meta.URL); err != nil {
		return "", err
	}

	s.log.Info("avatar updated",
		zap.String("user_id", userID.String()), zap.String("url", meta.URL))
	return meta.URL, nil
}
