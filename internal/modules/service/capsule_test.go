package service

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockCapsuleRepo struct {
	mock.Mock
}

func (m *MockCapsuleRepo) Create(ctx context.Context, c *model.Capsule) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCapsuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Capsule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Capsule), args.Error(1)
}

func (m *MockCapsuleRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockCapsuleRepo) List(ctx context.Context, userID uuid.UUID, profileID *uuid.UUID) ([]*model.Capsule, error) {
	args := m.Called(ctx, userID, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Capsule), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadAndRegister(ctx context.Context, in UploadMediaInput) (*model.MediaAsset, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaAsset), args.Error(1)
}

func (m *MockMediaService) Register(ctx context.Context, in RegisterMediaInput) (*model.MediaAsset, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaAsset), args.Error(1)
}

func (m *MockMediaService) Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReconcileResult), args.Error(1)
}

func (m *MockMediaService) Linked(ctx context.Context, kind repo.LinkKind, entityID uuid.UUID) ([]*model.MediaAsset, error) {
	args := m.Called(ctx, kind, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MediaAsset), args.Error(1)
}

func (m *MockMediaService) List(ctx context.Context, in ListMediaInput) (*ListMediaOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ListMediaOutput), args.Error(1)
}

// multipartFiles builds headers for the upload fan-out; the mocked
// media service never opens them.
func multipartFiles(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	files := make([]*multipart.FileHeader, 0, len(names))
	for _, n := range names {
		files = append(files, &multipart.FileHeader{Filename: n})
	}
	return files
}

func validCreateInput() CreateCapsuleInput {
	return CreateCapsuleInput{
		UserID:       uuid.New(),
		ProfileID:    uuid.New(),
		Title:        "Time Capsule 2030",
		Description:  "Open on graduation day.",
		ReleaseDate:  time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		Timezone:     "America/New_York",
		PrivacyLevel: "private",
	}
}

func TestCapsuleService_Create_ValidationAccumulatesAllMissingFields(t *testing.T) {
	svc := NewCapsuleService(&MockCapsuleRepo{}, &MockMediaService{}, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCapsuleInput{})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	// Every missing field reported at once, not just the first.
	assert.ElementsMatch(t,
		[]string{"title", "release_date", "timezone", "user_id", "privacy_level", "profile_id"},
		verr.Missing)
}

func TestCapsuleService_Create_Success(t *testing.T) {
	in := validCreateInput()

	mockRepo := &MockCapsuleRepo{}
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Capsule) bool {
		return c.Title == in.Title && c.PrivacyLevel == "private"
	})).Return(nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("Reconcile", mock.Anything, mock.MatchedBy(func(r ReconcileInput) bool {
		return r.Kind == repo.LinkCapsule && len(r.TargetURLs) == 0
	})).Return(&ReconcileResult{}, nil)

	svc := NewCapsuleService(mockRepo, mockMedia, zap.NewNop())

	view, err := svc.Create(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, in.Title, view.Title)
	assert.False(t, view.PartialUpload)
	mockRepo.AssertExpectations(t)
	mockMedia.AssertExpectations(t)
}

func TestCapsuleService_Create_PartialUploadStillLands(t *testing.T) {
	in := validCreateInput()
	in.Files = multipartFiles(t, "ok.jpg", "broken.jpg")

	okAsset := &model.MediaAsset{ID: uuid.New(), URL: "https://cdn.example.com/ok.jpg"}

	mockRepo := &MockCapsuleRepo{}
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("UploadAndRegister", mock.Anything, mock.MatchedBy(func(u UploadMediaInput) bool {
		return u.File.Filename == "ok.jpg"
	})).Return(okAsset, nil)
	mockMedia.On("UploadAndRegister", mock.Anything, mock.MatchedBy(func(u UploadMediaInput) bool {
		return u.File.Filename == "broken.jpg"
	})).Return(nil, assert.AnError)
	mockMedia.On("Reconcile", mock.Anything, mock.MatchedBy(func(r ReconcileInput) bool {
		return len(r.TargetURLs) == 1 && r.TargetURLs[0] == okAsset.URL
	})).Return(&ReconcileResult{Linked: []*model.MediaAsset{okAsset}, Added: 1}, nil)

	svc := NewCapsuleService(mockRepo, mockMedia, zap.NewNop())

	view, err := svc.Create(context.Background(), in)

	assert.NoError(t, err)
	assert.True(t, view.PartialUpload)
	assert.Len(t, view.LinkedMedia, 1)
}

func TestCapsuleService_Update_NotFound(t *testing.T) {
	mockRepo := &MockCapsuleRepo{}
	mockRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewCapsuleService(mockRepo, &MockMediaService{}, zap.NewNop())

	_, err := svc.Update(context.Background(), uuid.New(), UpdateCapsuleInput{})

	assert.ErrorIs(t, err, ErrCapsuleNotFound)
}

func TestCapsuleService_Update_PatchesAndReconciles(t *testing.T) {
	id := uuid.New()
	capsule := &model.Capsule{
		ID:           id,
		UserID:       uuid.New(),
		ProfileID:    uuid.New(),
		Title:        "Old Title",
		ReleaseDate:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		Timezone:     "UTC",
		PrivacyLevel: "private",
	}
	newTitle := "New Title"
	keepURL := "https://cdn.example.com/keep.jpg"

	mockRepo := &MockCapsuleRepo{}
	mockRepo.On("GetByID", mock.Anything, id).Return(capsule, nil)
	mockRepo.On("UpdateFields", mock.Anything, id, map[string]interface{}{"title": newTitle}).
		Return(nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("Reconcile", mock.Anything, mock.MatchedBy(func(r ReconcileInput) bool {
		return r.Kind == repo.LinkCapsule && r.EntityID == id &&
			len(r.TargetURLs) == 1 && r.TargetURLs[0] == keepURL
	})).Return(&ReconcileResult{
		Linked:  []*model.MediaAsset{{URL: keepURL}},
		Removed: 1,
	}, nil)

	svc := NewCapsuleService(mockRepo, mockMedia, zap.NewNop())

	view, err := svc.Update(context.Background(), id, UpdateCapsuleInput{
		Title:     &newTitle,
		MediaURLs: []string{keepURL},
	})

	assert.NoError(t, err)
	assert.Len(t, view.LinkedMedia, 1)
	mockRepo.AssertExpectations(t)
	mockMedia.AssertExpectations(t)
}

func TestCapsuleService_Get_RendersLocalReleaseDate(t *testing.T) {
	id := uuid.New()
	capsule := &model.Capsule{
		ID:          id,
		Title:       "Midnight Capsule",
		ReleaseDate: time.Date(2030, 6, 1, 4, 0, 0, 0, time.UTC),
		Timezone:    "America/New_York",
	}

	mockRepo := &MockCapsuleRepo{}
	mockRepo.On("GetByID", mock.Anything, id).Return(capsule, nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("Linked", mock.Anything, repo.LinkCapsule, id).
		Return([]*model.MediaAsset{}, nil)

	svc := NewCapsuleService(mockRepo, mockMedia, zap.NewNop())

	view, err := svc.Get(context.Background(), id)

	assert.NoError(t, err)
	// 04:00 UTC is midnight eastern daylight time.
	assert.Equal(t, "2030-06-01T00:00:00-04:00", view.ReleaseDateLocal)
}
