package service

import (
	"context"
	"testing"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MockMemoryRepo struct {
	mock.Mock
}

func (m *MockMemoryRepo) Create(ctx context.Context, mem *model.Memory) error {
	args := m.Called(ctx, mem)
	return args.Error(0)
}

func (m *MockMemoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Memory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Memory), args.Error(1)
}

func (m *MockMemoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemoryRepo) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockMemoryRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.Memory, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Memory), args.Error(1)
}

func TestMemoryService_Create_RequiresFiles(t *testing.T) {
	svc := NewMemoryService(&MockMemoryRepo{}, &MockMediaService{}, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateMemoryInput{
		UserID:    uuid.New(),
		ProfileID: uuid.New(),
	})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "files")
}

func TestMemoryService_Create_RollsBackWhenNothingUploads(t *testing.T) {
	mockRepo := &MockMemoryRepo{}
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("Delete", mock.Anything, mock.Anything).Return(nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("UploadAndRegister", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	svc := NewMemoryService(mockRepo, mockMedia, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateMemoryInput{
		UserID:    uuid.New(),
		ProfileID: uuid.New(),
		Title:     "Beach day",
		Files:     multipartFiles(t, "a.jpg", "b.jpg"),
	})

	assert.ErrorIs(t, err, ErrNoMediaUploaded)
	// The orphaned row must not survive.
	mockRepo.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	mockMedia.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything)
}

func TestMemoryService_Create_LinksUploadedFiles(t *testing.T) {
	uploaded := &model.MediaAsset{ID: uuid.New(), URL: "https://cdn.example.com/beach.jpg"}

	mockRepo := &MockMemoryRepo{}
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mockMedia := &MockMediaService{}
	mockMedia.On("UploadAndRegister", mock.Anything, mock.Anything).Return(uploaded, nil)
	mockMedia.On("Reconcile", mock.Anything, mock.MatchedBy(func(r ReconcileInput) bool {
		return r.Kind == repo.LinkMemory &&
			len(r.TargetURLs) == 1 && r.TargetURLs[0] == uploaded.URL
	})).Return(&ReconcileResult{Linked: []*model.MediaAsset{uploaded}, Added: 1}, nil)

	svc := NewMemoryService(mockRepo, mockMedia, zap.NewNop())

	view, err := svc.Create(context.Background(), CreateMemoryInput{
		UserID:    uuid.New(),
		ProfileID: uuid.New(),
		Title:     "Beach day",
		Files:     multipartFiles(t, "beach.jpg"),
	})

	assert.NoError(t, err)
	assert.Len(t, view.LinkedMedia, 1)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestMemoryService_Update_NotFound(t *testing.T) {
	mockRepo := &MockMemoryRepo{}
	mockRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMemoryService(mockRepo, &MockMediaService{}, zap.NewNop())

	_, err := svc.Update(context.Background(), uuid.New(), UpdateMemoryInput{})

	assert.ErrorIs(t, err, ErrMemoryNotFound)
}
