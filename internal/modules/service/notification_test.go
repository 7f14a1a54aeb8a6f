package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/repo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *model.ScheduledNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduledNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScheduledNotification), args.Error(1)
}

func (m *MockNotificationRepo) ListUnsent(ctx context.Context) ([]*model.ScheduledNotification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ScheduledNotification), args.Error(1)
}

func (m *MockNotificationRepo) Claim(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, toName, toEmail, subject, html string) error {
	args := m.Called(ctx, toName, toEmail, subject, html)
	return args.Error(0)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Send(ctx context.Context, toPhone, body, mediaURL string) error {
	args := m.Called(ctx, toPhone, body, mediaURL)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

func newSweepService(t *testing.T, r repo.NotificationRepo, capsules repo.CapsuleRepo, email EmailSender, sms SMSSender, events EventPublisher) NotificationService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewNotificationService(r, capsules, &MockMediaRepo{}, email, sms, events, rdb, zap.NewNop(), "https://eternalmoments.app")
}

func dueCapsule(id uuid.UUID, today time.Time) *model.Capsule {
	return &model.Capsule{
		ID:          id,
		Title:       "Graduation Day",
		ReleaseDate: today,
		Timezone:    "UTC",
	}
}

func pendingRow(capsuleID uuid.UUID, nt model.NotificationType, contacts []model.ContactSnapshot) *model.ScheduledNotification {
	return &model.ScheduledNotification{
		ID:               uuid.New(),
		CapsuleID:        capsuleID,
		Contacts:         datatypes.NewJSONType(contacts),
		NotificationType: nt,
		Payload: datatypes.NewJSONType(model.CapsulePayload{
			CapsuleID:      capsuleID,
			Title:          "Graduation Day",
			Description:    "A day to remember.",
			ImageURL:       "https://cdn.example.com/grad.jpg",
			DetailsPageURL: "https://eternalmoments.app/capsules/" + capsuleID.String(),
		}),
	}
}

func TestNotificationService_Schedule_SnapshotsCapsule(t *testing.T) {
	capsuleID := uuid.New()
	capsule := &model.Capsule{
		ID:          capsuleID,
		Title:       "Wedding Anniversary",
		Description: "Fifty years together.",
		ReleaseDate: time.Now(),
		Timezone:    "UTC",
	}

	photo := &model.MediaAsset{ID: uuid.New(), URL: "https://cdn.example.com/1.jpg", MediaType: model.MediaTypePhoto}
	photo2 := &model.MediaAsset{ID: uuid.New(), URL: "https://cdn.example.com/2.jpg", MediaType: model.MediaTypePhoto}
	video := &model.MediaAsset{ID: uuid.New(), URL: "https://cdn.example.com/clip.mp4", MediaType: model.MediaTypeVideo}

	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, capsuleID).Return(capsule, nil)

	mockMedia := &MockMediaRepo{}
	mockMedia.On("ListLinked", mock.Anything, repo.LinkCapsule, capsuleID).
		Return([]*model.MediaAsset{photo, photo2, video}, nil)

	mockRepo := &MockNotificationRepo{}
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.ScheduledNotification) bool {
		p := n.Payload.Data()
		// First photo and first video win; later ones are ignored.
		return p.ImageURL == photo.URL &&
			p.VideoURL == video.URL &&
			p.Title == "Wedding Anniversary" &&
			strings.HasSuffix(p.DetailsPageURL, "/capsules/"+capsuleID.String()) &&
			!n.Sent
	})).Return(nil)

	svc := NewNotificationService(mockRepo, mockCapsules, mockMedia, nil, nil, nil, nil, zap.NewNop(), "https://eternalmoments.app/")

	row, err := svc.Schedule(context.Background(), ScheduleInput{
		CapsuleID:        capsuleID,
		Contacts:         []model.ContactSnapshot{{Name: "Ann", Email: "ann@example.com"}},
		NotificationType: model.NotificationEmail,
	})

	assert.NoError(t, err)
	assert.Len(t, row.Contacts.Data(), 1)
	mockRepo.AssertExpectations(t)
}

func TestNotificationService_Schedule_CapsuleNotFound(t *testing.T) {
	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewNotificationService(&MockNotificationRepo{}, mockCapsules, &MockMediaRepo{}, nil, nil, nil, nil, zap.NewNop(), "")

	_, err := svc.Schedule(context.Background(), ScheduleInput{
		CapsuleID:        uuid.New(),
		Contacts:         []model.ContactSnapshot{{Name: "Ann", Email: "ann@example.com"}},
		NotificationType: model.NotificationBoth,
	})

	assert.ErrorIs(t, err, ErrCapsuleNotFound)
}

func TestNotificationService_Schedule_RequiresContacts(t *testing.T) {
	svc := NewNotificationService(&MockNotificationRepo{}, &MockCapsuleRepo{}, &MockMediaRepo{}, nil, nil, nil, nil, zap.NewNop(), "")

	_, err := svc.Schedule(context.Background(), ScheduleInput{
		CapsuleID:        uuid.New(),
		NotificationType: model.NotificationEmail,
	})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Missing, "contacts")
}

func TestNotificationService_RunSweep_SendsDueRow(t *testing.T) {
	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	capsuleID := uuid.New()
	row := pendingRow(capsuleID, model.NotificationBoth, []model.ContactSnapshot{
		{Name: "Ben", Email: "ben@example.com", Phone: "+14155550123"},
	})

	mockRepo := &MockNotificationRepo{}
	mockRepo.On("ListUnsent", mock.Anything).Return([]*model.ScheduledNotification{row}, nil)
	mockRepo.On("Claim", mock.Anything, row.ID, mock.Anything).Return(true, nil)

	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, capsuleID).Return(dueCapsule(capsuleID, today), nil)

	email := &MockEmailSender{}
	email.On("Send", mock.Anything, "Ben", "ben@example.com",
		mock.MatchedBy(func(s string) bool { return strings.Contains(s, "Graduation Day") }),
		mock.MatchedBy(func(html string) bool {
			return strings.Contains(html, "https://cdn.example.com/grad.jpg") &&
				strings.Contains(html, "View Capsule")
		})).Return(nil)

	sms := &MockSMSSender{}
	sms.On("Send", mock.Anything, "+14155550123",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "Graduation Day") }),
		"https://cdn.example.com/grad.jpg").Return(nil)

	events := &MockEventPublisher{}
	events.On("PublishJSON", mock.Anything, "capsule.released", mock.Anything).Return(nil)

	svc := newSweepService(t, mockRepo, mockCapsules, email, sms, events)

	summary, err := svc.RunSweep(context.Background(), today)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, summary.Skipped)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestNotificationService_RunSweep_SkipsRowNotDueToday(t *testing.T) {
	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	capsuleID := uuid.New()
	row := pendingRow(capsuleID, model.NotificationEmail, []model.ContactSnapshot{
		{Name: "Ben", Email: "ben@example.com"},
	})

	mockRepo := &MockNotificationRepo{}
	mockRepo.On("ListUnsent", mock.Anything).Return([]*model.ScheduledNotification{row}, nil)

	// Rescheduled to next week: the current release date decides, not
	// the snapshot the row was created with.
	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, capsuleID).
		Return(dueCapsule(capsuleID, today.AddDate(0, 0, 7)), nil)

	email := &MockEmailSender{}

	svc := newSweepService(t, mockRepo, mockCapsules, email, &MockSMSSender{}, nil)

	summary, err := svc.RunSweep(context.Background(), today)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	mockRepo.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_RunSweep_LostClaimMeansNoSend(t *testing.T) {
	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	capsuleID := uuid.New()
	row := pendingRow(capsuleID, model.NotificationEmail, []model.ContactSnapshot{
		{Name: "Ben", Email: "ben@example.com"},
	})

	mockRepo := &MockNotificationRepo{}
	mockRepo.On("ListUnsent", mock.Anything).Return([]*model.ScheduledNotification{row}, nil)
	// A concurrent sweep flipped sent first.
	mockRepo.On("Claim", mock.Anything, row.ID, mock.Anything).Return(false, nil)

	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, capsuleID).Return(dueCapsule(capsuleID, today), nil)

	email := &MockEmailSender{}

	svc := newSweepService(t, mockRepo, mockCapsules, email, &MockSMSSender{}, nil)

	summary, err := svc.RunSweep(context.Background(), today)

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotificationService_RunSweep_LockHeldSkipsPass(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	assert.NoError(t, mr.Set(sweepLockKey, "other-pass"))

	mockRepo := &MockNotificationRepo{}

	svc := NewNotificationService(mockRepo, &MockCapsuleRepo{}, &MockMediaRepo{}, nil, nil, nil, rdb, zap.NewNop(), "")

	summary, err := svc.RunSweep(context.Background(), time.Now())

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	mockRepo.AssertNotCalled(t, "ListUnsent", mock.Anything)
}

func TestNotificationService_RunSweep_RecipientFailuresDoNotBlockOthers(t *testing.T) {
	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	capsuleID := uuid.New()
	row := pendingRow(capsuleID, model.NotificationBoth, []model.ContactSnapshot{
		{Name: "Ben", Email: "ben@example.com", Phone: "not-a-number"},
		{Name: "Cleo", Email: "cleo@example.com", Phone: "+14155550999"},
	})

	mockRepo := &MockNotificationRepo{}
	mockRepo.On("ListUnsent", mock.Anything).Return([]*model.ScheduledNotification{row}, nil)
	mockRepo.On("Claim", mock.Anything, row.ID, mock.Anything).Return(true, nil)

	mockCapsules := &MockCapsuleRepo{}
	mockCapsules.On("GetByID", mock.Anything, capsuleID).Return(dueCapsule(capsuleID, today), nil)

	email := &MockEmailSender{}
	email.On("Send", mock.Anything, "Ben", "ben@example.com", mock.Anything, mock.Anything).
		Return(fmt.Errorf("mailbox full"))
	email.On("Send", mock.Anything, "Cleo", "cleo@example.com", mock.Anything, mock.Anything).
		Return(nil)

	sms := &MockSMSSender{}
	// Ben's phone fails E.164 validation and is skipped outright.
	sms.On("Send", mock.Anything, "+14155550999", mock.Anything, mock.Anything).Return(nil)

	svc := newSweepService(t, mockRepo, mockCapsules, email, sms, nil)

	summary, err := svc.RunSweep(context.Background(), today)

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
	sms.AssertNumberOfCalls(t, "Send", 1)
}

func TestTruncateMessage(t *testing.T) {
	long := strings.Repeat("a", 900)
	got := truncateMessage(long, smsCharLimit)
	assert.Len(t, []rune(got), smsCharLimit)
	assert.True(t, strings.HasSuffix(got, "..."))

	short := "see you soon"
	assert.Equal(t, short, truncateMessage(short, smsCharLimit))
}

func TestPhonePattern(t *testing.T) {
	valid := []string{"+14155550123", "14155550123", "+447911123456"}
	for _, p := range valid {
		assert.True(t, phonePattern.MatchString(p), p)
	}
	invalid := []string{"", "0123456", "+0123456789", "415-555-0123", "not-a-number"}
	for _, p := range invalid {
		assert.False(t, phonePattern.MatchString(p), p)
	}
}
