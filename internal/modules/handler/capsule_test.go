package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
)

type MockCapsuleService struct {
	mock.Mock
}

func (m *MockCapsuleService) Create(ctx context.Context, in service.CreateCapsuleInput) (*service.CapsuleView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CapsuleView), args.Error(1)
}

func (m *MockCapsuleService) Update(ctx context.Context, id uuid.UUID, in service.UpdateCapsuleInput) (*service.CapsuleView, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CapsuleView), args.Error(1)
}

func (m *MockCapsuleService) Get(ctx context.Context, id uuid.UUID) (*service.CapsuleView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CapsuleView), args.Error(1)
}

func (m *MockCapsuleService) List(ctx context.Context, in service.ListCapsulesInput) ([]*service.CapsuleView, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.CapsuleView), args.Error(1)
}

func testUser() *model.User {
	return &model.User{ID: uuid.New(), Email: "holder@example.com"}
}

func TestCapsuleHandler_CreateCapsule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	user := testUser()
	profileID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(*MockCapsuleService)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"title":"Summer 2030","release_date":"2030-06-01","timezone":"America/New_York","privacy_level":"private","profile_id":"` + profileID.String() + `"}`,
			setup: func(svc *MockCapsuleService) {
				view := &service.CapsuleView{
					Capsule:          &model.Capsule{ID: uuid.New(), Title: "Summer 2030"},
					ReleaseDateLocal: "2030-06-01T00:00:00-04:00",
				}
				svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateCapsuleInput) bool {
					return in.Title == "Summer 2030" &&
						in.UserID == user.ID &&
						in.ProfileID == profileID &&
						in.ReleaseDate.Year() == 2030
				})).Return(view, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid release_date",
			body:           `{"title":"Summer","release_date":"06/01/2030","timezone":"UTC"}`,
			setup:          func(svc *MockCapsuleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing fields reported by service",
			body: `{"description":"no title"}`,
			setup: func(svc *MockCapsuleService) {
				svc.On("Create", mock.Anything, mock.Anything).
					Return(nil, &service.ValidationError{Missing: []string{"title", "release_date"}})
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCapsuleService{}
			tt.setup(svc)
			handler := NewCapsuleHandler(svc)

			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)
			r.POST("/capsules", func(c *gin.Context) {
				c.Set("user", user)
				handler.CreateCapsule(c)
			})

			req := httptest.NewRequest(http.MethodPost, "/capsules", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCapsuleHandler_UpdateCapsule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	user := testUser()
	capsuleID := uuid.New()

	tests := []struct {
		name           string
		capsuleIDParam string
		body           string
		setup          func(*MockCapsuleService)
		expectedStatus int
	}{
		{
			name:           "patches fields and replaces media set",
			capsuleIDParam: capsuleID.String(),
			body:           `{"title":"Renamed","media_urls":["https://cdn.example.com/a.jpg","https://cdn.example.com/b.mp4"]}`,
			setup: func(svc *MockCapsuleService) {
				view := &service.CapsuleView{Capsule: &model.Capsule{ID: capsuleID, Title: "Renamed"}}
				svc.On("Update", mock.Anything, capsuleID, mock.MatchedBy(func(in service.UpdateCapsuleInput) bool {
					return in.Title != nil && *in.Title == "Renamed" &&
						in.Description == nil &&
						len(in.MediaURLs) == 2
				})).Return(view, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid capsule id",
			capsuleIDParam: "not-a-uuid",
			body:           `{"title":"x"}`,
			setup:          func(svc *MockCapsuleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "capsule not found",
			capsuleIDParam: capsuleID.String(),
			body:           `{"title":"x"}`,
			setup: func(svc *MockCapsuleService) {
				svc.On("Update", mock.Anything, capsuleID, mock.Anything).
					Return(nil, service.ErrCapsuleNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCapsuleService{}
			tt.setup(svc)
			handler := NewCapsuleHandler(svc)

			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)
			r.PUT("/capsules/:capsule_id", func(c *gin.Context) {
				c.Set("user", user)
				handler.UpdateCapsule(c)
			})

			req := httptest.NewRequest(http.MethodPut, "/capsules/"+tt.capsuleIDParam, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCapsuleHandler_ListCapsules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	user := testUser()
	profileID := uuid.New()

	t.Run("filters by profile", func(t *testing.T) {
		svc := &MockCapsuleService{}
		svc.On("List", mock.Anything, mock.MatchedBy(func(in service.ListCapsulesInput) bool {
			return in.UserID == user.ID && in.ProfileID != nil && *in.ProfileID == profileID
		})).Return([]*service.CapsuleView{
			{Capsule: &model.Capsule{ID: uuid.New(), Title: "one"}},
		}, nil)
		handler := NewCapsuleHandler(svc)

		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.GET("/capsules", func(c *gin.Context) {
			c.Set("user", user)
			handler.ListCapsules(c)
		})

		req := httptest.NewRequest(http.MethodGet, "/capsules?profile_id="+profileID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp serializer.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Code)
		items, ok := resp.Data.([]interface{})
		assert.True(t, ok)
		assert.Len(t, items, 1)
		svc.AssertExpectations(t)
	})

	t.Run("rejects malformed profile filter", func(t *testing.T) {
		svc := &MockCapsuleService{}
		handler := NewCapsuleHandler(svc)

		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.GET("/capsules", func(c *gin.Context) {
			c.Set("user", user)
			handler.ListCapsules(c)
		})

		req := httptest.NewRequest(http.MethodGet, "/capsules?profile_id=nope", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestCapsuleHandler_GetCapsule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	capsuleID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		svc := &MockCapsuleService{}
		svc.On("Get", mock.Anything, capsuleID).Return(nil, service.ErrCapsuleNotFound)
		handler := NewCapsuleHandler(svc)

		w := httptest.NewRecorder()
		_, r := gin.CreateTestContext(w)
		r.GET("/capsules/:capsule_id", handler.GetCapsule)

		req := httptest.NewRequest(http.MethodGet, "/capsules/"+capsuleID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})
}
