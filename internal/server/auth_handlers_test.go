package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gratitude/internal/config"
	"gratitude/internal/middleware"
	"gratitude/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) IsAdmin(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, email string, admin bool) error {
	args := m.Called(ctx, email, admin)
	return args.Error(0)
}

func (m *MockUserRepository) Profile(ctx context.Context, id uint) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockUserRepository) TopUsers(ctx context.Context, since time.Time, limit int) ([]models.TopUser, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]models.TopUser), args.Error(1)
}

const testSecret = "test-secret-key-12345678901234567890123456789012"

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "Success",
			body: map[string]string{
				"name":     "Test User",
				"email":    "Test@Example.com",
				"password": "Password123!",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Email == "test@example.com" && u.Password != nil &&
						bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte("Password123!")) == nil
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*models.User).ID = 5
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate User",
			body: map[string]string{
				"name":     "Test User",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Short Name",
			body: map[string]string{
				"name":     "T",
				"email":    "short@example.com",
				"password": "Password123!",
			},
			mockSetup:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "name",
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"name":     "Test User",
				"email":    "weak@example.com",
				"password": "password",
			},
			mockSetup:      func(m *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)
			s := &Server{
				config:   &config.Config{JWTSecret: testSecret},
				userRepo: mockRepo,
			}
			app := fiber.New()
			app.Post("/signup", s.Signup)

			resp := postJSON(t, app, "/signup", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedField != "" {
				assert.Equal(t, tt.expectedField, body["field"])
			}
			if tt.expectedStatus == http.StatusCreated {
				token, _ := body["token"].(string)
				claims, err := middleware.ParseToken(testSecret, token)
				require.NoError(t, err)
				assert.Equal(t, uint(5), claims.UserID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)

	tests := []struct {
		name           string
		email          string
		password       string
		user           *models.User
		expectedStatus int
	}{
		{
			name:           "Success",
			email:          "user@example.com",
			password:       "Password123!",
			user:           &models.User{ID: 9, Email: "user@example.com", Password: &hash},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			email:          "user@example.com",
			password:       "Password123?",
			user:           &models.User{ID: 9, Email: "user@example.com", Password: &hash},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown User",
			email:          "nobody@example.com",
			password:       "Password123!",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Account Without Password",
			email:          "oauth@example.com",
			password:       "Password123!",
			user:           &models.User{ID: 10, Email: "oauth@example.com"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			if tt.user != nil {
				mockRepo.On("GetByEmail", mock.Anything, tt.email).Return(tt.user, nil)
			} else {
				mockRepo.On("GetByEmail", mock.Anything, tt.email).Return(nil, nil)
			}
			s := &Server{
				config:   &config.Config{JWTSecret: testSecret},
				userRepo: mockRepo,
			}
			app := fiber.New()
			app.Post("/login", s.Login)

			resp := postJSON(t, app, "/login", map[string]string{"email": tt.email, "password": tt.password})
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				user, _ := body["user"].(map[string]interface{})
				_, leaked := user["password"]
				assert.False(t, leaked)
			} else {
				assert.Equal(t, "Invalid credentials", body["error"])
			}
		})
	}
}
