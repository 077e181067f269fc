package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravets/flightdesk/internal/domain"
	"github.com/mkravets/flightdesk/internal/session"
)

// MockAuthUseCase is a mock implementation of auth.AuthUseCase
type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) CreateCustomer(ctx context.Context, username, password string, initBalance int) (*domain.User, error) {
	args := m.Called(ctx, username, password, initBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, username string) (*session.Session, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*session.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionStore) SaveItineraries(ctx context.Context, sess *session.Session, itineraries []domain.Itinerary) error {
	args := m.Called(ctx, sess, itineraries)
	return args.Error(0)
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestUserHandler_create(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewUserHandler(mockService, &MockSessionStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/users", createUserRequest{Username: "alice", Password: "secret", Balance: 500})

	mockService.On("CreateCustomer", c.Request.Context(), "alice", "secret", 500).
		Return(&domain.User{Username: "alice", Balance: 500}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestUserHandler_create_duplicate(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewUserHandler(mockService, &MockSessionStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/users", createUserRequest{Username: "alice", Password: "secret", Balance: 500})

	mockService.On("CreateCustomer", c.Request.Context(), "alice", "secret", 500).
		Return(nil, domain.ErrUserExists)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_login(t *testing.T) {
	mockService := &MockAuthUseCase{}
	mockSessions := &MockSessionStore{}
	handler := NewUserHandler(mockService, mockSessions)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/login", loginRequest{Username: "alice", Password: "secret"})

	mockService.On("Login", c.Request.Context(), "alice", "secret").
		Return(&domain.User{Username: "alice", Balance: 500}, nil)
	mockSessions.On("Create", c.Request.Context(), "alice").
		Return(&session.Session{Token: "tok123", Username: "alice"}, nil)

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp loginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok123", resp.Token)
	assert.Equal(t, "alice", resp.Username)
}

func TestUserHandler_login_alreadyLoggedIn(t *testing.T) {
	mockService := &MockAuthUseCase{}
	mockSessions := &MockSessionStore{}
	handler := NewUserHandler(mockService, mockSessions)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/login", loginRequest{Username: "alice", Password: "secret"})
	c.Request.Header.Set(sessionHeader, "live-token")

	mockSessions.On("Get", c.Request.Context(), "live-token").
		Return(&session.Session{Token: "live-token", Username: "alice"}, nil)

	handler.login(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserHandler_login_staleTokenIsIgnored(t *testing.T) {
	mockService := &MockAuthUseCase{}
	mockSessions := &MockSessionStore{}
	handler := NewUserHandler(mockService, mockSessions)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/login", loginRequest{Username: "alice", Password: "secret"})
	c.Request.Header.Set(sessionHeader, "expired-token")

	mockSessions.On("Get", c.Request.Context(), "expired-token").Return(nil, domain.ErrNotLoggedIn)
	mockService.On("Login", c.Request.Context(), "alice", "secret").
		Return(&domain.User{Username: "alice"}, nil)
	mockSessions.On("Create", c.Request.Context(), "alice").
		Return(&session.Session{Token: "tok456", Username: "alice"}, nil)

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_login_badCredentials(t *testing.T) {
	mockService := &MockAuthUseCase{}
	handler := NewUserHandler(mockService, &MockSessionStore{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("POST", "/login", loginRequest{Username: "alice", Password: "wrong"})

	mockService.On("Login", c.Request.Context(), "alice", "wrong").Return(nil, domain.ErrLoginFailed)

	handler.login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
