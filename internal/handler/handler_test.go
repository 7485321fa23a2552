package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tracktroop/backend/internal/auth"
	"github.com/tracktroop/backend/internal/config"
	"github.com/tracktroop/backend/internal/domain"
)

// MockStore is a mock implementation of the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStore) GetUserByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockStore) GetUserByID(id string) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockStore) EmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) UpdateUserPassword(id string, passwordHash string) error {
	args := m.Called(id, passwordHash)
	return args.Error(0)
}

func (m *MockStore) UpdateFitnessStatus(id string, status domain.FitnessStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStore) GetAllFitnessStatuses() ([]domain.UserFitnessStatus, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserFitnessStatus), args.Error(1)
}

func (m *MockStore) CreateFitnessPlan(plan *domain.FitnessPlan) error {
	args := m.Called(plan)
	return args.Error(0)
}

func (m *MockStore) GetFitnessPlanByID(id string) (*domain.FitnessPlan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FitnessPlan), args.Error(1)
}

func (m *MockStore) GetAllFitnessPlans(status *domain.FitnessStatus) ([]*domain.FitnessPlan, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FitnessPlan), args.Error(1)
}

func (m *MockStore) CreatePlanAssignment(assignment *domain.PlanAssignment) error {
	args := m.Called(assignment)
	return args.Error(0)
}

func (m *MockStore) GetLatestPlanAssignment(userID string) (*domain.PlanAssignment, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanAssignment), args.Error(1)
}

// fakeMailQueue records published mail messages.
type fakeMailQueue struct {
	mu       sync.Mutex
	messages []domain.MailMessage
}

func (q *fakeMailQueue) Publish(_ context.Context, msg domain.MailMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
	return nil
}

func (q *fakeMailQueue) published() []domain.MailMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.MailMessage{}, q.messages...)
}

// fakeOTPStore keeps reset codes in a map; TTLs are ignored.
type fakeOTPStore struct {
	mu     sync.Mutex
	values map[string]string
	delErr error
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{values: make(map[string]string)}
}

func (s *fakeOTPStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *fakeOTPStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", errors.New("no such key")
	}
	return value, nil
}

func (s *fakeOTPStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.values, key)
	return nil
}

func (s *fakeOTPStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func newTestHandler(t *testing.T, store Store) (*Handler, *fakeMailQueue) {
	t.Helper()

	cfg := &config.Config{}
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.Redis.OperationTimeout = 1
	cfg.OTP.Expiration = 900

	tokens := auth.NewTokenService("test-secret", 7*24*time.Hour)
	mailQueue := &fakeMailQueue{}

	h, err := NewHandler(cfg, store, tokens, mailQueue, newFakeOTPStore())
	require.NoError(t, err)
	h.RegisterRoutes()

	return h, mailQueue
}

func doJSON(t *testing.T, h *Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.Mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func httptestRequestWithRawAuth(t *testing.T, h *Handler, header string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", "/fitness", nil)
	req.Header.Set("Authorization", header)

	w := httptest.NewRecorder()
	h.Mux.ServeHTTP(w, req)
	return w
}

func issueToken(t *testing.T, h *Handler, userID, email string, role domain.Role) string {
	t.Helper()

	token, err := h.tokens.Issue(userID, email, role)
	require.NoError(t, err)
	return token
}
