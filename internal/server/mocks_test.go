package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
	"github.com/mahiraziiz/primetrade.ai/repository/inmemory"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUserRole(ctx context.Context, id, role string) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	args := m.Called(ctx, id, refreshToken)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTasksByOwner(ctx context.Context, ownerID, status string, limit, offset int) ([]models.Task, int, error) {
	args := m.Called(ctx, ownerID, status, limit, offset)
	return args.Get(0).([]models.Task), args.Int(1), args.Error(2)
}

func (m *MockTaskRepository) GetAllTasks(ctx context.Context) ([]models.AdminTask, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.AdminTask), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, id string, task *models.Task) error {
	args := m.Called(ctx, id, task)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTasksByOwner(ctx context.Context, ownerID string) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() *Config {
	return &Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Environment:   EnvProduction,
	}
}

func newTestAPI(t *testing.T, users UserRepository, tasks TaskRepository) *TaskAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := NewTaskAPI(users, tasks, testConfig())
	if api == nil {
		t.Fatal("failed to build test API")
	}
	return api
}

// newInmemAPI wires the API against the in-memory storage for
// end-to-end handler tests.
func newInmemAPI(t *testing.T) (*TaskAPI, *inmemory.Storage) {
	t.Helper()
	store := inmemory.NewStorage()
	return newTestAPI(t, store, store), store
}

func accessTokenFor(t *testing.T, api *TaskAPI, user *models.User) string {
	t.Helper()
	token, err := api.tokens.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	return token
}

func doRequest(api *TaskAPI, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	return w
}
