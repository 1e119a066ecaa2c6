package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name           string
		request        models.CreateTaskRequest
		wantStatusCode int
	}{
		{
			name:           "valid task",
			request:        models.CreateTaskRequest{Title: "Buy milk", Description: "2% milk, 1 gallon"},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "title too short",
			request:        models.CreateTaskRequest{Title: "ab", Description: "long enough"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "title only whitespace",
			request:        models.CreateTaskRequest{Title: "   ", Description: "long enough"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "title short after trim",
			request:        models.CreateTaskRequest{Title: "  ab  ", Description: "long enough"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "description too short",
			request:        models.CreateTaskRequest{Title: "Valid title", Description: "abcd"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// two characters even though the encoding is six bytes
			name:           "multibyte title too short",
			request:        models.CreateTaskRequest{Title: "日本", Description: "long enough"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "multibyte description too short",
			request:        models.CreateTaskRequest{Title: "Valid title", Description: "日本語で"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "multibyte task long enough",
			request:        models.CreateTaskRequest{Title: "牛乳を買う", Description: "スーパーで二リットルの牛乳を買う"},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing description",
			request:        models.CreateTaskRequest{Title: "Valid title"},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, store := newInmemAPI(t)
			owner := &models.User{Username: "owner", Email: "owner@example.com", FullName: "Owner", Password: "x", Role: models.RoleUser}
			assert.NoError(t, store.CreateUser(context.Background(), owner))
			token := accessTokenFor(t, api, owner)

			jsonData, _ := json.Marshal(tt.request)
			req, _ := http.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewBuffer(jsonData))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			w := doRequest(api, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)

			if tt.wantStatusCode == http.StatusCreated {
				var envelope struct {
					Data models.Task `json:"data"`
				}
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
				assert.Equal(t, models.StatusPending, envelope.Data.Status)
				assert.Equal(t, owner.ID, envelope.Data.OwnerID)
			}
		})
	}
}

func TestCreateThenFetchRoundTrip(t *testing.T) {
	api, store := newInmemAPI(t)
	owner := &models.User{Username: "owner", Email: "owner@example.com", FullName: "Owner", Password: "x", Role: models.RoleUser}
	assert.NoError(t, store.CreateUser(context.Background(), owner))
	token := accessTokenFor(t, api, owner)

	body, _ := json.Marshal(models.CreateTaskRequest{Title: "Buy milk", Description: "2% milk, 1 gallon"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := doRequest(api, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Task `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/tasks/"+created.Data.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = doRequest(api, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var fetched struct {
		Data models.Task `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.Data.Title, fetched.Data.Title)
	assert.Equal(t, created.Data.Description, fetched.Data.Description)
	assert.Equal(t, created.Data.Status, fetched.Data.Status)
}

func TestGetUserTasksFiltering(t *testing.T) {
	api, store := newInmemAPI(t)

	owner := &models.User{Username: "owner", Email: "owner@example.com", FullName: "Owner", Password: "x", Role: models.RoleUser}
	other := &models.User{Username: "other", Email: "other@example.com", FullName: "Other", Password: "x", Role: models.RoleUser}
	assert.NoError(t, store.CreateUser(context.Background(), owner))
	assert.NoError(t, store.CreateUser(context.Background(), other))

	mkTask := func(ownerID, title, status string) {
		task := &models.Task{Title: title, Description: "description of " + title, Status: status, OwnerID: ownerID}
		assert.NoError(t, store.CreateTask(context.Background(), task))
	}
	mkTask(owner.ID, "first", models.StatusPending)
	mkTask(owner.ID, "second", models.StatusCompleted)
	mkTask(owner.ID, "third", models.StatusCompleted)
	mkTask(other.ID, "foreign", models.StatusCompleted)

	token := accessTokenFor(t, api, owner)

	listTasks := func(query string) models.TaskPage {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/tasks"+query, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := doRequest(api, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Data models.TaskPage `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		return envelope.Data
	}

	t.Run("completed filter returns only the caller's completed tasks", func(t *testing.T) {
		page := listTasks("?status=completed")
		assert.Len(t, page.Tasks, 2)
		for _, task := range page.Tasks {
			assert.Equal(t, models.StatusCompleted, task.Status)
			assert.Equal(t, owner.ID, task.OwnerID)
		}
		// Newest-created first.
		assert.Equal(t, "third", page.Tasks[0].Title)
		assert.Equal(t, "second", page.Tasks[1].Title)
	})

	t.Run("unknown status values are ignored", func(t *testing.T) {
		page := listTasks("?status=archived")
		assert.Len(t, page.Tasks, 3)
		assert.Equal(t, 3, page.Total)
	})

	t.Run("pagination windows the listing", func(t *testing.T) {
		page := listTasks("?page=2&limit=2")
		assert.Len(t, page.Tasks, 1)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, "first", page.Tasks[0].Title)
	})
}

func TestTaskOwnership(t *testing.T) {
	api, store := newInmemAPI(t)

	owner := &models.User{Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "x", Role: models.RoleUser}
	intruder := &models.User{Username: "mallory", Email: "mallory@example.com", FullName: "Mallory", Password: "x", Role: models.RoleUser}
	admin := &models.User{Username: "root", Email: "root@example.com", FullName: "Root", Password: "x", Role: models.RoleAdmin}
	assert.NoError(t, store.CreateUser(context.Background(), owner))
	assert.NoError(t, store.CreateUser(context.Background(), intruder))
	assert.NoError(t, store.CreateUser(context.Background(), admin))

	task := &models.Task{Title: "private", Description: "owner only", Status: models.StatusPending, OwnerID: owner.ID}
	assert.NoError(t, store.CreateTask(context.Background(), task))

	intruderToken := accessTokenFor(t, api, intruder)
	adminToken := accessTokenFor(t, api, admin)

	patch, _ := json.Marshal(map[string]string{"status": models.StatusCompleted})

	tests := []struct {
		name     string
		method   string
		body     []byte
		token    string
		wantCode int
	}{
		{"non-owner get", http.MethodGet, nil, intruderToken, http.StatusForbidden},
		{"non-owner patch", http.MethodPatch, patch, intruderToken, http.StatusForbidden},
		{"non-owner delete", http.MethodDelete, nil, intruderToken, http.StatusForbidden},
		{"admin get", http.MethodGet, nil, adminToken, http.StatusOK},
		{"unauthenticated get", http.MethodGet, nil, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != nil {
				req, _ = http.NewRequest(tt.method, "/api/v1/tasks/"+task.ID, bytes.NewBuffer(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req, _ = http.NewRequest(tt.method, "/api/v1/tasks/"+task.ID, nil)
			}
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := doRequest(api, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	t.Run("missing task is 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/tasks/no-such-task", nil)
		req.Header.Set("Authorization", "Bearer "+intruderToken)
		w := doRequest(api, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateTaskPartialValidation(t *testing.T) {
	newTaskAPI := func(t *testing.T) (*TaskAPI, string, string) {
		api, store := newInmemAPI(t)
		owner := &models.User{Username: "owner", Email: "owner@example.com", FullName: "Owner", Password: "x", Role: models.RoleUser}
		assert.NoError(t, store.CreateUser(context.Background(), owner))
		task := &models.Task{Title: "initial title", Description: "initial description", Status: models.StatusPending, OwnerID: owner.ID}
		assert.NoError(t, store.CreateTask(context.Background(), task))
		return api, accessTokenFor(t, api, owner), task.ID
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{"status only", `{"status":"completed"}`, http.StatusOK},
		{"title only", `{"title":"new title"}`, http.StatusOK},
		{"absent fields untouched", `{}`, http.StatusOK},
		{"invalid status", `{"status":"archived"}`, http.StatusBadRequest},
		{"short title", `{"title":"ab"}`, http.StatusBadRequest},
		{"empty title", `{"title":"   "}`, http.StatusBadRequest},
		{"short description", `{"description":"abcd"}`, http.StatusBadRequest},
		{"multibyte title too short", `{"title":"日本"}`, http.StatusBadRequest},
		{"multibyte description too short", `{"description":"日本語で"}`, http.StatusBadRequest},
		{"multibyte fields long enough", `{"title":"新しい題名","description":"五文字以上の説明"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, token, taskID := newTaskAPI(t)

			req, _ := http.NewRequest(http.MethodPatch, "/api/v1/tasks/"+taskID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			w := doRequest(api, req)
			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}

	t.Run("update persists", func(t *testing.T) {
		api, token, taskID := newTaskAPI(t)

		req, _ := http.NewRequest(http.MethodPatch, "/api/v1/tasks/"+taskID, bytes.NewBufferString(`{"status":"completed"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := doRequest(api, req)
		assert.Equal(t, http.StatusOK, w.Code)

		req, _ = http.NewRequest(http.MethodGet, "/api/v1/tasks/"+taskID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w = doRequest(api, req)

		var envelope struct {
			Data models.Task `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, models.StatusCompleted, envelope.Data.Status)
		assert.Equal(t, "initial title", envelope.Data.Title)
	})
}

func TestDeleteTask(t *testing.T) {
	api, store := newInmemAPI(t)
	owner := &models.User{Username: "owner", Email: "owner@example.com", FullName: "Owner", Password: "x", Role: models.RoleUser}
	assert.NoError(t, store.CreateUser(context.Background(), owner))
	task := &models.Task{Title: "to delete", Description: "will be removed", Status: models.StatusPending, OwnerID: owner.ID}
	assert.NoError(t, store.CreateTask(context.Background(), task))
	token := accessTokenFor(t, api, owner)

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/tasks/"+task.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := doRequest(api, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{}`)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = doRequest(api, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// A storage failure on the task lookup must not masquerade as 404.
func TestGetTaskStorageFailure(t *testing.T) {
	users := new(MockUserRepository)
	tasks := new(MockTaskRepository)
	api := newTestAPI(t, users, tasks)

	owner := &models.User{ID: "22222222-3333-4444-5555-666666666666", Username: "owner", Role: models.RoleUser}
	users.On("GetUserByID", mock.Anything, owner.ID).Return(owner, nil)
	tasks.On("GetTaskByID", mock.Anything, "task-1").Return(nil, errors.New("connection reset"))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/tasks/task-1", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, api, owner))
	w := doRequest(api, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
