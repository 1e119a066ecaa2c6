// Package inmemory is a map-backed storage used by tests and as the
// fallback when the database is unreachable.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
	tasks map[string]models.Task
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		tasks: make(map[string]models.Task),
	}
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apierrors.ErrUserAlreadyExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, apierrors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == "" {
		return nil, apierrors.ErrUserNotFound
	}
	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, apierrors.ErrUserNotFound
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email == "" {
		return nil, apierrors.ErrUserNotFound
	}
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apierrors.ErrUserNotFound
}

func (s *Storage) GetUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Storage) UpdateUserRole(_ context.Context, id, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return nil, apierrors.ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return &user, nil
}

func (s *Storage) UpdateRefreshToken(_ context.Context, id, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return apierrors.ErrUserNotFound
	}
	user.RefreshToken = refreshToken
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return apierrors.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, apierrors.ErrTaskNotFound
	}
	return &task, nil
}

func (s *Storage) GetTasksByOwner(_ context.Context, ownerID, status string, limit, offset int) ([]models.Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Task{}
	for _, task := range s.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		matched = append(matched, task)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []models.Task{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *Storage) GetAllTasks(_ context.Context) ([]models.AdminTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.AdminTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		entry := models.AdminTask{Task: task}
		if owner, exists := s.users[task.OwnerID]; exists {
			entry.Owner = models.TaskOwner{
				ID:       owner.ID,
				Username: owner.Username,
				Email:    owner.Email,
				FullName: owner.FullName,
			}
		}
		tasks = append(tasks, entry)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, id string, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.tasks[id]
	if !exists {
		return apierrors.ErrTaskNotFound
	}
	task.ID = id
	task.OwnerID = existing.OwnerID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()
	s.tasks[id] = *task
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return apierrors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Storage) DeleteTasksByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, task := range s.tasks {
		if task.OwnerID == ownerID {
			delete(s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}
