// Package db is the pgx-backed storage for users and tasks.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const queryTimeout = 15 * time.Second

const pgUniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool

	qCreateUser         string
	qGetUserByID        string
	qGetUserByUsername  string
	qGetUserByEmail     string
	qGetUsers           string
	qUpdateUserRole     string
	qUpdateRefreshToken string
	qDeleteUser         string

	qCreateTask         string
	qGetTaskByID        string
	qGetTasksByOwner    string
	qCountTasksByOwner  string
	qGetAllTasks        string
	qUpdateTask         string
	qDeleteTask         string
	qDeleteTasksByOwner string
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Errorf("failed to configure database pool: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		log.Errorf("failed to connect to database: %v", err)
		pool.Close()
		return nil, err
	}

	userColumns := `id, username, email, full_name, password, role, COALESCE(refresh_token, ''), created_at, updated_at`
	taskColumns := `id, title, description, status, owner_id, created_at, updated_at`

	s := &Storage{
		pool: pool,

		qCreateUser: `INSERT INTO users (id, username, email, full_name, password, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now()) RETURNING created_at, updated_at`,
		qGetUserByID:        `SELECT ` + userColumns + ` FROM users WHERE id = $1`,
		qGetUserByUsername:  `SELECT ` + userColumns + ` FROM users WHERE username = $1`,
		qGetUserByEmail:     `SELECT ` + userColumns + ` FROM users WHERE email = $1`,
		qGetUsers:           `SELECT ` + userColumns + ` FROM users ORDER BY created_at`,
		qUpdateUserRole:     `UPDATE users SET role = $1, updated_at = now() WHERE id = $2 RETURNING ` + userColumns,
		qUpdateRefreshToken: `UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`,
		qDeleteUser:         `DELETE FROM users WHERE id = $1`,

		qCreateTask: `INSERT INTO tasks (id, title, description, status, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now()) RETURNING created_at, updated_at`,
		qGetTaskByID: `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`,
		qGetTasksByOwner: `SELECT ` + taskColumns + ` FROM tasks
			WHERE owner_id = $1 AND ($2 = '' OR status = $2)
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		qCountTasksByOwner: `SELECT count(*) FROM tasks WHERE owner_id = $1 AND ($2 = '' OR status = $2)`,
		qGetAllTasks: `SELECT t.id, t.title, t.description, t.status, t.owner_id, t.created_at, t.updated_at,
			COALESCE(u.id::text, ''), COALESCE(u.username, ''), COALESCE(u.email, ''), COALESCE(u.full_name, '')
			FROM tasks t LEFT JOIN users u ON u.id = t.owner_id
			ORDER BY t.created_at DESC`,
		qUpdateTask:         `UPDATE tasks SET title = $1, description = $2, status = $3, updated_at = now() WHERE id = $4`,
		qDeleteTask:         `DELETE FROM tasks WHERE id = $1`,
		qDeleteTasksByOwner: `DELETE FROM tasks WHERE owner_id = $1`,
	}

	log.Info("database connection established")
	return s, nil
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.qCreateUser,
		user.ID, user.Username, user.Email, user.FullName, user.Password, user.Role)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apierrors.ErrUserAlreadyExists
		}
		log.Errorf("failed to create user: %v", err)
		return err
	}
	log.WithField("user_id", user.ID).Debug("user created")
	return nil
}

func (s *Storage) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName,
		&user.Password, &user.Role, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.ErrUserNotFound
		}
		log.Errorf("failed to read user: %v", err)
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qGetUserByID, id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, apierrors.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qGetUserByUsername, username))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apierrors.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qGetUserByEmail, email))
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, s.qGetUsers)
	if err != nil {
		log.Errorf("failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Storage) UpdateUserRole(ctx context.Context, id, role string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qUpdateUserRole, role, id))
}

func (s *Storage) UpdateRefreshToken(ctx context.Context, id, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.qUpdateRefreshToken, refreshToken, id)
	if err != nil {
		log.Errorf("failed to update refresh token: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apierrors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.qDeleteUser, id)
	if err != nil {
		log.Errorf("failed to delete user: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apierrors.ErrUserNotFound
	}
	log.WithField("user_id", id).Debug("user deleted")
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, s.qCreateTask,
		task.ID, task.Title, task.Description, task.Status, task.OwnerID)
	if err := row.Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		log.Errorf("failed to create task: %v", err)
		return err
	}
	log.WithField("task_id", task.ID).Debug("task created")
	return nil
}

func (s *Storage) scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status,
		&task.OwnerID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.ErrTaskNotFound
		}
		log.Errorf("failed to read task: %v", err)
		return nil, err
	}
	return task, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.scanTask(s.pool.QueryRow(ctx, s.qGetTaskByID, id))
}

func (s *Storage) GetTasksByOwner(ctx context.Context, ownerID, status string, limit, offset int) ([]models.Task, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, s.qCountTasksByOwner, ownerID, status).Scan(&total); err != nil {
		log.Errorf("failed to count tasks: %v", err)
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, s.qGetTasksByOwner, ownerID, status, limit, offset)
	if err != nil {
		log.Errorf("failed to list tasks: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, total, rows.Err()
}

func (s *Storage) GetAllTasks(ctx context.Context) ([]models.AdminTask, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, s.qGetAllTasks)
	if err != nil {
		log.Errorf("failed to list all tasks: %v", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.AdminTask{}
	for rows.Next() {
		entry := models.AdminTask{}
		err := rows.Scan(&entry.ID, &entry.Title, &entry.Description, &entry.Status,
			&entry.OwnerID, &entry.CreatedAt, &entry.UpdatedAt,
			&entry.Owner.ID, &entry.Owner.Username, &entry.Owner.Email, &entry.Owner.FullName)
		if err != nil {
			log.Errorf("failed to read task listing: %v", err)
			return nil, err
		}
		tasks = append(tasks, entry)
	}
	return tasks, rows.Err()
}

func (s *Storage) UpdateTask(ctx context.Context, id string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.qUpdateTask, task.Title, task.Description, task.Status, id)
	if err != nil {
		log.Errorf("failed to update task: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apierrors.ErrTaskNotFound
	}
	log.WithField("task_id", id).Debug("task updated")
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.qDeleteTask, id)
	if err != nil {
		log.Errorf("failed to delete task: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return apierrors.ErrTaskNotFound
	}
	log.WithField("task_id", id).Debug("task deleted")
	return nil
}

func (s *Storage) DeleteTasksByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, s.qDeleteTasksByOwner, ownerID)
	if err != nil {
		log.Errorf("failed to delete tasks by owner: %v", err)
		return 0, err
	}
	return ct.RowsAffected(), nil
}
