package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type User struct {
	ID           string    `json:"id" validate:"omitempty,uuid"`
	Username     string    `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email        string    `json:"email" validate:"required,email"`
	FullName     string    `json:"fullName" validate:"required,min=1,max=100"`
	Password     string    `json:"-" validate:"required,min=6,max=100"`
	Role         string    `json:"role" validate:"omitempty,oneof=user admin"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy safe to put in a response envelope: the
// password hash and the persisted refresh token never leave the server.
func (u *User) Sanitized() *User {
	clean := *u
	clean.Password = ""
	clean.RefreshToken = ""
	return &clean
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"fullName" validate:"required,min=1,max=100"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type Task struct {
	ID          string    `json:"id" validate:"omitempty,uuid"`
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"required,min=5,max=2000"`
	Status      string    `json:"status" validate:"required,oneof=pending completed"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest distinguishes absent fields from empty ones so a
// PATCH only validates what the caller actually sent.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskOwner is the expanded owner reference on admin task listings.
type TaskOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type AdminTask struct {
	Task
	Owner TaskOwner `json:"ownerDetails"`
}

// LoginResult is the data payload of a successful login or token refresh.
type LoginResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TaskPage wraps a task listing with its pagination window.
type TaskPage struct {
	Tasks []Task `json:"tasks"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Total int    `json:"total"`
}
