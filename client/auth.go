package client

import (
	"net/http"

	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

// Result reports the outcome of an auth operation. Logical failures
// (an error envelope) come back as a failed Result; only transport
// failures are returned as errors.
type Result struct {
	Success bool
	Message string
}

// AuthSession owns the login state: the current user, backed by the
// token store. It replaces ambient globals with an injected object
// whose lifecycle is explicit.
type AuthSession struct {
	client *Client
	store  *SessionStore
	user   *models.User
}

// NewAuthSession restores a session from stored tokens. A stored token
// the server rejects is cleared so the next run starts logged out.
func NewAuthSession(c *Client, store *SessionStore) *AuthSession {
	s := &AuthSession{client: c, store: store}

	if store.HasSession() {
		envelope, err := c.CurrentUser()
		if err != nil || envelope.StatusCode >= http.StatusBadRequest {
			_ = store.Clear()
			return s
		}
		user := &models.User{}
		if err := envelope.DecodeData(user); err == nil {
			s.user = user
		}
	}
	return s
}

func (s *AuthSession) User() *models.User {
	return s.user
}

func (s *AuthSession) IsAuthenticated() bool {
	return s.user != nil
}

func (s *AuthSession) Register(req *models.RegisterRequest) (Result, error) {
	envelope, err := s.client.Register(req)
	if err != nil {
		return Result{}, err
	}
	if envelope.StatusCode >= http.StatusBadRequest {
		return Result{Success: false, Message: envelope.Message}, nil
	}
	return Result{Success: true, Message: "registration successful, please login"}, nil
}

func (s *AuthSession) Login(req *models.LoginRequest) (Result, error) {
	envelope, err := s.client.Login(req)
	if err != nil {
		return Result{}, err
	}
	if envelope.StatusCode >= http.StatusBadRequest {
		return Result{Success: false, Message: envelope.Message}, nil
	}

	login := &models.LoginResult{}
	if err := envelope.DecodeData(login); err != nil {
		return Result{}, err
	}
	if err := s.store.Save(login.AccessToken, login.RefreshToken); err != nil {
		return Result{}, err
	}
	s.user = login.User

	return Result{Success: true, Message: "login successful"}, nil
}

// Logout clears the session even when the server call fails; from the
// client's perspective logout always succeeds locally.
func (s *AuthSession) Logout() (Result, error) {
	_, _ = s.client.Logout()

	if err := s.store.Clear(); err != nil {
		return Result{}, err
	}
	s.user = nil

	return Result{Success: true, Message: "logged out"}, nil
}
