package client

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	appName    = "taskctl"
	tokensFile = "tokens.json"
)

// storedTokens is the on-disk token record.
type storedTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionStore persists the access/refresh token pair under the user
// config directory. It is created at login and cleared at logout or
// when a stored token is rejected by the server.
type SessionStore struct {
	dir    string
	tokens storedTokens
}

// NewSessionStore opens the store rooted at dir, loading any stored
// tokens. If dir is empty the XDG config directory is used.
func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		dir = defaultConfigDir()
	}
	s := &SessionStore{dir: dir}

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.tokens); err != nil {
		// A corrupt token file is treated as logged out.
		s.tokens = storedTokens{}
	}
	return s, nil
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".config", appName)
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, tokensFile)
}

func (s *SessionStore) AccessToken() string {
	return s.tokens.AccessToken
}

func (s *SessionStore) RefreshToken() string {
	return s.tokens.RefreshToken
}

func (s *SessionStore) HasSession() bool {
	return s.tokens.AccessToken != ""
}

// Save persists the token pair with owner-only permissions.
func (s *SessionStore) Save(accessToken, refreshToken string) error {
	s.tokens = storedTokens{AccessToken: accessToken, RefreshToken: refreshToken}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&s.tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0600)
}

// Clear drops the tokens from memory and disk.
func (s *SessionStore) Clear() error {
	s.tokens = storedTokens{}
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
