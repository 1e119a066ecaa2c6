// Package client wraps the task service HTTP API: one method per
// endpoint, envelope decoding, and bearer auth from a session store.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const (
	// DefaultBaseURL matches the server's default listen address.
	DefaultBaseURL = "http://localhost:8080/api/v1"

	requestTimeout = 10 * time.Second

	// maxErrorBody bounds how much of a non-JSON body travels in an
	// error, enough to diagnose a proxy or error page.
	maxErrorBody = 200
)

// Envelope is the uniform response wrapper returned by every endpoint.
// Callers inspect StatusCode/Success themselves; the client only turns
// transport-level problems into errors.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// DecodeData unmarshals the envelope data payload into out.
func (e *Envelope) DecodeData(out any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	store   *SessionStore
}

// New creates a client against baseURL. An empty baseURL falls back to
// the TASK_API_URL environment setting, then the default.
func New(baseURL string, store *SessionStore) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("TASK_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
		store:   store,
	}
}

func (c *Client) Register(req *models.RegisterRequest) (*Envelope, error) {
	return c.do(http.MethodPost, "/users/register", req, false)
}

func (c *Client) Login(req *models.LoginRequest) (*Envelope, error) {
	return c.do(http.MethodPost, "/users/login", req, false)
}

func (c *Client) Logout() (*Envelope, error) {
	return c.do(http.MethodPost, "/users/logout", nil, true)
}

func (c *Client) CurrentUser() (*Envelope, error) {
	return c.do(http.MethodGet, "/users/current-user", nil, true)
}

func (c *Client) RefreshToken() (*Envelope, error) {
	req := &models.RefreshRequest{RefreshToken: c.store.RefreshToken()}
	return c.do(http.MethodPost, "/users/refresh-token", req, false)
}

func (c *Client) CreateTask(req *models.CreateTaskRequest) (*Envelope, error) {
	return c.do(http.MethodPost, "/tasks", req, true)
}

func (c *Client) Tasks(page, limit int, status string) (*Envelope, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if status != "" {
		query.Set("status", status)
	}
	path := "/tasks"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.do(http.MethodGet, path, nil, true)
}

func (c *Client) Task(taskID string) (*Envelope, error) {
	return c.do(http.MethodGet, "/tasks/"+url.PathEscape(taskID), nil, true)
}

func (c *Client) UpdateTask(taskID string, req *models.UpdateTaskRequest) (*Envelope, error) {
	return c.do(http.MethodPatch, "/tasks/"+url.PathEscape(taskID), req, true)
}

func (c *Client) DeleteTask(taskID string) (*Envelope, error) {
	return c.do(http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, true)
}

func (c *Client) AdminUsers() (*Envelope, error) {
	return c.do(http.MethodGet, "/admin/users", nil, true)
}

func (c *Client) AdminUser(userID string) (*Envelope, error) {
	return c.do(http.MethodGet, "/admin/users/"+url.PathEscape(userID), nil, true)
}

func (c *Client) AdminUpdateUserRole(userID, role string) (*Envelope, error) {
	req := &models.UpdateRoleRequest{Role: role}
	return c.do(http.MethodPatch, "/admin/users/"+url.PathEscape(userID)+"/role", req, true)
}

func (c *Client) AdminDeleteUser(userID string) (*Envelope, error) {
	return c.do(http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil, true)
}

func (c *Client) AdminTasks() (*Envelope, error) {
	return c.do(http.MethodGet, "/admin/tasks", nil, true)
}

func (c *Client) AdminDeleteTask(taskID string) (*Envelope, error) {
	return c.do(http.MethodDelete, "/admin/tasks/"+url.PathEscape(taskID), nil, true)
}

func (c *Client) do(method, path string, body any, authenticated bool) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated && c.store != nil && c.store.AccessToken() != "" {
		req.Header.Set("Authorization", "Bearer "+c.store.AccessToken())
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Proxies and error pages answer with HTML; surface the truncated
	// body instead of a JSON decode failure.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}

	envelope := &Envelope{}
	if err := json.NewDecoder(resp.Body).Decode(envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return envelope, nil
}
