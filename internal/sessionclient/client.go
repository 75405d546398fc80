package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoToken      = errors.New("no session token")
)

// APIError is a non-401 failure reported in the response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Grant is a session handed out by login, register or a rotating refresh.
type Grant struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresIn int64     `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user,omitempty"`
}

type RefreshResult struct {
	Token     string    `json:"token"`
	Rotated   bool      `json:"rotated"`
	Message   string    `json:"message"`
	ExpiresIn int64     `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*Grant, error) {
	var grant Grant
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Grant, error) {
	var grant Grant
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", req, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *Client) Refresh(ctx context.Context, token string) (*RefreshResult, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var result RefreshResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf(errEncodeRequest, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf(errCreateRequest, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if in != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", authSchemeBearer+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(errSendRequest, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf(errDecodeResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if env.Error != nil && env.Error.Message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Error.Message)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf(errDecodeResponse, err)
	}
	return nil
}
