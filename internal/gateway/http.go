package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/errs"
	"github.com/linkcut/linkcut-client/internal/model"
)

// TokenSource yields the current access token for bearer auth.
// An empty string sends the request anonymously.
type TokenSource func() string

// Client is the HTTP/JSON Gateway implementation.
type Client struct {
	base  string
	http  *http.Client
	token TokenSource
	log   *zap.Logger
}

var _ Gateway = (*Client)(nil)

// NewClient constructs a gateway client. token may be nil for a client that
// only performs anonymous calls.
func NewClient(baseURL string, timeout time.Duration, token TokenSource, log *zap.Logger) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		base:  baseURL,
		http:  &http.Client{Timeout: timeout},
		token: token,
		log:   log,
	}
}

type authResponse struct {
	User   model.User      `json:"user"`
	Tokens model.TokenPair `json:"tokens"`
}

// Login implements Gateway.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, model.TokenPair, error) {
	in := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out); err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return model.User{}, model.TokenPair{}, errs.ErrInvalidCredentials
		}
		return model.User{}, model.TokenPair{}, err
	}
	return out.User, out.Tokens, nil
}

// Register implements Gateway.
func (c *Client) Register(ctx context.Context, in RegisterInput) (model.User, model.TokenPair, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return out.User, out.Tokens, nil
}

// Refresh implements Gateway.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	in := map[string]string{"refresh_token": refreshToken}
	var out struct {
		Tokens model.TokenPair `json:"tokens"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", in, &out); err != nil {
		return model.TokenPair{}, err
	}
	return out.Tokens, nil
}

// Logout implements Gateway.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Profile implements Gateway.
func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

// Permissions implements Gateway.
func (c *Client) Permissions(ctx context.Context) (model.PermissionSet, error) {
	var out struct {
		Permissions model.PermissionSet `json:"permissions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/permissions", nil, &out); err != nil {
		return model.PermissionSet{}, err
	}
	return out.Permissions, nil
}

// ChangePassword implements Gateway. A 401 here means the current password
// was rejected, not that the session died.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := map[string]string{"current_password": current, "new_password": next}
	err := c.do(ctx, http.MethodPost, "/api/auth/change-password", in, nil)
	if errors.Is(err, errs.ErrUnauthorized) {
		return errs.ErrInvalidCredentials
	}
	return err
}

// DeleteAccount implements Gateway.
func (c *Client) DeleteAccount(ctx context.Context, password, confirmText string) error {
	in := map[string]string{"password": password, "confirm_text": confirmText}
	return c.do(ctx, http.MethodPost, "/api/users/delete-account", in, nil)
}

// do performs one JSON round trip. Logs carry metadata only, never payloads.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-Id", rid.String())
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gateway",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("dur", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Info("gateway",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// apiError maps a non-2xx response to a sentinel, keeping the server message.
func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = errs.ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		sentinel = errs.ErrAlreadyExists
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = errs.ErrValidation
	default:
		return fmt.Errorf("gateway: status %d: %s", resp.StatusCode, payload.Error)
	}
	if payload.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, payload.Error)
	}
	return sentinel
}
