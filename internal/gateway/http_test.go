package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/errs"
	"github.com/linkcut/linkcut-client/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src := func() string { return token }
	return NewClient(srv.URL, 5*time.Second, src, zap.NewNop()), srv
}

func TestLogin_Success(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	var gotHeaders http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(authResponse{
			User:   model.User{ID: "u1", Email: "a@b.c"},
			Tokens: model.TokenPair{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 900},
		})
	}, "")

	user, tokens, err := c.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "acc", tokens.AccessToken)
	require.Equal(t, "ref", tokens.RefreshToken)
	require.Equal(t, 900, tokens.ExpiresIn)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/auth/login", gotPath)
	require.Equal(t, "a@b.c", gotBody["email"])
	require.Equal(t, "secret123", gotBody["password"])
	require.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	require.NotEmpty(t, gotHeaders.Get("X-Request-Id"))
	require.Empty(t, gotHeaders.Get("Authorization"))
}

func TestLogin_401MapsToInvalidCredentials(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
	}, "")

	_, _, err := c.Login(context.Background(), "a@b.c", "wrong")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestProfile_SendsBearerAnd401MapsToUnauthorized(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}, "tok-123")

	_, err := c.Profile(context.Background())
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRegister_409MapsToAlreadyExists(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email taken"})
	}, "")

	_, _, err := c.Register(context.Background(), RegisterInput{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	require.Contains(t, err.Error(), "email taken")
}

func TestRefresh_SuccessAndValidationError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["refresh_token"] != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "malformed token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tokens": model.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"},
		})
	}, "")

	tokens, err := c.Refresh(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "new-acc", tokens.AccessToken)

	_, err = c.Refresh(context.Background(), "bad")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestChangePassword_401MapsToInvalidCredentials(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "tok")

	err := c.ChangePassword(context.Background(), "wrong-old", "new-password")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestPermissions_Success(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"permissions": model.PermissionSet{CanViewAnalytics: true, MaxUrlsPerDay: 100},
		})
	}, "tok")

	perms, err := c.Permissions(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, gotMethod)
	require.Equal(t, "/api/users/permissions", gotPath)
	require.True(t, perms.CanViewAnalytics)
	require.Equal(t, 100, perms.MaxUrlsPerDay)
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil, zap.NewNop())
	_, err := c.Profile(context.Background())
	require.ErrorIs(t, err, errs.ErrNetwork)
}

func TestUnexpectedStatusKeepsCode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
	}, "")

	err := c.Logout(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
	require.Contains(t, err.Error(), "boom")
}
