// Package storage provides the durable key/value store backing the session
// core: the client-side stand-in for browser local storage. Adapters hold no
// logic; composite credential operations keep the two token keys from
// diverging.
package storage

import (
	"fmt"

	"github.com/linkcut/linkcut-client/internal/model"
)

// Recognized keys. Token keys are owned by the session store; the rest belong
// to UI-layer collaborators and are only touched by Clear.
const (
	KeyAccessToken          = "accessToken"
	KeyRefreshToken         = "refreshToken"
	KeyTheme                = "theme"
	KeySidebarCollapsed     = "sidebarCollapsed"
	KeyUIPreferences        = "uiPreferences"
	KeyUserLocalPreferences = "userLocalPreferences"
)

// AllKeys lists every key the client may persist.
var AllKeys = []string{
	KeyAccessToken,
	KeyRefreshToken,
	KeyTheme,
	KeySidebarCollapsed,
	KeyUIPreferences,
	KeyUserLocalPreferences,
}

// Adapter is a dumb string key/value store over durable client storage.
type Adapter interface {
	// Load returns the stored value and whether the key was present.
	Load(key string) (string, bool)
	// Save stores the value under the key, overwriting any previous value.
	Save(key, value string) error
	// Remove deletes the key; removing an absent key is not an error.
	Remove(key string) error
}

// SaveCredentials writes both token keys. If the second write fails the first
// is rolled back so the pair never diverges.
func SaveCredentials(a Adapter, t model.TokenPair) error {
	if err := a.Save(KeyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := a.Save(KeyRefreshToken, t.RefreshToken); err != nil {
		_ = a.Remove(KeyAccessToken)
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored token pair. Both keys must be present
// and non-empty; a half-written pair reads as absent.
func LoadCredentials(a Adapter) (model.TokenPair, bool) {
	access, okA := a.Load(KeyAccessToken)
	refresh, okR := a.Load(KeyRefreshToken)
	if !okA || !okR || access == "" || refresh == "" {
		return model.TokenPair{}, false
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, true
}

// ClearCredentials removes both token keys.
func ClearCredentials(a Adapter) error {
	if err := a.Remove(KeyAccessToken); err != nil {
		return fmt.Errorf("remove access token: %w", err)
	}
	if err := a.Remove(KeyRefreshToken); err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}
	return nil
}

// Clear removes every recognized key, tokens and UI-layer state alike.
func Clear(a Adapter) error {
	for _, k := range AllKeys {
		if err := a.Remove(k); err != nil {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}
	return nil
}
