// Package model defines domain entities shared by the session core and its consumers.
package model

import "time"

// Mode is the authentication mode of the current session.
type Mode int

const (
	// ModeUninitialized holds only before stored credentials are first resolved.
	ModeUninitialized Mode = iota
	// ModeGuest is an unauthenticated session with the fixed default capability set.
	ModeGuest
	// ModeAuthenticated is a session backed by a token pair.
	ModeAuthenticated
	// ModeLoggedOut is the transient between Logout and the next
	// SetGuestMode/Initialize; it must not outlive that window.
	ModeLoggedOut
)

func (m Mode) String() string {
	switch m {
	case ModeUninitialized:
		return "uninitialized"
	case ModeGuest:
		return "guest"
	case ModeAuthenticated:
		return "authenticated"
	case ModeLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// TokenPair couples the short-lived access token with its refresh token.
// The server may rotate the refresh token; holders must overwrite the whole
// pair, never keep the old half.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token TTL, seconds
}

// User is the authenticated account profile as reported by the gateway.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// Canonical capability names accepted by PermissionSet.Has and the access gate.
const (
	CapViewAnalytics     = "canViewAnalytics"
	CapCreateCustomAlias = "canCreateCustomAlias"
	CapSetCustomExpiry   = "canSetCustomExpiry"
	CapViewStats         = "canViewStats"
	CapDuplicateUrls     = "canDuplicateUrls"
	CapExportData        = "canExportData"
)

// PermissionSet is the capability flags and usage quotas derived from a session.
type PermissionSet struct {
	CanViewAnalytics     bool `json:"canViewAnalytics"`
	CanCreateCustomAlias bool `json:"canCreateCustomAlias"`
	CanSetCustomExpiry   bool `json:"canSetCustomExpiry"`
	CanViewStats         bool `json:"canViewStats"`
	CanDuplicateUrls     bool `json:"canDuplicateUrls"`
	CanExportData        bool `json:"canExportData"`

	MaxUrlsPerDay     int `json:"maxUrlsPerDay"`
	MaxUrlsTotal      int `json:"maxUrlsTotal"`
	MaxUrlsExpiryDays int `json:"maxUrlsExpiryDays"`
}

// Has reports whether the named boolean capability is granted.
// Unknown names are never granted.
func (p PermissionSet) Has(name string) bool {
	switch name {
	case CapViewAnalytics:
		return p.CanViewAnalytics
	case CapCreateCustomAlias:
		return p.CanCreateCustomAlias
	case CapSetCustomExpiry:
		return p.CanSetCustomExpiry
	case CapViewStats:
		return p.CanViewStats
	case CapDuplicateUrls:
		return p.CanDuplicateUrls
	case CapExportData:
		return p.CanExportData
	default:
		return false
	}
}
