// Package permissions derives the effective capability set for a session.
package permissions

import "github.com/linkcut/linkcut-client/internal/model"

// GuestDefaults returns the fixed capability set for unauthenticated
// sessions: no feature flags, tight quotas.
func GuestDefaults() model.PermissionSet {
	return model.PermissionSet{
		MaxUrlsPerDay:     5,
		MaxUrlsTotal:      10,
		MaxUrlsExpiryDays: 365,
	}
}

// Resolve maps the session mode to an effective permission set. Authenticated
// sessions use the last fetched set once available; everything else, and an
// authenticated session whose fetch has not resolved yet, gets the guest
// defaults. Last write wins; nothing is cached across sessions.
func Resolve(mode model.Mode, fetched *model.PermissionSet) model.PermissionSet {
	if mode == model.ModeAuthenticated && fetched != nil {
		return *fetched
	}
	return GuestDefaults()
}
