package session

import (
	"github.com/linkcut/linkcut-client/internal/model"
	"github.com/linkcut/linkcut-client/internal/permissions"
)

// Verdict classifies an access decision.
type Verdict int

const (
	// Allow grants access.
	Allow Verdict = iota
	// RedirectToLogin denies access pending authentication.
	RedirectToLogin
	// DenyWithUpsell denies access for a missing capability.
	DenyWithUpsell
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case DenyWithUpsell:
		return "deny_with_upsell"
	default:
		return "unknown"
	}
}

// UpsellVariant selects the denial prompt: register for guests, plan upgrade
// for authenticated users.
type UpsellVariant int

const (
	UpsellNone UpsellVariant = iota
	UpsellGuest
	UpsellPlanUpgrade
)

func (u UpsellVariant) String() string {
	switch u {
	case UpsellGuest:
		return "guest"
	case UpsellPlanUpgrade:
		return "plan_upgrade"
	default:
		return "none"
	}
}

// Requirement is what a route or feature asks of the session.
type Requirement struct {
	// RequireAuth demands an authenticated session.
	RequireAuth bool
	// Capability optionally names a capability that must be granted.
	Capability string
	// Location is the attempted location, echoed back on redirect so the
	// caller can return there after login.
	Location string
}

// Decision is the outcome of evaluating a Requirement.
type Decision struct {
	Verdict Verdict
	Upsell  UpsellVariant
	// RedirectAfterLogin carries Requirement.Location when the verdict is
	// RedirectToLogin.
	RedirectAfterLogin string
}

// Decide evaluates a requirement against a session snapshot. It is pure and
// side-effect free; navigation and rendering belong to the caller.
func Decide(snap Snapshot, req Requirement) Decision {
	if req.RequireAuth && !snap.IsAuthenticated() {
		return Decision{Verdict: RedirectToLogin, RedirectAfterLogin: req.Location}
	}
	if req.Capability != "" {
		effective := permissions.Resolve(snap.Mode, snap.Permissions)
		if !effective.Has(req.Capability) {
			variant := UpsellPlanUpgrade
			if snap.Mode == model.ModeGuest {
				variant = UpsellGuest
			}
			return Decision{Verdict: DenyWithUpsell, Upsell: variant}
		}
	}
	return Decision{Verdict: Allow}
}
