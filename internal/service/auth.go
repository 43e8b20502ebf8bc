// Package service wires the session store, auth gateway, and refresh
// scheduler into the application-facing operations, applying the reaction
// rules that connect gateway responses to session transitions.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/errs"
	"github.com/linkcut/linkcut-client/internal/gateway"
	"github.com/linkcut/linkcut-client/internal/session"
	"github.com/linkcut/linkcut-client/internal/storage"
)

// DeleteConfirmPhrase must be typed verbatim to delete an account.
const DeleteConfirmPhrase = "DELETE MY ACCOUNT"

// Auth owns the session lifecycle on behalf of UI collaborators.
type Auth struct {
	store   *session.Store
	gw      gateway.Gateway
	adapter storage.Adapter
	log     *zap.Logger
}

// New constructs the auth service. The refresh scheduler subscribes to the
// store on its own; it is not a direct dependency here.
func New(store *session.Store, gw gateway.Gateway, adapter storage.Adapter, log *zap.Logger) *Auth {
	return &Auth{store: store, gw: gw, adapter: adapter, log: log}
}

// Store exposes the session store for read access and subscriptions.
func (a *Auth) Store() *session.Store { return a.store }

// Decide evaluates an access requirement against the current session.
func (a *Auth) Decide(req session.Requirement) session.Decision {
	return session.Decide(a.store.Snapshot(), req)
}

// Initialize seeds the session from persisted credentials, then refines it
// from the gateway: profile for authenticated sessions, permissions for all.
// Idempotent at the store level; gateway refinement runs on every call.
func (a *Auth) Initialize(ctx context.Context) error {
	a.store.Initialize()

	if snap := a.store.Snapshot(); snap.IsAuthenticated() {
		user, err := a.gw.Profile(ctx)
		switch {
		case err == nil:
			a.store.SetUser(user)
		case errors.Is(err, errs.ErrUnauthorized):
			// Stored tokens are stale; downgrade is the recovery path.
			if err := a.store.ClearAuth(); err != nil {
				return err
			}
		default:
			// Transient failure keeps the session; profile arrives later.
			a.log.Warn("profile fetch failed", zap.Error(err))
		}
	}

	perms, err := a.gw.Permissions(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) && a.store.Snapshot().IsAuthenticated() {
			return a.store.ClearAuth()
		}
		if !a.store.Snapshot().IsAuthenticated() {
			a.store.SetGuestMode()
		}
		a.log.Warn("permissions fetch failed, using current set", zap.Error(err))
		return nil
	}
	return a.store.SetPermissions(perms)
}

// Login authenticates with the gateway and installs the session. Validation
// failures surface before any network call and leave the session untouched.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	if err := validateLogin(email, password); err != nil {
		return err
	}
	user, tokens, err := a.gw.Login(ctx, email, password)
	if err != nil {
		a.store.SetError(userMessage(err))
		return err
	}
	if err := a.store.SetCredentials(user, tokens); err != nil {
		return err
	}
	a.fetchPermissions(ctx)
	return nil
}

// RegisterInput carries the registration form, including the confirmation
// field checked before the network call.
type RegisterInput struct {
	Email           string `validate:"required,email"`
	Name            string `validate:"required,min=2"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// Register creates an account and installs the resulting session.
func (a *Auth) Register(ctx context.Context, in RegisterInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	user, tokens, err := a.gw.Register(ctx, gateway.RegisterInput{
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
	})
	if err != nil {
		a.store.SetError(userMessage(err))
		return err
	}
	if err := a.store.SetCredentials(user, tokens); err != nil {
		return err
	}
	a.fetchPermissions(ctx)
	return nil
}

// Logout invalidates the server session best-effort, clears local state, and
// immediately resolves the logged-out transient into guest mode.
func (a *Auth) Logout(ctx context.Context) error {
	if err := a.gw.Logout(ctx); err != nil {
		a.log.Warn("gateway logout failed", zap.Error(err))
	}
	if err := a.store.Logout(); err != nil {
		return err
	}
	a.store.SetGuestMode()
	return nil
}

// ChangePassword rotates the account password. Failures are local to the
// operation and never force a mode transition.
func (a *Auth) ChangePassword(ctx context.Context, current, next, confirm string) error {
	in := changePasswordInput{Current: current, New: next, Confirm: confirm}
	if err := validateStruct(in); err != nil {
		return err
	}
	return a.gw.ChangePassword(ctx, current, next)
}

// DeleteAccount permanently removes the account after the confirmation
// phrase check. Success clears all persisted client state and ends in guest
// mode; failure leaves the session untouched.
func (a *Auth) DeleteAccount(ctx context.Context, password, confirmText string) error {
	if password == "" {
		return errs.ErrValidation
	}
	if confirmText != DeleteConfirmPhrase {
		return errConfirmPhrase
	}
	if err := a.gw.DeleteAccount(ctx, password, confirmText); err != nil {
		return err
	}
	if err := a.store.Logout(); err != nil {
		return err
	}
	if err := storage.Clear(a.adapter); err != nil {
		a.log.Warn("local state clear failed", zap.Error(err))
	}
	a.store.SetGuestMode()
	return nil
}

// RefreshPermissions re-fetches the capability set for the current session.
// An unauthorized response while authenticated means the session is dead and
// forces the expired-session downgrade.
func (a *Auth) RefreshPermissions(ctx context.Context) error {
	perms, err := a.gw.Permissions(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) && a.store.Snapshot().IsAuthenticated() {
			_ = a.store.ClearAuth()
			return err
		}
		if !a.store.Snapshot().IsAuthenticated() {
			a.store.SetGuestMode()
		}
		return err
	}
	return a.store.SetPermissions(perms)
}

// fetchPermissions is the best-effort variant used right after login and
// register; the guest defaults stand until the fetch resolves. Unauthorized
// still downgrades: the freshly installed tokens were already rejected.
func (a *Auth) fetchPermissions(ctx context.Context) {
	perms, err := a.gw.Permissions(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) && a.store.Snapshot().IsAuthenticated() {
			a.log.Warn("permissions fetch unauthorized, downgrading to guest", zap.Error(err))
			_ = a.store.ClearAuth()
			return
		}
		a.log.Warn("permissions fetch failed, using guest defaults", zap.Error(err))
		return
	}
	if err := a.store.SetPermissions(perms); err != nil {
		a.log.Warn("permissions not applied", zap.Error(err))
	}
}

// userMessage reduces a gateway error to the message surfaced in session
// state.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, errs.ErrAlreadyExists):
		return "An account with this email already exists."
	case errors.Is(err, errs.ErrNetwork):
		return "Could not reach the server. Check your connection."
	default:
		return err.Error()
	}
}
