// Package session implements the client session state machine, the
// background token refresh scheduler, and the access gate.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/errs"
	"github.com/linkcut/linkcut-client/internal/model"
	"github.com/linkcut/linkcut-client/internal/permissions"
	"github.com/linkcut/linkcut-client/internal/storage"
)

// SessionExpiredMessage is surfaced when a 401-class response forces a
// downgrade to guest.
const SessionExpiredMessage = "Session expired. Please login again."

// Snapshot is an immutable copy of the session state handed to readers and
// observers. Pointer fields are deep-copied on every read.
type Snapshot struct {
	Initialized bool
	Mode        model.Mode
	User        *model.User
	Tokens      *model.TokenPair
	Permissions *model.PermissionSet
	Err         string
}

// IsAuthenticated reports whether the session holds a token pair.
func (s Snapshot) IsAuthenticated() bool { return s.Mode == model.ModeAuthenticated }

// IsGuest reports whether the session is a resolved guest session.
func (s Snapshot) IsGuest() bool { return s.Mode == model.ModeGuest }

func (s Snapshot) clone() Snapshot {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	if s.Tokens != nil {
		t := *s.Tokens
		c.Tokens = &t
	}
	if s.Permissions != nil {
		p := *s.Permissions
		c.Permissions = &p
	}
	return c
}

// Observer is invoked after each committed transition with the new snapshot.
// Observers run outside the store lock and may call back into the store.
type Observer func(Snapshot)

// Store is the single writer of session truth. Every transition is a
// serialized, atomic mutation; persisted token keys mirror the in-memory
// token pair on every transition that touches it.
type Store struct {
	mu      sync.Mutex
	state   Snapshot
	adapter storage.Adapter
	log     *zap.Logger

	nextSub int
	subs    map[int]Observer
}

// New creates an uninitialized store backed by the given adapter.
func New(adapter storage.Adapter, log *zap.Logger) *Store {
	return &Store{
		state:   Snapshot{Mode: model.ModeUninitialized},
		adapter: adapter,
		log:     log,
		subs:    map[int]Observer{},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers an observer and returns its unsubscribe function.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// transition applies fn under the lock, then notifies observers with the
// committed snapshot from outside the lock.
func (s *Store) transition(op string, fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	obs := make([]Observer, 0, len(s.subs))
	for _, o := range s.subs {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	s.log.Debug("session transition",
		zap.String("op", op),
		zap.Stringer("mode", snap.Mode),
	)
	for _, o := range obs {
		o(snap)
	}
}

// Initialize resolves persisted credentials into the first defined state:
// authenticated when both token keys are present, guest otherwise. Calling it
// again is a no-op. The error field is left untouched.
func (s *Store) Initialize() {
	s.mu.Lock()
	if s.state.Initialized {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	pair, ok := storage.LoadCredentials(s.adapter)
	s.transition("initialize", func(st *Snapshot) {
		if st.Initialized {
			return
		}
		st.Initialized = true
		defaults := permissions.GuestDefaults()
		st.Permissions = &defaults
		if ok {
			st.Mode = model.ModeAuthenticated
			st.Tokens = &pair
		} else {
			st.Mode = model.ModeGuest
		}
	})
}

// SetCredentials installs a full authenticated session and persists the pair.
func (s *Store) SetCredentials(user model.User, tokens model.TokenPair) error {
	if err := storage.SaveCredentials(s.adapter, tokens); err != nil {
		s.log.Warn("credential persistence failed", zap.Error(err))
		return err
	}
	s.transition("set_credentials", func(st *Snapshot) {
		st.Mode = model.ModeAuthenticated
		st.User = &user
		st.Tokens = &tokens
		st.Err = ""
	})
	return nil
}

// SetTokens overwrites the token pair, used by refresh success. The in-memory
// pair is replaced even when persistence fails: a rotated refresh token is
// single-use, and dropping it would orphan the live session. The persistence
// error is still returned.
func (s *Store) SetTokens(tokens model.TokenPair) error {
	err := storage.SaveCredentials(s.adapter, tokens)
	if err != nil {
		s.log.Warn("credential persistence failed", zap.Error(err))
	}
	s.transition("set_tokens", func(st *Snapshot) {
		st.Mode = model.ModeAuthenticated
		st.Tokens = &tokens
		st.Err = ""
	})
	return err
}

// SetUser overwrites the profile without touching tokens.
func (s *Store) SetUser(user model.User) {
	s.transition("set_user", func(st *Snapshot) {
		st.Mode = model.ModeAuthenticated
		st.User = &user
	})
}

// SetPermissions overwrites the capability set. The session must be
// initialized first.
func (s *Store) SetPermissions(set model.PermissionSet) error {
	s.mu.Lock()
	initialized := s.state.Initialized
	s.mu.Unlock()
	if !initialized {
		return errs.ErrNotInitialized
	}
	s.transition("set_permissions", func(st *Snapshot) {
		st.Permissions = &set
	})
	return nil
}

// SetGuestMode resolves the session to a defined guest state with default
// permissions. Storage is not touched.
func (s *Store) SetGuestMode() {
	s.transition("set_guest_mode", func(st *Snapshot) {
		defaults := permissions.GuestDefaults()
		st.Mode = model.ModeGuest
		st.User = nil
		st.Tokens = nil
		st.Permissions = &defaults
		st.Err = ""
	})
}

// Logout clears the session and removes persisted tokens, leaving the
// documented logged-out transient: neither authenticated nor guest until the
// caller re-derives guest state via SetGuestMode or Initialize.
func (s *Store) Logout() error {
	if err := storage.ClearCredentials(s.adapter); err != nil {
		s.log.Warn("credential removal failed", zap.Error(err))
		return err
	}
	s.transition("logout", func(st *Snapshot) {
		st.Mode = model.ModeLoggedOut
		st.User = nil
		st.Tokens = nil
		st.Permissions = nil
	})
	return nil
}

// ClearAuth is the forced downgrade after an expired or rejected session:
// guest mode with default permissions, tokens removed, and the
// session-expired message surfaced. Unlike Logout it ends in a defined state.
func (s *Store) ClearAuth() error {
	err := storage.ClearCredentials(s.adapter)
	if err != nil {
		s.log.Warn("credential removal failed", zap.Error(err))
	}
	s.transition("clear_auth", func(st *Snapshot) {
		defaults := permissions.GuestDefaults()
		st.Mode = model.ModeGuest
		st.User = nil
		st.Tokens = nil
		st.Permissions = &defaults
		st.Err = SessionExpiredMessage
	})
	return err
}

// SetError records the last user-facing failure message.
func (s *Store) SetError(msg string) {
	s.transition("set_error", func(st *Snapshot) {
		st.Err = msg
	})
}

// ClearError clears the last failure message.
func (s *Store) ClearError() {
	s.transition("clear_error", func(st *Snapshot) {
		st.Err = ""
	})
}
