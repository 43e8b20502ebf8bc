package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/linkcut/linkcut-client/internal/model"
)

// RefreshFunc exchanges the current refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (model.TokenPair, error)

// Scheduler keeps the access token valid while the session is authenticated.
// It subscribes to the store and owns at most one timer goroutine whose
// lifetime is bounded by the authenticated session and by Close. One refresh
// attempt per tick: success installs the new pair, any failure downgrades the
// session to guest and stops the scheduler until a new authenticated session
// begins.
type Scheduler struct {
	store   *Store
	refresh RefreshFunc
	ttl     time.Duration
	margin  time.Duration
	log     *zap.Logger

	mu          sync.Mutex
	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}
	running     bool
	closed      bool
}

// NewScheduler wires a scheduler to the store. ttl is the assumed access
// token lifetime when the token carries no parseable expiry; margin is the
// head start before expiry. The scheduler starts immediately if the session
// is already authenticated.
func NewScheduler(store *Store, refresh RefreshFunc, ttl, margin time.Duration, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		store:   store,
		refresh: refresh,
		ttl:     ttl,
		margin:  margin,
		log:     log,
	}
	s.unsubscribe = store.Subscribe(s.onTransition)
	s.onTransition(store.Snapshot())
	return s
}

// Close tears the scheduler down deterministically: no refresh call is
// issued after Close returns.
func (s *Scheduler) Close() {
	s.unsubscribe()
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// onTransition starts or stops the timer loop to track the session mode.
// It never blocks: stopping only signals cancellation, so it is safe to call
// from observer context, including from the loop's own downgrade.
func (s *Scheduler) onTransition(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if snap.IsAuthenticated() && snap.Tokens != nil && snap.Tokens.RefreshToken != "" {
		if s.running {
			return
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		s.cancel = cancel
		s.done = done
		s.running = true
		go s.loop(ctx, done)
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
		// The session may have become authenticated again while this loop
		// was winding down; re-evaluate so a live session is never left
		// without a scheduler.
		s.onTransition(s.store.Snapshot())
	}()

	for {
		snap := s.store.Snapshot()
		if !refreshable(snap) {
			return
		}

		timer := time.NewTimer(periodFor(*snap.Tokens, s.ttl, s.margin))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// Re-check after the wait: the session may have been torn down.
		snap = s.store.Snapshot()
		if !refreshable(snap) {
			return
		}

		pair, err := s.refresh(ctx, snap.Tokens.RefreshToken)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("token refresh failed, downgrading to guest", zap.Error(err))
			_ = s.store.ClearAuth()
			return
		}
		if err := s.store.SetTokens(pair); err != nil {
			s.log.Warn("refreshed tokens not persisted", zap.Error(err))
		}
	}
}

func refreshable(snap Snapshot) bool {
	return snap.IsAuthenticated() && snap.Tokens != nil && snap.Tokens.RefreshToken != ""
}

// periodFor sizes the wait before the next refresh. The access token's exp
// claim wins when it parses; ExpiresIn and the configured TTL are fallbacks.
// The lower bound guards against hot-looping on malformed input.
func periodFor(t model.TokenPair, ttl, margin time.Duration) time.Duration {
	d := ttl
	if t.ExpiresIn > 0 {
		d = time.Duration(t.ExpiresIn) * time.Second
	}
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(t.AccessToken, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		d = time.Until(claims.ExpiresAt.Time)
	}
	d -= margin
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}
