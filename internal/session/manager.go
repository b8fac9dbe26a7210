package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anishff444/nepwears/internal/auth"
	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/internal/store"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

// State is a live session: the persisted Session plus its cart store.
type State struct {
	Cart *store.CartStore

	mu      sync.RWMutex
	session Session

	// guarded by Manager.mu
	lastSeen time.Time
}

// ID returns the session id.
func (s *State) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.ID
}

// Token returns the bearer token, empty when logged out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// User returns the logged-in user, nil when logged out.
func (s *State) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

// Authenticated reports whether the session carries a token.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// ExpiresAt returns when the persisted session expires.
func (s *State) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.ExpiresAt
}

func (s *State) persisted() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Manager hands out live session states and persists their auth part.
type Manager struct {
	repo    Repository
	cartAPI store.CartAPI
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	states map[string]*State

	stopOnce sync.Once
	stop     chan struct{}
}

// NewManager creates a manager whose sessions last ttl.
func NewManager(repo Repository, cartAPI store.CartAPI, ttl time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		repo:    repo,
		cartAPI: cartAPI,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		states:  make(map[string]*State),
		stop:    make(chan struct{}),
	}
}

// Load returns the state for id, creating a fresh session when id is empty,
// unknown or expired. A session whose token has expired is logged out.
func (m *Manager) Load(ctx context.Context, id string) (*State, error) {
	if id != "" {
		st, err := m.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if st != nil {
			if err := m.dropExpiredToken(ctx, st); err != nil {
				return nil, err
			}
			return st, nil
		}
	}
	return m.create(ctx)
}

// lookup returns nil, nil when the session does not exist.
func (m *Manager) lookup(ctx context.Context, id string) (*State, error) {
	now := m.now()

	m.mu.Lock()
	st, ok := m.states[id]
	if ok {
		st.lastSeen = now
	}
	m.mu.Unlock()
	if ok {
		if now.Before(st.ExpiresAt()) {
			return st, nil
		}
		m.forget(id)
	}

	sess, err := m.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	st = &State{
		Cart:     store.NewCartStore(m.cartAPI, m.logger),
		session:  *sess,
		lastSeen: now,
	}

	m.mu.Lock()
	if existing, ok := m.states[id]; ok {
		st = existing
	} else {
		m.states[id] = st
	}
	m.mu.Unlock()
	return st, nil
}

func (m *Manager) create(ctx context.Context) (*State, error) {
	now := m.now()
	st := &State{
		Cart: store.NewCartStore(m.cartAPI, m.logger),
		session: Session{
			ID:        uuid.NewString(),
			CreatedAt: now,
			ExpiresAt: now.Add(m.ttl),
		},
		lastSeen: now,
	}

	sess := st.persisted()
	if err := m.repo.Save(ctx, &sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.states[sess.ID] = st
	m.mu.Unlock()

	m.logger.DebugContext(ctx, "session created", slog.String("session_id", sess.ID))
	return st, nil
}

func (m *Manager) dropExpiredToken(ctx context.Context, st *State) error {
	token := st.Token()
	if token == "" || !auth.Expired(token, m.now()) {
		return nil
	}
	m.logger.InfoContext(ctx, "session token expired, logging out", slog.String("session_id", st.ID()))
	return m.Logout(ctx, st)
}

// Authenticate stores token and user on st.
func (m *Manager) Authenticate(ctx context.Context, st *State, token string, user *domain.User) error {
	st.mu.Lock()
	st.session.Token = token
	st.session.User = user
	sess := st.session
	st.mu.Unlock()

	if err := m.repo.Save(ctx, &sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetUser replaces the cached profile of a logged-in session.
func (m *Manager) SetUser(ctx context.Context, st *State, user *domain.User) error {
	return m.Authenticate(ctx, st, st.Token(), user)
}

// Logout clears the local cart and forgets the token. The server cart is
// left alone.
func (m *Manager) Logout(ctx context.Context, st *State) error {
	st.Cart.Clear()
	return m.Authenticate(ctx, st, "", nil)
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
}

// Len returns the number of live states.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// EvictIdle drops live states not seen for the session TTL or past their
// expiry. Persisted sessions are handled by PurgeExpired.
func (m *Manager) EvictIdle() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, st := range m.states {
		if now.Sub(st.lastSeen) > m.ttl || !now.Before(st.ExpiresAt()) {
			delete(m.states, id)
			n++
		}
	}
	return n
}

// PurgeExpired drops expired persisted sessions when the repository keeps
// them around, and returns how many went.
func (m *Manager) PurgeExpired() int {
	p, ok := m.repo.(Purger)
	if !ok {
		return 0
	}
	return p.Purge()
}

// StartEviction runs EvictIdle and PurgeExpired every interval until Close.
func (m *Manager) StartEviction(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.EvictIdle(); n > 0 {
					m.logger.Debug("evicted idle sessions", slog.Int("count", n))
				}
				if n := m.PurgeExpired(); n > 0 {
					m.logger.Debug("purged expired sessions", slog.Int("count", n))
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Close stops the eviction loop.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

type ctxKey struct{}

// NewContext returns ctx carrying st.
func NewContext(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the state stored by NewContext, or nil.
func FromContext(ctx context.Context) *State {
	st, _ := ctx.Value(ctxKey{}).(*State)
	return st
}
