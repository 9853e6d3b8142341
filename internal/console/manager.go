// Package console hosts list screens: it mounts a listpage controller per open view,
// keeps the views addressable by ID and buffers the events they raise.
package console

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/janisto/enseada-console/internal/listpage"
	applog "github.com/janisto/enseada-console/internal/platform/logging"
	"github.com/janisto/enseada-console/internal/platform/pagination"
	"github.com/janisto/enseada-console/internal/resource"
)

// Manager errors
var (
	ErrUnknownKind  = errors.New("unknown resource kind")
	ErrViewNotFound = errors.New("view not found")
	ErrUnknownItem  = errors.New("item not on current page")
	ErrTooManyViews = errors.New("too many open views")
)

// Source provides the backend accessor for each kind. Nil accessors leave the kind out.
type Source struct {
	Users          listpage.Accessor[resource.User]
	Roles          listpage.Accessor[resource.Role]
	Tokens         listpage.Accessor[resource.PersonalAccessToken]
	ContainerRepos listpage.Accessor[resource.ContainerRepo]
	MavenArtifacts listpage.Accessor[resource.MavenArtifact]
}

// opener builds and mounts a view of one kind.
type opener func(ctx context.Context, id string, limit int, f *feed) (View, error)

// Option configures a Manager.
type Option func(*Manager)

// WithPageSize sets the page size of new views.
func WithPageSize(limit int) Option {
	return func(m *Manager) {
		if limit > 0 && limit <= pagination.MaxLimit {
			m.limit = limit
		}
	}
}

// WithMaxViews caps the number of open views. Zero means unlimited.
func WithMaxViews(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxViews = n
		}
	}
}

// WithIdleTimeout evicts views that have not been accessed for d. Zero keeps views
// until they are closed.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.idleTimeout = d
		}
	}
}

// WithClock sets the time source for event timestamps and idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager tracks open views.
type Manager struct {
	limit       int
	maxViews    int
	idleTimeout time.Duration
	now         func() time.Time
	kinds       []resource.Descriptor
	openers     map[string]opener

	mu sync.Mutex
	// pending counts Open calls that hold a slot but are still mounting.
	pending int
	views   map[string]*entry
}

type entry struct {
	view     View
	lastSeen time.Time
}

// NewManager creates a manager serving the kinds src has accessors for.
func NewManager(src Source, opts ...Option) *Manager {
	m := &Manager{
		limit:   pagination.DefaultLimit,
		now:     time.Now,
		openers: make(map[string]opener),
		views:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}

	register(m, resource.Users, src.Users)
	register(m, resource.Roles, src.Roles)
	register(m, resource.Tokens, src.Tokens)
	register(m, resource.ContainerRepos, src.ContainerRepos)
	register(m, resource.MavenArtifacts, src.MavenArtifacts)
	return m
}

func register[T any](m *Manager, kind resource.Kind[T], acc listpage.Accessor[T]) {
	if acc == nil {
		return
	}
	m.kinds = append(m.kinds, kind.Describe())
	m.openers[kind.Key] = func(ctx context.Context, id string, limit int, f *feed) (View, error) {
		v, err := newView(id, kind, acc, limit, f)
		if err != nil {
			return nil, err
		}
		v.mount(ctx)
		return v, nil
	}
}

// Kinds lists the kinds views can be opened for.
func (m *Manager) Kinds() []resource.Descriptor {
	out := make([]resource.Descriptor, len(m.kinds))
	copy(out, m.kinds)
	return out
}

// Open creates a view of kind and performs its initial fetch. A failed fetch does not
// fail Open; it is reported through the view's events. The view's slot is reserved
// before mounting so concurrent calls cannot exceed the view cap.
func (m *Manager) Open(ctx context.Context, kind string) (View, error) {
	open, ok := m.openers[kind]
	if !ok {
		return nil, ErrUnknownKind
	}

	m.mu.Lock()
	m.evictIdleLocked(ctx)
	if m.maxViews > 0 && len(m.views)+m.pending >= m.maxViews {
		m.mu.Unlock()
		return nil, ErrTooManyViews
	}
	m.pending++
	m.mu.Unlock()

	id := uuid.NewString()
	v, err := open(ctx, id, m.limit, newFeed(m.now))

	m.mu.Lock()
	m.pending--
	if err == nil {
		m.views[id] = &entry{view: v, lastSeen: m.now()}
	}
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	applog.LogInfo(ctx, "view opened", zap.String("view_id", id), zap.String("kind", kind))
	return v, nil
}

// Get returns the open view with id and marks it as accessed. Views idle for longer
// than the idle timeout are not found.
func (m *Manager) Get(id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	now := m.now()
	if m.expired(e, now) {
		delete(m.views, id)
		return nil, ErrViewNotFound
	}
	e.lastSeen = now
	return e.view, nil
}

// Close discards the view with id.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.views[id]; !ok {
		return ErrViewNotFound
	}
	delete(m.views, id)
	applog.LogInfo(ctx, "view closed", zap.String("view_id", id))
	return nil
}

// EvictIdle discards every view idle for longer than the idle timeout and returns how
// many were removed.
func (m *Manager) EvictIdle(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictIdleLocked(ctx)
}

// RunEvictor calls EvictIdle every interval until ctx is done. It returns at once when
// no idle timeout is set.
func (m *Manager) RunEvictor(ctx context.Context, interval time.Duration) {
	if m.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(ctx)
		}
	}
}

func (m *Manager) evictIdleLocked(ctx context.Context) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	now := m.now()
	evicted := 0
	for id, e := range m.views {
		if m.expired(e, now) {
			delete(m.views, id)
			evicted++
		}
	}
	if evicted > 0 {
		applog.LogInfo(ctx, "idle views evicted", zap.Int("count", evicted))
	}
	return evicted
}

func (m *Manager) expired(e *entry, now time.Time) bool {
	return m.idleTimeout > 0 && now.Sub(e.lastSeen) > m.idleTimeout
}

// Len returns the number of open views.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.views)
}
