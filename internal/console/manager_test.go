package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/platform/pagination"
	"github.com/janisto/enseada-console/internal/resource"
	"github.com/janisto/enseada-console/internal/service/memory"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *memory.Backend) {
	t.Helper()
	b := memory.NewBackend()
	b.Seed(fixedNow)
	src := Source{
		Users:          listpage.Static[resource.User](b.Users),
		Roles:          listpage.Static[resource.Role](b.Roles),
		Tokens:         listpage.Static[resource.PersonalAccessToken](b.Tokens),
		ContainerRepos: listpage.Static[resource.ContainerRepo](b.ContainerRepos),
		MavenArtifacts: listpage.Static[resource.MavenArtifact](b.MavenArtifacts),
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewManager(src, opts...), b
}

func TestKindsFollowSource(t *testing.T) {
	m, _ := newTestManager(t)
	if got := len(m.Kinds()); got != 5 {
		t.Fatalf("expected 5 kinds, got %d", got)
	}

	partial := NewManager(Source{Roles: listpage.Static[resource.Role](memory.NewStore(resource.Roles.MapID))})
	kinds := partial.Kinds()
	if len(kinds) != 1 || kinds[0].Key != "roles" {
		t.Fatalf("expected only roles, got %+v", kinds)
	}
	if _, err := partial.Open(context.Background(), "users"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestOpenMountsFirstPage(t *testing.T) {
	m, _ := newTestManager(t)

	v, err := m.Open(context.Background(), "users")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if v.ID() == "" || v.Kind() != "users" {
		t.Fatalf("unexpected view identity %q %q", v.ID(), v.Kind())
	}

	snap := v.Snapshot()
	if snap.Total != 61 || snap.Count != 25 || snap.Offset != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Page != 1 || snap.Pages != 3 || snap.Loading {
		t.Fatalf("unexpected paging page=%d pages=%d loading=%v", snap.Page, snap.Pages, snap.Loading)
	}
	if snap.Kind.Label != "user" {
		t.Fatalf("unexpected kind %+v", snap.Kind)
	}
	if len(v.DrainEvents()) != 0 {
		t.Fatal("expected no events after a successful mount")
	}
}

func TestOpenUnknownKind(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Open(context.Background(), "npm"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestOpenReportsMountFailureAsEvent(t *testing.T) {
	boom := errors.New("registry unavailable")
	m := NewManager(Source{
		Roles: func(context.Context) (listpage.Service[resource.Role], error) { return nil, boom },
	}, WithClock(func() time.Time { return fixedNow }))

	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	events := v.DrainEvents()
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected one error event, got %+v", events)
	}
	if !strings.Contains(events[0].Message, "registry unavailable") || !events[0].At.Equal(fixedNow) {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Severity != listpage.SeverityDanger || events[0].Placement != listpage.PlacementTopRight {
		t.Fatalf("expected danger at top-right, got %+v", events[0])
	}
	if len(v.DrainEvents()) != 0 {
		t.Fatal("expected drained feed to be empty")
	}
}

func TestGetAndClose(t *testing.T) {
	m, _ := newTestManager(t)
	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := m.Get(v.ID())
	if err != nil || got.ID() != v.ID() {
		t.Fatalf("Get: %v", err)
	}
	if err := m.Close(context.Background(), v.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Get(v.ID()); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound, got %v", err)
	}
	if err := m.Close(context.Background(), v.ID()); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound on second close, got %v", err)
	}
}

func TestMaxViews(t *testing.T) {
	m, _ := newTestManager(t, WithMaxViews(1))
	if _, err := m.Open(context.Background(), "roles"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.Open(context.Background(), "roles"); !errors.Is(err, ErrTooManyViews) {
		t.Fatalf("expected ErrTooManyViews, got %v", err)
	}
}

type slowRoles struct {
	*memory.Store[resource.Role]
	delay time.Duration
}

func (s slowRoles) List(ctx context.Context, q pagination.Query) (pagination.Page[resource.Role], error) {
	time.Sleep(s.delay)
	return s.Store.List(ctx, q)
}

func TestMaxViewsHoldsUnderConcurrentOpen(t *testing.T) {
	store := memory.NewStore(resource.Roles.MapID, resource.Role{Name: "admin"})
	m := NewManager(Source{
		Roles: listpage.Static[resource.Role](slowRoles{Store: store, delay: 50 * time.Millisecond}),
	}, WithMaxViews(1))

	const callers = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		opened   int
		rejected int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Open(context.Background(), "roles")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				opened++
			case errors.Is(err, ErrTooManyViews):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if opened != 1 || rejected != callers-1 {
		t.Fatalf("expected 1 opened and %d rejected, got %d and %d", callers-1, opened, rejected)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 open view, got %d", m.Len())
	}
}

func TestMaxViewsReleasesSlotOnClose(t *testing.T) {
	m, _ := newTestManager(t, WithMaxViews(1))
	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := m.Close(context.Background(), v.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Open(context.Background(), "roles"); err != nil {
		t.Fatalf("expected slot to be free after close, got %v", err)
	}
}

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestIdleViewsAreEvicted(t *testing.T) {
	clock := &testClock{now: fixedNow}
	m, _ := newTestManager(t, WithClock(clock.Now), WithIdleTimeout(10*time.Minute), WithMaxViews(2))

	stale, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	clock.Advance(6 * time.Minute)
	active, err := m.Open(context.Background(), "users")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Reading a view keeps it alive.
	clock.Advance(6 * time.Minute)
	if _, err := m.Get(active.ID()); err != nil {
		t.Fatalf("Get active: %v", err)
	}
	if _, err := m.Get(stale.ID()); !errors.Is(err, ErrViewNotFound) {
		t.Fatalf("expected idle view to be gone, got %v", err)
	}

	clock.Advance(6 * time.Minute)
	if n := m.EvictIdle(context.Background()); n != 0 {
		t.Fatalf("expected nothing to evict, evicted %d", n)
	}
	clock.Advance(5 * time.Minute)
	if n := m.EvictIdle(context.Background()); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if m.Len() != 0 {
		t.Fatalf("expected no views left, got %d", m.Len())
	}
}

func TestOpenEvictsIdleViewsBeforeCapCheck(t *testing.T) {
	clock := &testClock{now: fixedNow}
	m, _ := newTestManager(t, WithClock(clock.Now), WithIdleTimeout(time.Minute), WithMaxViews(1))

	if _, err := m.Open(context.Background(), "roles"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := m.Open(context.Background(), "roles"); !errors.Is(err, ErrTooManyViews) {
		t.Fatalf("expected ErrTooManyViews, got %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := m.Open(context.Background(), "roles"); err != nil {
		t.Fatalf("expected abandoned view to free its slot, got %v", err)
	}
}

func TestNoIdleTimeoutKeepsViews(t *testing.T) {
	clock := &testClock{now: fixedNow}
	m, _ := newTestManager(t, WithClock(clock.Now))
	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	clock.Advance(1000 * time.Hour)
	if m.EvictIdle(context.Background()) != 0 {
		t.Fatal("expected no eviction without an idle timeout")
	}
	if _, err := m.Get(v.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestRunEvictorStopsWithContext(t *testing.T) {
	clock := &testClock{now: fixedNow}
	m, _ := newTestManager(t, WithClock(clock.Now), WithIdleTimeout(time.Minute))
	if _, err := m.Open(context.Background(), "roles"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunEvictor(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for m.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for eviction")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evictor did not stop")
	}
}

func TestChangePage(t *testing.T) {
	m, _ := newTestManager(t, WithPageSize(10))
	v, err := m.Open(context.Background(), "users")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	v.ChangePage(context.Background(), 7)
	snap := v.Snapshot()
	if snap.Offset != 60 || snap.Count != 1 || snap.Page != 7 || snap.Pages != 7 {
		t.Fatalf("unexpected snapshot offset=%d count=%d page=%d pages=%d", snap.Offset, snap.Count, snap.Page, snap.Pages)
	}
}

func TestSelectAndRemove(t *testing.T) {
	m, b := newTestManager(t)
	v, err := m.Open(context.Background(), "containers")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := v.Select([]string{"acme/api", "acme/web"}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Selected) != 2 || !snap.Items[0].Checked {
		t.Fatalf("unexpected selection %+v", snap.Selected)
	}

	v.Remove(context.Background())

	if b.ContainerRepos.Len() != 4 {
		t.Fatalf("expected 4 repositories left, got %d", b.ContainerRepos.Len())
	}
	events := v.DrainEvents()
	if len(events) != 2 {
		t.Fatalf("expected 2 notifications, got %+v", events)
	}
	if events[0].Type != EventNotification || events[0].Message != "Deleted container repository acme/api" {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Severity != listpage.SeverityWarning || events[0].Duration != 10*time.Second {
		t.Fatalf("unexpected presentation %+v", events[0])
	}
	if snap := v.Snapshot(); snap.Total != 4 {
		t.Fatalf("expected refreshed total 4, got %d", snap.Total)
	}
}

func TestRemoveFailureRaisesSingleError(t *testing.T) {
	m, b := newTestManager(t)
	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v.Select([]string{"admin", "oci:reader"}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := b.Roles.Remove(context.Background(), "admin"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	v.Remove(context.Background())

	events := v.DrainEvents()
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected one error event, got %+v", events)
	}
	if !strings.Contains(events[0].Message, memory.ErrNotFound.Error()) {
		t.Fatalf("unexpected message %q", events[0].Message)
	}
}

func TestSelectUnknownItem(t *testing.T) {
	m, _ := newTestManager(t)
	v, err := m.Open(context.Background(), "roles")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v.Select([]string{"admin"}); err != nil {
		t.Fatalf("Select: %v", err)
	}

	err = v.Select([]string{"admin", "ghost"})
	if !errors.Is(err, ErrUnknownItem) || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected ErrUnknownItem naming ghost, got %v", err)
	}
	if got := v.Snapshot().Selected; len(got) != 1 || got[0] != "admin" {
		t.Fatalf("expected selection unchanged, got %v", got)
	}
}

func TestRefreshPicksUpChanges(t *testing.T) {
	m, b := newTestManager(t)
	v, err := m.Open(context.Background(), "maven")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b.MavenArtifacts.Put(resource.MavenArtifact{GroupID: "io.enseada", ArtifactID: "bom"})

	v.Refresh(context.Background())

	if snap := v.Snapshot(); snap.Total != 5 {
		t.Fatalf("expected total 5, got %d", snap.Total)
	}
}

func TestFeedDropsOldest(t *testing.T) {
	f := newFeed(func() time.Time { return fixedNow })
	for i := range maxBufferedEvents + 5 {
		f.push(Event{Message: string(rune('a' + i%26))})
	}
	events := f.drain()
	if len(events) != maxBufferedEvents {
		t.Fatalf("expected %d events, got %d", maxBufferedEvents, len(events))
	}
	if events[0].Message != string(rune('a'+5)) {
		t.Fatalf("expected oldest events dropped, first is %q", events[0].Message)
	}
}

func TestPageSizeOption(t *testing.T) {
	m, _ := newTestManager(t, WithPageSize(pagination.MaxLimit+1))
	v, err := m.Open(context.Background(), "users")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if v.Snapshot().Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %d", v.Snapshot().Limit)
	}
}
