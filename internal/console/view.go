package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/platform/pagination"
	"github.com/janisto/enseada-console/internal/resource"
)

// Item is one row of a list screen.
type Item struct {
	ID      string
	Checked bool
	Data    any
}

// Snapshot is the type-erased state of a view.
type Snapshot struct {
	ID       string
	Kind     resource.Descriptor
	Limit    int
	Loading  bool
	Count    int
	Total    int
	Offset   int
	Page     int
	Pages    int
	Items    []Item
	Selected []string
}

// View is a mounted list screen.
type View interface {
	ID() string
	Kind() string
	Snapshot() Snapshot
	// ChangePage shows the 1-based page number.
	ChangePage(ctx context.Context, page int)
	// Select replaces the selection with the items on the current page that have ids.
	Select(ids []string) error
	// Remove deletes the selected items.
	Remove(ctx context.Context)
	// Refresh fetches the current page again.
	Refresh(ctx context.Context)
	// DrainEvents returns and clears the buffered events.
	DrainEvents() []Event
}

type view[T any] struct {
	id   string
	kind resource.Kind[T]
	ctrl *listpage.Controller[T]
	feed *feed
}

func newView[T any](id string, kind resource.Kind[T], acc listpage.Accessor[T], limit int, f *feed) (*view[T], error) {
	ctrl, err := listpage.New(
		listpage.Config[T]{Name: kind.Label, Service: acc, MapID: kind.MapID},
		listpage.WithLimit[T](limit),
		listpage.WithNotifier[T](f),
		listpage.WithErrorHandler[T](f.onError),
	)
	if err != nil {
		return nil, err
	}
	return &view[T]{id: id, kind: kind, ctrl: ctrl, feed: f}, nil
}

func (v *view[T]) ID() string   { return v.id }
func (v *view[T]) Kind() string { return v.kind.Key }

func (v *view[T]) Snapshot() Snapshot {
	st := v.ctrl.State()

	selected := make([]string, len(st.Checked))
	checked := make(map[string]bool, len(st.Checked))
	for i, item := range st.Checked {
		id := v.kind.MapID(item)
		selected[i] = id
		checked[id] = true
	}

	items := make([]Item, len(st.Page.Items))
	for i, item := range st.Page.Items {
		id := v.kind.MapID(item)
		items[i] = Item{ID: id, Checked: checked[id], Data: item}
	}

	return Snapshot{
		ID:       v.id,
		Kind:     v.kind.Describe(),
		Limit:    st.Limit,
		Loading:  st.Loading,
		Count:    st.Page.Count,
		Total:    st.Page.Total,
		Offset:   st.Page.Offset,
		Page:     pagination.OffsetToPage(st.Page.Offset, st.Limit),
		Pages:    pagination.PageCount(st.Page.Total, st.Limit),
		Items:    items,
		Selected: selected,
	}
}

func (v *view[T]) ChangePage(ctx context.Context, page int) {
	v.ctrl.OnPageChange(ctx, page)
}

func (v *view[T]) Select(ids []string) error {
	onPage := make(map[string]T)
	for _, item := range v.ctrl.State().Page.Items {
		onPage[v.kind.MapID(item)] = item
	}

	items := make([]T, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		item, ok := onPage[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		items = append(items, item)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, strings.Join(unknown, ", "))
	}

	v.ctrl.SetChecked(items)
	return nil
}

func (v *view[T]) Remove(ctx context.Context) {
	v.ctrl.Remove(ctx)
}

func (v *view[T]) Refresh(ctx context.Context) {
	if err := v.ctrl.Fetch(ctx, v.ctrl.State().Page.Offset); err != nil {
		v.feed.onError(ctx, err)
	}
}

func (v *view[T]) DrainEvents() []Event {
	return v.feed.drain()
}

func (v *view[T]) mount(ctx context.Context) {
	v.ctrl.Mount(ctx)
}
