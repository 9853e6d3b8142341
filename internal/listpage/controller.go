package listpage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	applog "github.com/janisto/enseada-console/internal/platform/logging"
	"github.com/janisto/enseada-console/internal/platform/pagination"
)

const tracerName = "github.com/janisto/enseada-console/internal/listpage"

// ErrInvalidConfig is returned by New when a required parameter is missing.
var ErrInvalidConfig = errors.New("invalid list page config")

// Config holds the parameters bound once when a controller is created.
type Config[T any] struct {
	// Name labels the resource in user-facing messages, e.g. "user".
	Name string
	// Service resolves the backend on every call.
	Service Accessor[T]
	// MapID extracts the identifier used for selection, deletion and messages.
	MapID IDFunc[T]
}

// Option customizes a Controller.
type Option[T any] func(*Controller[T])

// WithLimit sets the page size. Values outside [1, pagination.MaxLimit] are ignored.
func WithLimit[T any](limit int) Option[T] {
	return func(c *Controller[T]) {
		if limit > 0 && limit <= pagination.MaxLimit {
			c.limit = limit
		}
	}
}

// WithNotifier sets where deletion notices are delivered.
func WithNotifier[T any](n Notifier) Option[T] {
	return func(c *Controller[T]) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithErrorHandler sets the receiver of "error" events.
func WithErrorHandler[T any](h ErrorHandler) Option[T] {
	return func(c *Controller[T]) {
		if h != nil {
			c.onError = h
		}
	}
}

// WithLogger sets the logger used for the controller's operations. Without it the
// logger on the operation's context is used.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *Controller[T]) {
		if l != nil {
			c.logger = l.With(zap.String("resource", c.name))
		}
	}
}

// State is a snapshot of the controller-owned state.
type State[T any] struct {
	Limit   int
	Loading bool
	Checked []T
	Page    pagination.Page[T]
}

// Controller owns the pagination, loading and selection state of one list screen.
//
// Page behaves as a single-writer register: every fetch takes a sequence number and
// only the response to the most recently issued fetch is applied. Slower responses
// to older fetches are dropped.
type Controller[T any] struct {
	name     string
	service  Accessor[T]
	mapID    IDFunc[T]
	limit    int
	notifier Notifier
	onError  ErrorHandler
	logger   *zap.Logger
	tracer   trace.Tracer

	mu      sync.Mutex
	seq     uint64
	loading bool
	page    pagination.Page[T]
	checked selection[T]
}

// New creates a controller. It does not fetch: Loading stays false and Page is the zero
// page until the host calls Mount, so hosts that need Loading to read true from the
// start must call Mount right after New, as console.Manager does.
func New[T any](cfg Config[T], opts ...Option[T]) (*Controller[T], error) {
	switch {
	case cfg.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	case cfg.Service == nil:
		return nil, fmt.Errorf("%w: service accessor is required", ErrInvalidConfig)
	case cfg.MapID == nil:
		return nil, fmt.Errorf("%w: id function is required", ErrInvalidConfig)
	}

	c := &Controller[T]{
		name:     cfg.Name,
		service:  cfg.Service,
		mapID:    cfg.MapID,
		limit:    pagination.DefaultLimit,
		notifier: NotifierFunc(logNotifier),
		onError:  logErrorHandler,
		tracer:   otel.Tracer(tracerName),
		page:     pagination.Empty[T](),
		checked:  newSelection[T](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the resource label.
func (c *Controller[T]) Name() string { return c.name }

// Limit returns the page size.
func (c *Controller[T]) Limit() int { return c.limit }

// MapID returns the identifier of item.
func (c *Controller[T]) MapID(item T) string { return c.mapID(item) }

// Mount performs the initial fetch of the first page. Failures go to the error handler.
func (c *Controller[T]) Mount(ctx context.Context) {
	ctx = c.scoped(ctx)
	if err := c.Fetch(ctx, 0); err != nil {
		c.onError(ctx, err)
	}
}

// Fetch loads the page starting at offset and makes it current.
//
// Loading is true while the fetch is the latest one in flight and is always cleared
// when it settles, whether it succeeded or not. The selection is never touched.
func (c *Controller[T]) Fetch(ctx context.Context, offset int) (err error) {
	ctx = c.scoped(ctx)
	ctx, span := c.tracer.Start(ctx, "listpage.Fetch", trace.WithAttributes(
		attribute.String("listpage.resource", c.name),
		attribute.Int("listpage.offset", offset),
		attribute.Int("listpage.limit", c.limit),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	seq := c.begin()
	defer c.settle(seq)

	svc, err := c.service(ctx)
	if err != nil {
		return fmt.Errorf("resolve %s service: %w", c.name, err)
	}
	page, err := svc.List(ctx, pagination.Query{Offset: offset, Limit: c.limit})
	if err != nil {
		return fmt.Errorf("list %s: %w", c.name, err)
	}

	if !c.apply(seq, page) {
		applog.LogDebug(ctx, "discarded stale page",
			zap.String("resource", c.name),
			zap.Int("offset", offset),
		)
	}
	return nil
}

// OnPageChange fetches the 1-based page number from a pagination control.
func (c *Controller[T]) OnPageChange(ctx context.Context, pageNumber int) {
	ctx = c.scoped(ctx)
	if err := c.Fetch(ctx, pagination.PageToOffset(pageNumber, c.limit)); err != nil {
		c.onError(ctx, err)
	}
}

// Remove deletes every selected item, one request per identifier, all in flight at once.
//
// When all deletes succeed, one notice per identifier is sent and the current page is
// fetched again. If any delete or the refresh fails, a single error event is emitted and
// nothing else happens; deletes that already succeeded are not rolled back.
func (c *Controller[T]) Remove(ctx context.Context) {
	ctx = c.scoped(ctx)
	ctx, span := c.tracer.Start(ctx, "listpage.Remove", trace.WithAttributes(
		attribute.String("listpage.resource", c.name),
	))
	defer span.End()

	ids := c.CheckedIDs()
	span.SetAttributes(attribute.Int("listpage.selected", len(ids)))

	if err := c.removeAll(ctx, ids); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.onError(ctx, err)
		return
	}

	for _, id := range ids {
		c.notifier.Notify(ctx, deletedNotice(c.name, id))
	}

	if err := c.Fetch(ctx, c.currentOffset()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.onError(ctx, err)
	}
}

func (c *Controller[T]) removeAll(ctx context.Context, ids []string) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			svc, err := c.service(ctx)
			if err != nil {
				return fmt.Errorf("resolve %s service: %w", c.name, err)
			}
			if err := svc.Remove(ctx, id); err != nil {
				return fmt.Errorf("remove %s %s: %w", c.name, id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Check adds items to the selection. Items whose identifier is already selected
// replace the stored value without changing the selection order.
func (c *Controller[T]) Check(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.checked.add(c.mapID(item), item)
	}
}

// Uncheck removes items from the selection.
func (c *Controller[T]) Uncheck(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.checked.remove(c.mapID(item))
	}
}

// SetChecked replaces the selection with items.
func (c *Controller[T]) SetChecked(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked.clear()
	for _, item := range items {
		c.checked.add(c.mapID(item), item)
	}
}

// ClearChecked empties the selection.
func (c *Controller[T]) ClearChecked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked.clear()
}

// IsChecked reports whether an item with the same identifier is selected.
func (c *Controller[T]) IsChecked(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked.has(c.mapID(item))
}

// Checked returns the selected items in selection order.
func (c *Controller[T]) Checked() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked.values()
}

// CheckedIDs returns the identifiers of the selected items in selection order.
func (c *Controller[T]) CheckedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked.ids()
}

// State returns a snapshot that shares no memory with the controller.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{
		Limit:   c.limit,
		Loading: c.loading,
		Checked: c.checked.values(),
		Page:    c.page.Clone(),
	}
}

func (c *Controller[T]) scoped(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return applog.WithLogger(ctx, c.logger)
}

func (c *Controller[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.loading = true
	return c.seq
}

func (c *Controller[T]) apply(seq uint64, page pagination.Page[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	page.Count = len(page.Items)
	c.page = page
	return true
}

func (c *Controller[T]) settle(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.seq {
		c.loading = false
	}
}

func (c *Controller[T]) currentOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page.Offset
}
