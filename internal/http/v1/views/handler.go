package views

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/enseada-console/internal/console"
	"github.com/janisto/enseada-console/internal/platform/timeutil"
)

const basePath = "/v1/views"

// Manager is the view host the handlers drive.
type Manager interface {
	Open(ctx context.Context, kind string) (console.View, error)
	Get(id string) (console.View, error)
	Close(ctx context.Context, id string) error
}

// Register registers list view endpoints.
func Register(api huma.API, mgr Manager) {
	huma.Register(api, huma.Operation{
		OperationID:   "open-view",
		Method:        http.MethodPost,
		Path:          basePath,
		Summary:       "Open a list view",
		Description:   "Opens a list screen for a resource kind and loads its first page.",
		Tags:          []string{"Views"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *ViewOpenInput) (*ViewOpenOutput, error) {
		v, err := mgr.Open(ctx, input.Body.Kind)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ViewOpenOutput{
			Location: basePath + "/" + v.ID(),
			Body:     toHTTPView(v),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-view",
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Get a list view",
		Description: "Returns the current page and selection of a view and drains its pending events.",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewGetInput) (*ViewOutput, error) {
		v, err := mgr.Get(input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return &ViewOutput{Body: toHTTPView(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-view-page",
		Method:      http.MethodPut,
		Path:        basePath + "/{id}/page",
		Summary:     "Change page",
		Description: "Loads the given 1-based page. Fetch failures are reported as error events.",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewPageInput) (*ViewOutput, error) {
		v, err := mgr.Get(input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		v.ChangePage(ctx, input.Body.Page)
		return &ViewOutput{Body: toHTTPView(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "select-view-items",
		Method:      http.MethodPut,
		Path:        basePath + "/{id}/selection",
		Summary:     "Replace selection",
		Description: "Replaces the selection with items on the current page.",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewSelectionInput) (*ViewOutput, error) {
		v, err := mgr.Get(input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		if err := v.Select(input.Body.IDs); err != nil {
			return nil, mapServiceError(err)
		}
		return &ViewOutput{Body: toHTTPView(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-view-selection",
		Method:      http.MethodDelete,
		Path:        basePath + "/{id}/selection",
		Summary:     "Delete selected items",
		Description: "Deletes every selected item concurrently. On success one notification per item is raised " +
			"and the current page is reloaded; on failure a single error event is raised.",
		Tags: []string{"Views"},
	}, func(ctx context.Context, input *ViewRemoveInput) (*ViewOutput, error) {
		v, err := mgr.Get(input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		v.Remove(ctx)
		return &ViewOutput{Body: toHTTPView(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-view",
		Method:      http.MethodPost,
		Path:        basePath + "/{id}/refresh",
		Summary:     "Reload current page",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewRefreshInput) (*ViewOutput, error) {
		v, err := mgr.Get(input.ID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		v.Refresh(ctx)
		return &ViewOutput{Body: toHTTPView(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "close-view",
		Method:        http.MethodDelete,
		Path:          basePath + "/{id}",
		Summary:       "Close a list view",
		Tags:          []string{"Views"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ViewCloseInput) (*struct{}, error) {
		if err := mgr.Close(ctx, input.ID); err != nil {
			return nil, mapServiceError(err)
		}
		return nil, nil
	})
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, console.ErrViewNotFound):
		return huma.Error404NotFound("view not found")
	case errors.Is(err, console.ErrUnknownKind):
		return huma.Error422UnprocessableEntity("unknown resource kind")
	case errors.Is(err, console.ErrUnknownItem):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, console.ErrTooManyViews):
		return huma.Error429TooManyRequests("too many open views")
	default:
		return huma.Error500InternalServerError("internal error")
	}
}

func toHTTPView(v console.View) View {
	snap := v.Snapshot()

	items := make([]Item, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = Item{ID: it.ID, Checked: it.Checked, Data: it.Data}
	}

	drained := v.DrainEvents()
	events := make([]Event, len(drained))
	for i, e := range drained {
		events[i] = Event{
			Type:       string(e.Type),
			Message:    e.Message,
			Severity:   string(e.Severity),
			Placement:  string(e.Placement),
			DurationMs: e.Duration.Milliseconds(),
			At:         timeutil.NewTime(e.At),
		}
	}

	return View{
		ID:       snap.ID,
		Kind:     snap.Kind,
		Limit:    snap.Limit,
		Loading:  snap.Loading,
		Count:    snap.Count,
		Total:    snap.Total,
		Offset:   snap.Offset,
		Page:     snap.Page,
		Pages:    snap.Pages,
		Items:    items,
		Selected: snap.Selected,
		Events:   events,
	}
}
