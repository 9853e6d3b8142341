package views

import (
	"github.com/janisto/enseada-console/internal/platform/timeutil"
	"github.com/janisto/enseada-console/internal/resource"
)

// View is the state of an open list screen plus the events raised since the last call.
type View struct {
	ID       string              `json:"id"       doc:"View identifier"                       example:"3f1c2b9e-5a7d-4e8f-9b0a-1c2d3e4f5a6b"`
	Kind     resource.Descriptor `json:"kind"     doc:"Resource kind shown by the view"`
	Limit    int                 `json:"limit"    doc:"Page size"                             example:"25"`
	Loading  bool                `json:"loading"  doc:"Whether a fetch is in flight"          example:"false"`
	Count    int                 `json:"count"    doc:"Number of items on this page"          example:"25"`
	Total    int                 `json:"total"    doc:"Number of items in the collection"     example:"61"`
	Offset   int                 `json:"offset"   doc:"Offset of the first item on this page" example:"0"`
	Page     int                 `json:"page"     doc:"1-based page number"                   example:"1"`
	Pages    int                 `json:"pages"    doc:"Number of pages"                       example:"3"`
	Items    []Item              `json:"items"    doc:"Items on this page"`
	Selected []string            `json:"selected" doc:"Identifiers of selected items in selection order"`
	Events   []Event             `json:"events"   doc:"Errors and notifications raised since the last call"`
}

// Item is one row of the list.
type Item struct {
	ID      string `json:"id"      doc:"Resource identifier" example:"alice"`
	Checked bool   `json:"checked" doc:"Whether the item is selected" example:"false"`
	Data    any    `json:"data"    doc:"Resource fields"`
}

// Event is an error or notification for the UI to show.
type Event struct {
	Type       string        `json:"type"       enum:"error,notification"                     doc:"Event type"          example:"notification"`
	Message    string        `json:"message"    doc:"Human-readable message"                  example:"Deleted user alice"`
	Severity   string        `json:"severity"   enum:"warning,danger"                         doc:"Severity"            example:"warning"`
	Placement  string        `json:"placement"  enum:"top-right,bottom-right"                 doc:"Viewport placement"  example:"bottom-right"`
	DurationMs int64         `json:"durationMs" doc:"Display duration in ms, 0 until dismissed" example:"10000"`
	At         timeutil.Time `json:"at"         doc:"When the event was raised"               example:"2024-01-15T10:30:00.000Z"`
}
