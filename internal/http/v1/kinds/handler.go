package kinds

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/enseada-console/internal/resource"
)

// Lister reports the resource kinds list views can be opened for.
type Lister interface {
	Kinds() []resource.Descriptor
}

// KindsOutput is the response for the kinds endpoint.
type KindsOutput struct {
	Body struct {
		Kinds []resource.Descriptor `json:"kinds" doc:"Resource kinds served by the configured backend"`
	}
}

// Register registers the kinds endpoint.
func Register(api huma.API, l Lister) {
	huma.Register(api, huma.Operation{
		OperationID: "list-kinds",
		Method:      http.MethodGet,
		Path:        "/v1/kinds",
		Summary:     "List resource kinds",
		Description: "Returns the resource kinds a list view can be opened for.",
		Tags:        []string{"Views"},
	}, func(_ context.Context, _ *struct{}) (*KindsOutput, error) {
		out := &KindsOutput{}
		out.Body.Kinds = l.Kinds()
		if out.Body.Kinds == nil {
			out.Body.Kinds = []resource.Descriptor{}
		}
		return out, nil
	})
}
