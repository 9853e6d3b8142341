package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/enseada-console/internal/console"
	"github.com/janisto/enseada-console/internal/http/v1/kinds"
	"github.com/janisto/enseada-console/internal/http/v1/views"
	"github.com/janisto/enseada-console/internal/platform/auth"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, mgr *console.Manager) {
	// Forward caller credentials to upstream backends
	api.UseMiddleware(auth.NewCredentialsMiddleware(api))

	kinds.Register(api, mgr)
	views.Register(api, mgr)
}
