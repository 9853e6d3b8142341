package auth

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/enseada-console/internal/platform/logging"
)

// NewCredentialsMiddleware creates Huma middleware that stores the caller's bearer token
// on the request context. Requests without an Authorization header pass through
// unchanged; a malformed header is rejected with 401.
func NewCredentialsMiddleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token, err := ExtractBearerToken(ctx.Header("Authorization"))
		switch {
		case errors.Is(err, ErrNoToken):
			next(ctx)
			return
		case err != nil:
			applog.LogWarn(ctx.Context(), "credentials rejected: invalid header",
				zap.String("reason", "invalid_token"))
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		ctx = huma.WithContext(ctx, WithToken(ctx.Context(), token))
		next(ctx)
	}
}
