// Package respond writes RFC 9457 problem details for requests that never reach a
// Huma operation: unknown routes, wrong methods and recovered panics.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/enseada-console/internal/platform/logging"
)

const (
	schemaPath          = "/schemas/ErrorModel.json"
	contentTypeJSON     = "application/problem+json"
	contentTypeCBOR     = "application/problem+cbor"
	msgNotFound         = "resource not found"
	msgInternalServer   = "internal server error"
	msgMethodNotAllowed = "method %s not allowed"
)

// problem mirrors huma.ErrorModel with the $schema link Huma adds to its own responses.
type problem struct {
	Schema string `json:"$schema,omitempty"`
	Title  string `json:"title,omitempty"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NotFoundHandler emits a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler emits a 405 problem with an Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(msgMethodNotAllowed, r.Method))
	}
}

// Recoverer turns panics into 500 problems. http.ErrAbortHandler is re-panicked, and
// nothing is written when the handler already started the response.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LoggerFromContext(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				if rw.wroteHeader {
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalServer)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

var candidateMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// allowedMethods checks chi's routing tree for the methods registered on the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.RawPath
		if routePath == "" {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	var allowed []string
	for _, method := range candidateMethods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	p := problem{
		Schema: schemaURL(r),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	var (
		body []byte
		err  error
		ct   = contentTypeJSON
	)
	if acceptsCBOR(r.Header.Get("Accept")) {
		ct = contentTypeCBOR
		body, err = cbor.Marshal(p)
	} else {
		body, err = json.Marshal(p)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", ct)
	h.Set("Link", fmt.Sprintf("<%s>; rel=\"describedBy\"", schemaPath))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + schemaPath
}

// mediaRank orders Accept entries by quality, then by specificity.
type mediaRank struct {
	q           float64
	specificity int
}

func (a mediaRank) beats(b mediaRank) bool {
	if a.q != b.q {
		return a.q > b.q
	}
	return a.specificity > b.specificity
}

// acceptsCBOR reports whether CBOR ranks strictly above JSON in the Accept header.
// Wildcards count toward JSON, the default.
func acceptsCBOR(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}

	var bestCBOR, bestJSON mediaRank
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, q := parseMediaRange(part)
		var rank mediaRank
		cborFamily := false
		switch mediaType {
		case "application/problem+cbor":
			rank, cborFamily = mediaRank{q, 3}, true
		case "application/cbor":
			rank, cborFamily = mediaRank{q, 2}, true
		case "application/problem+json":
			rank = mediaRank{q, 3}
		case "application/json":
			rank = mediaRank{q, 2}
		case "application/*":
			rank = mediaRank{q, 1}
		case "*/*":
			rank = mediaRank{q, 0}
		default:
			continue
		}
		if cborFamily {
			if rank.beats(bestCBOR) {
				bestCBOR = rank
			}
		} else if rank.beats(bestJSON) {
			bestJSON = rank
		}
	}
	return bestCBOR.q > 0 && bestCBOR.beats(bestJSON)
}

func parseMediaRange(part string) (string, float64) {
	fields := strings.Split(part, ";")
	mediaType := strings.ToLower(strings.TrimSpace(fields[0]))
	q := 1.0
	for _, param := range fields[1:] {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || strings.TrimSpace(key) != "q" {
			continue
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			q = parsed
		}
	}
	return mediaType, q
}

// responseWriter records whether the response has started.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
