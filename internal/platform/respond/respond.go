// Package respond writes RFC 9457 problem details for responses produced
// outside Huma operations: unknown routes, wrong methods and panics.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/linkhub/internal/platform/logging"
)

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"
	// Huma serves its schemas below the /v1 API mount.
	errorSchemaPath        = "/v1/schemas/ErrorModel.json"
)

// problem mirrors huma.ErrorModel with the $schema field Huma adds to its own error bodies.
type problem struct {
	Schema string              `json:"$schema,omitempty"`
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status,omitempty"`
	Detail string              `json:"detail,omitempty"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

// NotFoundHandler renders a 404 problem for unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "resource not found")
	}
}

// MethodNotAllowedHandler renders a 405 problem and lists the allowed methods.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

// Recoverer converts panics into 500 problems. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection. Nothing is written when
// the handler already sent headers.
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

				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				applog.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))

				if rw.wroteHeader {
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// responseWriter tracks whether a status line has been sent.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	schemaURL := schemaBase(r) + errorSchemaPath
	body := problem{
		Schema: schemaURL,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	var (
		data []byte
		err  error
		ct   = contentTypeProblemJSON
	)
	if acceptsCBOR(r.Header.Get("Accept")) {
		ct = contentTypeProblemCBOR
		data, err = cbor.Marshal(body)
	} else {
		data, err = json.Marshal(body)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	h := w.Header()
	h.Set("Content-Type", ct)
	h.Set("Link", fmt.Sprintf(`<%s>; rel="describedBy"`, schemaURL))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func schemaBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd == "http" || fwd == "https" {
		scheme = fwd
	}
	if r.Host == "" {
		return ""
	}
	return scheme + "://" + r.Host
}

// acceptsCBOR reports whether the Accept header ranks a CBOR media type
// strictly above JSON. Quality decides first, then specificity
// (application/problem+cbor beats application/cbor). Wildcards and
// missing headers select JSON.
func acceptsCBOR(accept string) bool {
	if accept == "" {
		return false
	}
	type rank struct {
		q    float64
		spec int
	}
	var bestCBOR, bestJSON rank
	better := func(a, b rank) bool {
		return a.q > b.q || (a.q == b.q && a.spec > b.spec)
	}

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, _ := strings.Cut(part, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
		q := 1.0
		for param := range strings.SplitSeq(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				q = parsed
			}
		}

		var (
			candidate rank
			isCBOR    bool
		)
		switch mediaType {
		case "application/cbor":
			candidate, isCBOR = rank{q, 1}, true
		case contentTypeProblemCBOR:
			candidate, isCBOR = rank{q, 2}, true
		case "application/json":
			candidate = rank{q, 1}
		case contentTypeProblemJSON:
			candidate = rank{q, 2}
		default:
			continue
		}
		if isCBOR {
			if better(candidate, bestCBOR) {
				bestCBOR = candidate
			}
		} else if better(candidate, bestJSON) {
			bestJSON = candidate
		}
	}
	return bestCBOR.q > 0 && better(bestCBOR, bestJSON)
}

// allowedMethods inspects chi's routing tree to discover methods registered for the path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.Path
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
