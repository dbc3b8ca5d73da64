package server

import (
	"bytes"
	"embed"
	"html/template"
	"mime"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	apperrors "github.com/edgard/bookrec/internal/errors"
	"github.com/edgard/bookrec/internal/recommend"
)

const maxBodyBytes = 1 << 20

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/*.html"))

// NewHomeHandler serves the recommendation form.
func NewHomeHandler(deps HandlerDeps) http.HandlerFunc {
	return homeHandler{deps}.ServeHTTP
}

type homeHandler struct {
	deps HandlerDeps
}

func (h homeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, h.deps, http.StatusOK, "home.html", nil)
}

// NewRecommendHandler answers POST /recommend with a JSON payload.
func NewRecommendHandler(deps HandlerDeps) http.HandlerFunc {
	return recommendHandler{deps}.ServeHTTP
}

type recommendHandler struct {
	deps HandlerDeps
}

func (h recommendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, payload := runRecommendation(w, r, h.deps)
	writeJSON(w, r, h.deps, status, payload)
}

// NewSubmitHandler answers POST /submit with an HTML fragment.
func NewSubmitHandler(deps HandlerDeps) http.HandlerFunc {
	return submitHandler{deps}.ServeHTTP
}

type submitHandler struct {
	deps HandlerDeps
}

func (h submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, payload := runRecommendation(w, r, h.deps)
	if errPayload, ok := payload.(ErrorPayload); ok {
		renderHTML(w, r, h.deps, status, "error.html", errPayload)
		return
	}
	renderHTML(w, r, h.deps, status, "recommendation.html", payload)
}

// runRecommendation is the single error boundary of the pipeline: any
// failure becomes an ErrorPayload, never a partial success.
func runRecommendation(w http.ResponseWriter, r *http.Request, deps HandlerDeps) (int, any) {
	ctx := r.Context()
	log := deps.Logger.With("handler", "recommend")

	req, err := readRequest(w, r)
	if err == nil {
		var rec recommend.Recommendation
		rec, err = deps.Recommender.Recommend(ctx, req)
		if err == nil {
			return http.StatusOK, newSuccessPayload(rec)
		}
	}

	code := apperrors.Code(err)
	log.InfoContext(ctx, "Recommendation request failed", "code", code, "error", err)
	return apperrors.HTTPStatus(code), newErrorPayload(err)
}

// readRequest accepts url-encoded or multipart form fields, or a JSON body.
func readRequest(w http.ResponseWriter, r *http.Request) (recommend.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body recommend.Request
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return recommend.Request{}, apperrors.NewValidationError("invalid JSON body", err)
		}
		return recommend.NewRequest(body.Genre, body.Preferences)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return recommend.Request{}, apperrors.NewValidationError("invalid form body", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return recommend.Request{}, apperrors.NewValidationError("invalid form body", err)
		}
	}

	return recommend.NewRequest(r.PostFormValue("genre"), r.PostFormValue("preferences"))
}

// NewHealthzHandler reports liveness.
func NewHealthzHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, deps, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// NewReadyzHandler reports whether the generator answered its last probe.
func NewReadyzHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness != nil {
			if err := deps.Readiness.Ready(); err != nil {
				writeJSON(w, r, deps, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, r, deps, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, deps HandlerDeps, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		deps.Logger.ErrorContext(r.Context(), "Failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func renderHTML(w http.ResponseWriter, r *http.Request, deps HandlerDeps, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		deps.Logger.ErrorContext(r.Context(), "Failed to render template", "template", name, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
