// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout   {tree, tree_format, config} -> layout result JSON
//	POST /v1/render   {tree, tree_format, config} -> rendered chart (?format=svg|json|dot|png|pdf)
//	GET  /healthz     build information
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// of the form {"code": "...", "message": "..."}.
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/lifelines/pkg/buildinfo"
	"github.com/matzehuels/lifelines/pkg/config"
	lerrors "github.com/matzehuels/lifelines/pkg/errors"
	"github.com/matzehuels/lifelines/pkg/observability"
	"github.com/matzehuels/lifelines/pkg/pipeline"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 8 << 20

// Server serves the layout API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// ServerOption configures optional Server parameters.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes overrides the request body limit.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// New creates a server running requests through runner.
func New(runner *pipeline.Runner, opts ...ServerOption) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}
	s := &Server{
		runner:  runner,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler by delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, lerrors.New(lerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Code:    lerrors.ErrCodeUnsupported,
			Message: "method " + r.Method + " not allowed on " + r.URL.Path,
		})
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID tags every request with an id, logs it and reports it to the
// server hooks.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		r.Header.Set(RequestIDHeader, id)
		w.Header().Set(RequestIDHeader, id)

		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, id, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "id", id, "duration", dur)
	})
}

// =============================================================================
// Handlers
// =============================================================================

// request is the body accepted by the /v1 routes. Tree is either an inline
// JSON document or a string holding a JSON or YAML document.
type request struct {
	Tree       json.RawMessage `json:"tree"`
	TreeFormat string          `json:"tree_format,omitempty"`
	Config     *config.Config  `json:"config"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Layout  string `json:"layout"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Commit:  buildinfo.Commit,
		Layout:  buildinfo.LayoutVersion,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.execute(w, r, pipeline.FormatJSON)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.execute(w, r, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, format string) (*pipeline.Result, error) {
	req, err := s.decode(w, r)
	if err != nil {
		return nil, err
	}
	tree, err := treeBytes(req.Tree)
	if err != nil {
		return nil, err
	}
	return s.runner.Execute(r.Context(), pipeline.Options{
		Tree:       tree,
		TreeFormat: req.TreeFormat,
		Source:     "request " + requestIDOf(r),
		Config:     req.Config,
		Formats:    []string{format},
		Logger:     s.logger,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req request
	if err := dec.Decode(&req); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return &req, nil
}

// treeBytes unwraps a tree given as a JSON string; inline documents pass
// through unchanged.
func treeBytes(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeInvalidInput, err, "decode tree string")
	}
	return []byte(s), nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "id", requestIDOf(r), "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "id", requestIDOf(r), "error", err)
	}
	writeError(w, err)
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    lerrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := lerrors.GetCode(err)
	if code == "" {
		code = lerrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), errorResponse{Code: code, Message: lerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch lerrors.GetCode(err) {
	case lerrors.ErrCodeInvalidInput, lerrors.ErrCodeInvalidConfig, lerrors.ErrCodeInvalidFormat,
		lerrors.ErrCodeInvalidID, lerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case lerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case lerrors.ErrCodeMissingData:
		return http.StatusUnprocessableEntity
	case lerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	}
	return "text/vnd.graphviz; charset=utf-8"
}

// requestIDOf returns the id the middleware assigned to r.
func requestIDOf(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}
