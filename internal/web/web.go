package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"tripboard/internal/catalog"
	"tripboard/internal/config"
	"tripboard/internal/format"
	appLog "tripboard/internal/log"
	"tripboard/internal/telemetry"
	"tripboard/internal/trip"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server serves the itinerary bundle and the JSON views the bundle polls.
type Server struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	clock   trip.Clock
	debug   bool
	mux     *http.ServeMux
	tracer  trace.Tracer

	staticDir string
}

// NewServer constructs a new Server. clock supplies "now" for every request.
func NewServer(cfg *config.Config, cat *catalog.Catalog, clock trip.Clock, debug bool) *Server {
	if clock == nil {
		clock = trip.SystemClock{}
	}
	s := &Server{
		cfg:       cfg,
		catalog:   cat,
		clock:     clock,
		debug:     debug,
		mux:       http.NewServeMux(),
		tracer:    telemetry.Tracer("tripboard/web"),
		staticDir: cfg.ResolvedStaticDir(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := s.logRequests(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", s.cfg.Addr())
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server",
			"listen", "http://"+srv.Addr,
			"static_dir", s.staticDir,
			"debug", s.debug,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	appLog.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/past", s.handlePast)
	s.mux.HandleFunc("/api/locations", s.handleLocations)
	s.mux.HandleFunc("/api/calendar.ics", s.handleCalendar)
	s.mux.HandleFunc("/api/", s.handleAPINotFound)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// Everything else is the client bundle with catch-all routing.
	s.mux.Handle("/", s.staticHandler())
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials count as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Tripboard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "unknown endpoint "+r.URL.Path)
}

// handlePreview serves the last captured page screenshot.
// http.ServeFile answers 404 while no capture has run yet.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.cfg.Capture.OutputPath)
}

// now returns the evaluation instant for r. In debug mode ?at=<RFC3339>
// pins it for the request.
func (s *Server) now(r *http.Request) (time.Time, error) {
	if v := r.URL.Query().Get("at"); v != "" {
		if !s.debug {
			return time.Time{}, errors.New("the at parameter requires debug mode")
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, errors.New("invalid at parameter; expected RFC 3339")
		}
		return t.In(s.catalog.Location()), nil
	}
	return s.clock.Now().In(s.catalog.Location()), nil
}

// lang picks the response language from ?lang=, Accept-Language and the
// configured locale, in that order.
func (s *Server) lang(r *http.Request) language.Tag {
	return format.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), s.cfg.Locale)
}

// startSpan opens the request span and returns r carrying it, so work done
// further down the handler is parented to the request.
func (s *Server) startSpan(r *http.Request, name string) (*http.Request, trace.Span) {
	ctx, span := s.tracer.Start(r.Context(), name)
	return r.WithContext(ctx), span
}

func methodAllowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
