// Package server hosts dotring widgets over HTTP.
//
// Each widget lives in a [Registry] under a random id. The markup served for
// a widget forwards pointer and drag events to the events endpoint, and the
// page redraws from the SVG endpoint after every response. All requests for
// one widget are serialized, so a controller is only ever driven by one
// goroutine at a time.
//
// # Endpoints
//
//	GET    /                                page hosting one widget
//	GET    /healthz                         build information
//	GET    /api/widgets                     list widget ids
//	POST   /api/widgets                     create a widget from options JSON
//	GET    /api/widgets/{id}                JSON snapshot
//	DELETE /api/widgets/{id}                drop a widget
//	GET    /api/widgets/{id}/svg            drawing (?fragment=1 for inline use)
//	GET    /api/widgets/{id}/png            raster drawing (?scale=2)
//	GET    /api/widgets/{id}/markup         HTML fragment (?page=1 for a document)
//	POST   /api/widgets/{id}/events         deliver a pointer or drag event
//	POST   /api/widgets/{id}/action         switch between add and remove
//	POST   /api/widgets/{id}/dots           append a dot
//	DELETE /api/widgets/{id}/dots           remove every dot
//	DELETE /api/widgets/{id}/dots/{index}   remove one dot
//	PUT    /api/widgets/{id}/selection      select a dot (index -1 clears)
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/widget"
)

// DefaultBasePath is where the widget API is mounted.
const DefaultBasePath = "/api/widgets"

// Server is the HTTP host.
type Server struct {
	logger          *log.Logger
	registry        *Registry
	basePath        string
	maxWidgets      int
	shutdownTimeout time.Duration

	defaultsMu sync.RWMutex
	defaults   widget.Options

	homeMu sync.Mutex
	home   map[widget.Variant]string

	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithDefaults sets the options new widgets start from.
func WithDefaults(o widget.Options) Option { return func(s *Server) { s.defaults = o } }

// WithBasePath mounts the widget API under p.
func WithBasePath(p string) Option { return func(s *Server) { s.basePath = p } }

// WithMaxWidgets bounds the registry.
func WithMaxWidgets(n int) Option { return func(s *Server) { s.maxWidgets = n } }

// WithShutdownTimeout bounds graceful shutdown in ListenAndServe.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New builds a server and its routes.
func New(opts ...Option) *Server {
	s := &Server{
		logger:          log.Default(),
		basePath:        DefaultBasePath,
		shutdownTimeout: 5 * time.Second,
		home:            make(map[widget.Variant]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = NewRegistry(s.maxWidgets)
	s.router = s.routes()
	return s
}

// Registry returns the server's widget registry.
func (s *Server) Registry() *Registry { return s.registry }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", s.handleHealth)

	r.Route(s.basePath, func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleSVG)
			r.Get("/png", s.handlePNG)
			r.Get("/markup", s.handleMarkup)
			r.Post("/events", s.handleEvent)
			r.Post("/action", s.handleAction)
			r.Post("/dots", s.handleAddDot)
			r.Delete("/dots", s.handleClear)
			r.Delete("/dots/{index}", s.handleRemoveDot)
			r.Put("/selection", s.handleSelect)
		})
	})
	return r
}

// SetDefaults replaces the options new widgets start from. Existing
// widgets keep theirs.
func (s *Server) SetDefaults(o widget.Options) {
	s.defaultsMu.Lock()
	s.defaults = o
	s.defaultsMu.Unlock()
}

// Defaults returns the options new widgets start from.
func (s *Server) Defaults() widget.Options {
	s.defaultsMu.RLock()
	defer s.defaultsMu.RUnlock()
	return s.defaults
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", "addr", addr, "api", s.basePath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down", "timeout", s.shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// optionsFor returns the options a new widget of variant v starts from.
// Sizes in the configured defaults belong to the configured variant, so a
// different variant only inherits colors.
func (s *Server) optionsFor(v widget.Variant) widget.Options {
	def := s.Defaults()
	if v == "" || v == def.Variant || (def.Variant == "" && v == widget.VariantManaged) {
		return def
	}
	return widget.Options{
		Variant:      v,
		DefaultColor: def.DefaultColor,
		Palette:      def.Palette,
	}
}

// homeWidget returns the widget shown on the index page for variant v,
// creating it on first use or after it was deleted.
func (s *Server) homeWidget(v widget.Variant) (string, error) {
	s.homeMu.Lock()
	defer s.homeMu.Unlock()
	if id, ok := s.home[v]; ok && s.registry.Has(id) {
		return id, nil
	}
	id, err := s.registry.Create(s.optionsFor(v))
	if err != nil {
		return "", err
	}
	s.home[v] = id
	return id, nil
}
