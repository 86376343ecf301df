// Package api serves families over HTTP.
//
// Every response is a JSON envelope, {"data": ...} on success and
// {"error", "code", "request_id"} on failure, with the status taken from
// the error code. The exception is /tree.svg, which returns the image.
//
// Each family that is read or edited through the API gets a live
// workspace: its records are held in a [store.Store] and a
// [pipeline.Refresher] keeps the positioned graph in step with every
// edit, so GET /tree is served from the latest finished layout.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stamboom/pkg/geo"
	"github.com/matzehuels/stamboom/pkg/pipeline"
	"github.com/matzehuels/stamboom/pkg/storage"
)

const (
	requestTimeout    = 60 * time.Second
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server is the HTTP API. Create it with New and release it with Close.
type Server struct {
	repo     storage.Repository
	runner   *pipeline.Runner
	geocoder *geo.Geocoder
	opts     pipeline.Options
	logger   *log.Logger
	router   chi.Router

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	workspaces map[int64]*workspace
}

// Option configures a Server.
type Option func(*Server)

// WithGeocoder enables GET /families/{id}/map.
func WithGeocoder(g *geo.Geocoder) Option { return func(s *Server) { s.geocoder = g } }

// WithPipelineOptions sets the layout and render options used for every
// family.
func WithPipelineOptions(opts pipeline.Options) Option { return func(s *Server) { s.opts = opts } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// New builds the server and its routes.
func New(repo storage.Repository, runner *pipeline.Runner, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		repo:       repo,
		runner:     runner,
		logger:     log.New(io.Discard),
		ctx:        ctx,
		cancel:     cancel,
		workspaces: make(map[int64]*workspace),
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/families", func(r chi.Router) {
		r.Get("/", s.handleListFamilies)
		r.Post("/", s.handleCreateFamily)

		r.Route("/{familyID}", func(r chi.Router) {
			r.Get("/", s.handleGetFamily)
			r.Post("/copy", s.handleCopyFamily)
			r.Get("/tree", s.handleTree)
			r.Get("/tree.svg", s.handleTreeSVG)
			r.Get("/stats", s.handleStats)
			r.Get("/search", s.handleSearch)
			r.Get("/map", s.handleMap)

			r.Post("/people", s.handleCreatePerson)
			r.Put("/people/{id}", s.handleUpdatePerson)
			r.Delete("/people/{id}", s.handleDeletePerson)

			r.Post("/marriages", s.handleCreateMarriage)
			r.Put("/marriages/{id}", s.handleUpdateMarriage)
			r.Delete("/marriages/{id}", s.handleDeleteMarriage)

			r.Post("/children", s.handleCreateChild)
			r.Delete("/children/{id}", s.handleDeleteChild)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Close stops every workspace. It does not close the repository.
func (s *Server) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ws := range s.workspaces {
		ws.close()
		delete(s.workspaces, id)
	}
}

// workspace returns the live state of a family, loading it on first use.
func (s *Server) workspace(ctx context.Context, familyID int64) (*workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[familyID]; ok {
		return ws, nil
	}
	f, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	ds, err := s.repo.FetchFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	ws := newWorkspace(s.ctx, s.runner.Scoped(fmt.Sprintf("family:%d:", familyID)), s.opts, s.logger.With("family", familyID))
	ws.store.Load(f, ds)
	s.workspaces[familyID] = ws
	s.logger.Debug("loaded family", "family", familyID, "people", len(ds.People))
	return ws, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}
