package webd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"
	"github.com/rotblauer/sailtrack/api"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/state"
	"github.com/rotblauer/sailtrack/types/sail"
)

// WebDaemon serves the analysis of one track and re-runs it on request.
type WebDaemon struct {
	Config         *params.WebDaemonConfig
	logger         *slog.Logger
	started        time.Time
	melodyInstance *melody.Melody
	feedAnalyzed   event.FeedOf[*api.Report]

	// mu guards the track, its analysis and the wind it was analyzed for.
	mu       sync.Mutex
	data     *sail.Data
	analyzer *api.Analyzer
	wind     float64

	// reports holds rendered analyses by wind bearing.
	reports *ttlcache.Cache[string, []byte]

	session *state.Session
}

// NewWebDaemon analyzes data for the initial wind bearing.
func NewWebDaemon(config *params.WebDaemonConfig, data *sail.Data, windDegrees float64) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	s := &WebDaemon{
		Config:       config,
		logger:       slog.With("d", "web"),
		started:      time.Now(),
		feedAnalyzed: event.FeedOf[*api.Report]{},
		data:         data,
		analyzer:     api.NewAnalyzer(config.Analysis),
		reports: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](config.ReportCacheTTL)),
	}
	if err := s.analyzer.Run(data, windDegrees); err != nil {
		return nil, err
	}
	s.wind = windDegrees
	s.initMelody()
	return s, nil
}

// Persist stores the track, its comment and wind in session now and after every change.
func (s *WebDaemon) Persist(session *state.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	if err := session.WriteComment(s.data.Comment); err != nil {
		return err
	}
	return s.persistLocked(true)
}

func (s *WebDaemon) persistLocked(points bool) error {
	if s.session == nil {
		return nil
	}
	if points {
		if err := s.session.WritePoints(s.data.AllPoints()); err != nil {
			return fmt.Errorf("persist points: %w", err)
		}
	}
	if err := s.session.WriteWind(s.wind); err != nil {
		return fmt.Errorf("persist wind: %w", err)
	}
	return nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *WebDaemon) Run(ctx context.Context) error {
	ln, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{Handler: s.NewRouter()}

	go s.reports.Start()
	defer s.reports.Stop()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("Starting web daemon", "network", s.Config.Network, "address", ln.Addr().String())
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web daemon")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	_ = s.melodyInstance.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *WebDaemon) NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware, recoveryMiddleware)

	router.Path("/socket").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	apiJSONRoutes.Use(contentTypeMiddlewareFunc("application/json"))

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/analysis").HandlerFunc(s.handleAnalysis).Methods(http.MethodGet)
	apiJSONRoutes.Path("/stats").HandlerFunc(s.handleStats).Methods(http.MethodGet)
	apiJSONRoutes.Path("/timings").HandlerFunc(s.handleTimings).Methods(http.MethodGet)

	geoJSONRoutes := apiRoutes.NewRoute().Subrouter()
	geoJSONRoutes.Use(contentTypeMiddlewareFunc("application/geo+json"))
	geoJSONRoutes.Path("/tacks.geojson").HandlerFunc(s.handleTacksGeoJSON).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(s.tokenAuthenticationMiddleware)
	authenticatedAPIRoutes.Path("/points").HandlerFunc(s.handlePostPoints).Methods(http.MethodPost)

	return router
}
