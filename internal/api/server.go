package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/cache"
	"github.com/raaihank/compliance-sentinel/internal/config"
	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/logger"
	"github.com/raaihank/compliance-sentinel/internal/regulation"
	"github.com/raaihank/compliance-sentinel/internal/report"
	"github.com/raaihank/compliance-sentinel/internal/security"
	"github.com/raaihank/compliance-sentinel/internal/store"
	"github.com/raaihank/compliance-sentinel/internal/websocket"
)

// Version is reported by /info
const Version = "0.1.0"

const (
	statusInterval = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

// AssessmentCache is the subset of the Redis cache used by the server
type AssessmentCache interface {
	Key(controls assessment.Controls, regulationIDs []string, day time.Time) string
	Get(ctx context.Context, key string) ([]assessment.Assessment, bool, error)
	Set(ctx context.Context, key string, assessments []assessment.Assessment) error
	Stats(ctx context.Context) (*cache.Stats, error)
}

// ReportStore is the subset of the Postgres store used by the server
type ReportStore interface {
	Save(ctx context.Context, r *report.Report) error
	Get(ctx context.Context, id string) (*report.Report, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]store.ReportSummary, error)
	Stats(ctx context.Context) (*store.Stats, error)
	Ping(ctx context.Context) error
}

// Dependencies are the optional backends of the server. Nil fields disable the feature.
type Dependencies struct {
	Cache AssessmentCache
	Store ReportStore
}

// Server represents the compliance HTTP API
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	registry   *regulation.Registry
	detector   *jurisdiction.Detector
	assessor   *assessment.Assessor
	aggregator *report.Aggregator
	cache      AssessmentCache
	store      ReportStore
	limiter    *security.RateLimiter
	wsHub      *websocket.Hub
	router     *mux.Router
	server     *http.Server

	startedAt        time.Time
	totalRequests    atomic.Int64
	totalAssessments atomic.Int64
	totalReports     atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a new API server instance
func New(cfg *config.Config, log *logger.Logger, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	registry := regulation.Default()
	assessor := assessment.NewAssessor(registry, assessment.Options{
		ResponsibleParty: cfg.Compliance.ResponsibleParty,
		StaggerWeeks:     cfg.Compliance.StaggerWeeks,
	}, log.WithComponent("assessment").Logger)

	s := &Server{
		config:     cfg,
		logger:     log.WithComponent("api"),
		registry:   registry,
		detector:   jurisdiction.NewDetector(),
		assessor:   assessor,
		aggregator: report.NewAggregator(cfg.Compliance.MaxPrioritizedActions),
		cache:      deps.Cache,
		store:      deps.Store,
		limiter:    security.NewRateLimiter(cfg.RateLimit),
		wsHub:      websocket.NewHub(cfg.WebSocket, log.Logger),
		router:     mux.NewRouter(),
		startedAt:  time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.loggingMiddleware)
	apiRouter.Use(s.rateLimitMiddleware)
	apiRouter.Use(s.bodyLimitMiddleware)

	apiRouter.HandleFunc("/regulations", s.handleListRegulations).Methods(http.MethodGet)
	apiRouter.HandleFunc("/regulations/{id}", s.handleGetRegulation).Methods(http.MethodGet)
	apiRouter.HandleFunc("/regulations/{id}/rules", s.handleGetRules).Methods(http.MethodGet)
	apiRouter.HandleFunc("/jurisdictions/detect", s.handleDetect).Methods(http.MethodPost)
	apiRouter.HandleFunc("/jurisdictions/locations", s.handleLocations).Methods(http.MethodGet)
	apiRouter.HandleFunc("/compliance/assess", s.handleAssess).Methods(http.MethodPost)
	apiRouter.HandleFunc("/compliance/report", s.handleReport).Methods(http.MethodPost)
	apiRouter.HandleFunc("/reports/{reportID}", s.handleGetReport).Methods(http.MethodGet)
	apiRouter.HandleFunc("/projects/{projectID}/reports", s.handleListReports).Methods(http.MethodGet)
	apiRouter.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs background workers and serves HTTP until Stop is called
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("Starting compliance API server",
		zap.Int("port", s.config.Server.Port),
		zap.Int("regulations", len(s.registry.IDs())),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("store_enabled", s.store != nil),
		zap.Bool("websocket_enabled", s.config.WebSocket.Enabled),
	)

	if s.config.WebSocket.Enabled {
		go s.wsHub.Run(ctx)
		go s.broadcastStatus(ctx)
	}
	if s.config.RateLimit.Enabled {
		s.limiter.StartCleanupRoutine(ctx)
	}

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully stops the HTTP server and background workers
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping compliance API server")

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	return s.server.Shutdown(ctx)
}

// SetLogLevel is used by config hot reload
func (s *Server) SetLogLevel(level string) error {
	return s.logger.SetLevel(level)
}

func (s *Server) broadcastStatus(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.wsHub.BroadcastEvent(websocket.NewSystemStatusEvent(s.systemStatus()))
		}
	}
}

func (s *Server) systemStatus() websocket.SystemStatusEvent {
	return websocket.SystemStatusEvent{
		Status:           "healthy",
		Uptime:           time.Since(s.startedAt).Round(time.Second).String(),
		TotalRequests:    s.totalRequests.Load(),
		TotalAssessments: s.totalAssessments.Load(),
		TotalReports:     s.totalReports.Load(),
		Regulations:      len(s.registry.IDs()),
		ConnectedClients: s.wsHub.ClientCount(),
	}
}
