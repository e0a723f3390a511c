package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"polynav/config"
	"polynav/navigation"
)

const shutdownTimeout = 5 * time.Second

// RouteRequest is the body of POST /route. Coordinates are in world space.
type RouteRequest struct {
	Region    string                    `json:"region" binding:"required"`
	Origin    navigation.Point          `json:"origin"`
	Target    navigation.Point          `json:"target"`
	Agent     string                    `json:"agent,omitempty"`
	Evasion   *navigation.EvasionPolicy `json:"evasion,omitempty"`
	Obstacles []navigation.Obstacle     `json:"obstacles,omitempty"`
}

// RouteResponse is the body returned by POST /route and printed by the route command
type RouteResponse struct {
	QueryID  string             `json:"query_id"`
	Path     []navigation.Point `json:"path"`
	Depth    float64            `json:"depth"`
	Success  bool               `json:"success"`
	Direct   bool               `json:"direct"`
	Fallback bool               `json:"fallback"`
	Message  string             `json:"message,omitempty"`
	Distance float64            `json:"distance,omitempty"`
}

// Server exposes a RegionStore over HTTP
type Server struct {
	cfg     *config.Config
	kind    navigation.EngineKind
	store   *RegionStore
	logger  *log.Logger
	limiter *rate.Limiter
	router  *gin.Engine
}

// New creates a server from a validated config. logger may be nil.
func New(cfg *config.Config, logger *log.Logger) (*Server, error) {
	kind, err := cfg.EngineKind()
	if err != nil {
		return nil, err
	}

	engineOpts := cfg.EngineOptions()
	if cfg.Navigation.Verbose {
		engineOpts.Logger = logger
	}
	loadOpts := cfg.LoadOptions()
	loadOpts.Logger = logger

	s := &Server{
		cfg:    cfg,
		kind:   kind,
		store:  NewRegionStore(kind, engineOpts, loadOpts, logger),
		logger: logger,
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.Burst)
	}
	s.router = s.newRouter()
	return s, nil
}

// Store returns the server's regions
func (s *Server) Store() *RegionStore { return s.store }

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())
	router.GET("/health", s.healthHandler)
	router.GET("/regions", s.regionsHandler)
	router.GET("/regions/:name", s.regionHandler)
	router.POST("/route", s.rateLimitMiddleware(), s.routeHandler)
	return router
}

// Run loads the region directory, watches it if configured and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	s.logf("========================================\n")
	s.logf("🚀 polynav route server (%s engine)\n", s.kind)
	s.logf("========================================\n")

	if dir := s.cfg.Regions.Dir; dir != "" {
		s.logf("Loading regions from %s...\n", dir)
		n, err := s.store.LoadDir(dir)
		if err != nil {
			return err
		}
		s.logf("✅ %d regions loaded\n", n)

		if s.cfg.Regions.Watch {
			w, err := NewWatcher(dir)
			if err != nil {
				s.logf("⚠️  Not watching %s: %v\n", dir, err)
			} else {
				defer w.Close()
				go s.watch(ctx, w)
			}
		}
	}

	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logf("Server starting on %s\n", s.cfg.Server.Addr)
	s.logf("Endpoints:\n")
	s.logf("  POST /route    - Compute a route across a region\n")
	s.logf("  GET  /regions  - List loaded regions\n")
	s.logf("  GET  /regions/:name - Region geometry as GeoJSON\n")
	s.logf("  GET  /health   - Check server status\n")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logf("Shutting down...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) watch(ctx context.Context, w *Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.store.Apply(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logf("⚠️  Watcher error: %v\n", err)
		case <-ctx.Done():
			return
		}
	}
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.logf("❌ Rate limit exceeded for %s\n", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// POST /route
func (s *Server) routeHandler(c *gin.Context) {
	queryID := uuid.NewString()
	s.logf("========================================\n")
	s.logf("📍 Route request %s received\n", queryID)
	defer s.logf("========================================\n")

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logf("❌ Invalid request body: %v\n", err)
		c.JSON(http.StatusBadRequest, RouteResponse{QueryID: queryID, Message: "invalid request body: " + err.Error()})
		return
	}

	evasion := s.cfg.DefaultEvasion()
	if req.Evasion != nil {
		evasion = *req.Evasion
	}

	s.logf("   Region: %s\n", req.Region)
	s.logf("   Origin: (%.3f, %.3f)\n", req.Origin.X, req.Origin.Y)
	s.logf("   Target: (%.3f, %.3f)\n", req.Target.X, req.Target.Y)
	s.logf("   Obstacles: %d (evasion %s)\n", len(req.Obstacles), evasion)

	route, err := s.store.Route(req.Region, req.Origin, req.Target, navigation.Query{
		AgentID:   req.Agent,
		Evasion:   evasion,
		Obstacles: req.Obstacles,
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrUnknownRegion) {
			status = http.StatusNotFound
		}
		s.logf("❌ %v\n", err)
		c.JSON(status, RouteResponse{QueryID: queryID, Message: err.Error()})
		return
	}

	resp := RouteResponse{
		QueryID:  queryID,
		Path:     route.Waypoints,
		Depth:    route.Depth,
		Success:  !route.Fallback,
		Direct:   route.Direct,
		Fallback: route.Fallback,
		Distance: route.Length(req.Origin),
	}
	if route.Fallback {
		resp.Message = route.Reason.Error()
		s.logf("⚠️  No route found, falling back to a straight line: %v\n", route.Reason)
	} else {
		s.logf("✅ Path found with %d waypoints\n", len(route.Waypoints))
		s.logf("   Distance: %.2f\n", resp.Distance)
	}

	c.JSON(http.StatusOK, resp)
}

// GET /regions
func (s *Server) regionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions": s.store.Regions(),
	})
}

// GET /regions/:name - Region geometry as GeoJSON
func (s *Server) regionHandler(c *gin.Context) {
	fc, err := s.store.Export(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fc)
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(c *gin.Context) {
	n := s.store.Len()
	status := "ready"
	if n == 0 {
		status = "no regions loaded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"engine":  s.kind.String(),
		"regions": n,
	})
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
