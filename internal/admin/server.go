package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/presencekit/bridge/internal/bridge"
	"github.com/presencekit/bridge/internal/config"
	"github.com/presencekit/bridge/internal/logging"
	"github.com/presencekit/bridge/internal/monitoring"
	"github.com/presencekit/bridge/internal/textbridge"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the local control surface: health, metrics, operator settings,
// and the reconnect/override commands.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	supervisor *bridge.Supervisor
	relay      *textbridge.Relay
	settings   *config.Settings
	metrics    *monitoring.Metrics
	log        *logging.Logger
}

// New creates the admin server.
func New(cfg config.AdminConfig, supervisor *bridge.Supervisor, relay *textbridge.Relay, settings *config.Settings, registry *prometheus.Registry, metrics *monitoring.Metrics, log *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		engine:     engine,
		supervisor: supervisor,
		relay:      relay,
		settings:   settings,
		metrics:    metrics,
		log:        log,
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: engine,
		},
	}

	engine.GET("/health", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	engine.GET("/settings", s.getSettings)
	engine.PUT("/settings", s.putSettings)
	engine.POST("/reconnect", s.reconnect)
	engine.POST("/textbridge/connect", s.textBridgeConnect)
	engine.POST("/textbridge/override", s.textBridgeOverride)

	return s
}

// Run serves the control surface until Shutdown.
func (s *Server) Run() error {
	s.log.Info("admin surface listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the control surface gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	s.metrics.UpdateUptime()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connection":  s.supervisor.State().String(),
		"session":     s.supervisor.SessionID(),
		"text_bridge": s.relay.Connected(),
	})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Snapshot())
}

func (s *Server) putSettings(c *gin.Context) {
	var patch config.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.Apply(patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.settings.Snapshot())
}

func (s *Server) reconnect(c *gin.Context) {
	if err := s.supervisor.Reconnect(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func (s *Server) textBridgeConnect(c *gin.Context) {
	if err := s.relay.Connect(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"connected": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true})
}

// overrideRequest requires an explicit boolean argument.
type overrideRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) textBridgeOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled (boolean) is required"})
		return
	}
	s.settings.SetTextOverride(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"override": *req.Enabled})
}
