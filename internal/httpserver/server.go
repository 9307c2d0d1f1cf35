package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/PratikDhanave/safedrive-service/internal/auth"
	"github.com/PratikDhanave/safedrive-service/internal/config"
	"github.com/PratikDhanave/safedrive-service/internal/handlers"
	"github.com/PratikDhanave/safedrive-service/internal/ingest"
	"github.com/PratikDhanave/safedrive-service/internal/query"
	"github.com/PratikDhanave/safedrive-service/internal/store"
)

// isoMillis matches the millisecond ISO-8601 timestamps the dashboard expects.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NewRouter wires public endpoints and key-protected device endpoints.
// Public: /api/health, /api/ready and every GET
// Authenticated: POST /api/sensor, /api/sensor/http, /api/accident
//
// pub may be nil when live notifications are disabled.
func NewRouter(cfg config.Config, st store.Store, pub ingest.Publisher, logger log.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	// Liveness: confirms the process is running.
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(isoMillis)})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/api/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	ingestOpts := []ingest.Option{ingest.WithTimeout(cfg.StoreTimeout)}
	if pub != nil {
		ingestOpts = append(ingestOpts, ingest.WithPublisher(pub))
	}
	ingestSvc := ingest.NewService(st, logger.WithField("component", "ingest"), ingestOpts...)
	querySvc := query.NewService(st, logger.WithField("component", "query"), query.WithTimeout(cfg.StoreTimeout))

	handlers.RegisterDashboardRoutes(r, querySvc)

	// Device group enforces the shared secret via X-API-Key or ?api_key=.
	devices := r.Group("/")
	devices.Use(auth.NewGate(cfg.APIKey).Middleware())
	handlers.RegisterIngestRoutes(devices, ingestSvc)

	return r
}
