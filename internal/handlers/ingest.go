package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/safedrive-service/internal/ingest"
	"github.com/PratikDhanave/safedrive-service/internal/models"
	"github.com/PratikDhanave/safedrive-service/internal/validate"
)

// RegisterIngestRoutes registers the device write endpoints.
//
// POST /api/sensor, POST /api/sensor/http, POST /api/accident
// - Caller must have passed the API-key middleware
// - Durable: returns success only after the insert completes
func RegisterIngestRoutes(r gin.IRoutes, svc *ingest.Service) {
	sensor := ingestHandler(svc, validate.Sensor, "Invalid sensor data")

	r.POST("/api/sensor", sensor)
	// Plain-HTTP alias for devices that cannot afford a TLS stack.
	r.POST("/api/sensor/http", sensor)

	r.POST("/api/accident", ingestHandler(svc, validate.Accident, "Invalid accident data"))
}

func ingestHandler(svc *ingest.Service, kind validate.Kind, invalidMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TelemetryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, invalidMsg, validate.FromBindError(err, kind).Field)
			return
		}

		id, err := svc.Ingest(c.Request.Context(), kind, req)

		var verr *ingest.ValidationError
		var perr *ingest.PersistenceError
		switch {
		case err == nil:
			c.JSON(http.StatusOK, models.IngestResponse{Status: "ok", ID: id})
		case errors.As(err, &verr):
			badRequest(c, invalidMsg, verr.Field)
		case errors.As(err, &perr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": perr.Err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		}
	}
}

func badRequest(c *gin.Context, msg, field string) {
	body := gin.H{"error": msg}
	if field != "" {
		body["field"] = field
	}
	c.JSON(http.StatusBadRequest, body)
}
