package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/safedrive-service/internal/query"
)

// RegisterDashboardRoutes registers the read endpoints polled by the dashboard.
// None of them require an API key.
//
// Aggregate views always answer 200, degrading to canned data when the store
// is down. History and accident detail surface failures instead.
func RegisterDashboardRoutes(r gin.IRoutes, svc *query.Service) {
	r.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Stats(c.Request.Context()))
	})

	r.GET("/api/sensor", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.LatestSensor(c.Request.Context()))
	})

	r.GET("/api/map", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.MapPoints(c.Request.Context()))
	})

	r.GET("/api/accidents", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Accidents(c.Request.Context()))
	})

	r.GET("/api/car/position", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.CarPosition(c.Request.Context()))
	})

	// GET /api/sensor/history?limit=N (default and max 1000)
	r.GET("/api/sensor/history", func(c *gin.Context) {
		limit := query.MaxHistory
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		history, err := svc.SensorHistory(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, history)
	})

	r.GET("/api/accident/:id", func(c *gin.Context) {
		accident, err := svc.AccidentByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, query.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, accident)
	})
}
