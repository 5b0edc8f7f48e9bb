package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/premscan/premscan/models"
	"github.com/premscan/premscan/scraper"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports the shared browser's liveness without launching one: a cold
// service is still healthy, the engine starts on the first quote.
func Health(sc *scraper.Scraper, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "healthy",
			UptimeSeconds: int64(time.Since(startTime).Seconds()),
			BrowserAlive:  sc.Alive(),
			ActiveScrapes: sc.Active(),
		})
	}
}
