package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/premscan/premscan/config"
	"github.com/premscan/premscan/engine"
	"github.com/premscan/premscan/models"
	"github.com/premscan/premscan/webhook"
)

// Quote returns a handler for POST /api/v1/quote.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Dispatcher.Dispatch → scrape (or static estimate)  (records scrape_ms)
//  3. Fire webhook event when the request carries a webhook URL.
//  4. Fill Timing, return 200 with the structured result.
//
// The scrape itself never errors: failures arrive as a structured result
// with step_reached and error set, and are returned with HTTP 200 so the
// caller can inspect them. Only input and transport problems map to 4xx.
func Quote(d *engine.Dispatcher, webhookCfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.QuoteResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, models.QuoteResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		// ── 2. Dispatch ─────────────────────────────────────────────
		scrapeStart := time.Now()
		result, engineName := d.Dispatch(c.Request.Context(), &req)
		scrapeMs := time.Since(scrapeStart).Milliseconds()

		// ── 3. Webhook notification ─────────────────────────────────
		if req.WebhookURL != "" {
			eventType := webhook.EventQuoteCompleted
			if !result.Success {
				eventType = webhook.EventQuoteFailed
			}
			webhook.DeliverAsync(req.WebhookURL, webhookCfg.Secret, &webhook.Event{
				Type:      eventType,
				Timestamp: time.Now().Unix(),
				Data:      result,
			})
		}

		// ── 4. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.QuoteResponse{
			Success: result.Success,
			Result:  result,
			Engine:  engineName,
			Timing: models.TimingInfo{
				TotalMs:  time.Since(totalStart).Milliseconds(),
				ScrapeMs: scrapeMs,
			},
		})
	}
}
