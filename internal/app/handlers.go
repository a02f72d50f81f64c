package app

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/agri-advisor-go/internal/advisor"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/sentry"
)

const readinessPingTimeout = 2 * time.Second

// queryRequest accepts either field name.
type queryRequest struct {
	Query string `json:"query"`
	Text  string `json:"text"`
}

type queryResponse struct {
	Query       string       `json:"query"`
	Intent      intent.Label `json:"intent"`
	IntentScore float64      `json:"intent_score"`
	Confidence  float64      `json:"confidence"`
	Crop        *string      `json:"crop"`
	Advice      string       `json:"advice"`
}

func (a *Application) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query text provided"})
		return
	}
	text := cmp.Or(req.Query, req.Text)
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query text provided"})
		return
	}
	if n := utf8.RuneCountInString(text); n > a.cfg.MaxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Query too long (%d characters, limit %d)", n, a.cfg.MaxQueryLength),
		})
		return
	}

	ctx := c.Request.Context()
	res, err := a.advisor.ProcessQuery(ctx, text)
	if err != nil {
		a.logger.WithError(err).WarnContext(ctx, "Query processing failed")
		sentry.CaptureException(ctx, err, map[string]string{"route": "/query"})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "query processing failed",
			"advice": advisor.ErrorAdvice,
		})
		return
	}

	c.JSON(http.StatusOK, queryResponse{
		Query:       res.Query,
		Intent:      res.Intent,
		IntentScore: res.Confidence,
		Confidence:  res.Confidence,
		Crop:        res.Crop,
		Advice:      res.Advice,
	})
}

func (a *Application) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Chatbot is running"})
}

func (a *Application) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// handleReadiness reports 503 while the classifier loads. Once it has
// settled the service is ready, possibly degraded.
func (a *Application) handleReadiness(c *gin.Context) {
	status := a.readiness.Status()
	if !status.Ready {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(a.readiness.RetryAfter())))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "readiness": status})
		return
	}

	if a.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessPingTimeout)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			a.logger.WithError(err).WarnContext(ctx, "Readiness check failed: knowledge database unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "knowledge database unavailable"})
			return
		}
	}

	state := "ready"
	if status.Degraded {
		state = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    state,
		"strategy":  a.classifier.StrategyName(),
		"readiness": status,
		"features": gin.H{
			"line":      a.webhookHandler != nil,
			"knowledge": a.db != nil,
		},
	})
}
