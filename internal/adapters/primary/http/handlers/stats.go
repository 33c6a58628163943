package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"model-inference-service/internal/core/services"
)

// GetServingStats answers over the Prometheus server that scrapes
// this service. Defaults to the last hour at 1m resolution.
func (h *Handler) GetServingStats(c *gin.Context) {
	req, err := parseStatsRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.statsSvc.GetServingStats(c.Request.Context(), req)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseStatsRange(c *gin.Context) (services.ServingStatsRequest, error) {
	now := time.Now()
	req := services.ServingStatsRequest{
		From: now.Add(-1 * time.Hour),
		To:   now,
		Step: time.Minute,
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return req, fmt.Errorf("invalid from parameter, expected RFC3339")
		}
		req.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return req, fmt.Errorf("invalid to parameter, expected RFC3339")
		}
		req.To = t
	}
	if step := c.Query("step"); step != "" {
		d, err := time.ParseDuration(step)
		if err != nil || d <= 0 {
			return req, fmt.Errorf("invalid step parameter, expected a positive duration")
		}
		req.Step = d
	}
	return req, nil
}
