package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ports "model-inference-service/internal/core/ports/output"
)

type feedbackRequest struct {
	Actual float64 `json:"actual" binding:"required"`
}

// Predict serves a single prediction. The request body is the flat
// feature object, matching what the trainer saw as CSV columns.
func (h *Handler) Predict(c *gin.Context) {
	var features map[string]interface{}
	if err := c.ShouldBindJSON(&features); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	record, err := h.predictSvc.Predict(c.Request.Context(), features)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction":    record.Predicted,
		"prediction_id": record.ID,
		"model_version": record.ModelVersion,
		"latency_ms":    record.LatencyMs,
	})
}

func (h *Handler) PredictBatch(c *gin.Context) {
	var batch []map[string]interface{}
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	records, err := h.predictSvc.PredictBatch(c.Request.Context(), batch)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
	})
}

func (h *Handler) GetPrediction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	record, err := h.predictSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) ListPredictions(c *gin.Context) {
	filter := ports.ListFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp, expected RFC3339"})
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp, expected RFC3339"})
			return
		}
		filter.To = t
	}

	records, total, err := h.predictSvc.List(c.Request.Context(), filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"total":       total,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})
}

func (h *Handler) CreateFeedback(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	fb, err := h.predictSvc.RecordFeedback(c.Request.Context(), id, req.Actual)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fb)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
