package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
)

// EvaluateDrift runs both detectors on demand, outside the scheduled
// monitor cycle.
func (h *Handler) EvaluateDrift(c *gin.Context) {
	reports, skipped, err := h.driftSvc.Evaluate(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"skipped": skipped,
	})
}

func (h *Handler) ListDriftReports(c *gin.Context) {
	filter := ports.DriftListFilter{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if kind := c.Query("kind"); kind != "" {
		if err := domain.ValidateDriftKind(kind); err != nil {
			mapDomainError(c, err)
			return
		}
		filter.Kind = domain.DriftKind(kind)
	}

	reports, total, err := h.driftSvc.ListReports(c.Request.Context(), filter)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *Handler) GetDriftReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid drift report id"})
		return
	}

	report, err := h.driftSvc.GetReport(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
