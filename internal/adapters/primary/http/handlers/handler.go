package handlers

import (
	"model-inference-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	predictSvc *services.PredictionService
	driftSvc   *services.DriftService
	statsSvc   *services.StatsService
}

func New(
	predictSvc *services.PredictionService,
	driftSvc *services.DriftService,
	statsSvc *services.StatsService,
) *Handler {
	return &Handler{
		predictSvc: predictSvc,
		driftSvc:   driftSvc,
		statsSvc:   statsSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Model
	r.GET("/model", h.GetModel)
	r.POST("/model/reload", h.ReloadModel)

	// Predictions
	r.POST("/predict/batch", h.PredictBatch)
	r.GET("/predictions", h.ListPredictions)
	r.GET("/predictions/:id", h.GetPrediction)
	r.POST("/predictions/:id/feedback", h.CreateFeedback)

	// Drift
	r.POST("/drift/evaluate", h.EvaluateDrift)
	r.GET("/drift/reports", h.ListDriftReports)
	r.GET("/drift/reports/:id", h.GetDriftReport)

	// Serving stats
	r.GET("/stats/serving", h.GetServingStats)
}
