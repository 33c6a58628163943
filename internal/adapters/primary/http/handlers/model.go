package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetModel(c *gin.Context) {
	info, err := h.predictSvc.Info()
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ReloadModel re-reads the artifact from disk, picking up a newly
// trained pipeline without a restart.
func (h *Handler) ReloadModel(c *gin.Context) {
	if err := h.predictSvc.LoadModel(); err != nil {
		mapDomainError(c, err)
		return
	}

	info, err := h.predictSvc.Info()
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
