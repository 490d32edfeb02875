package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/service"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/response"
)

// LMSHandler exposes the learning platform synchronization endpoints.
type LMSHandler struct {
	service *service.LMSSyncService
}

// NewLMSHandler constructs the handler.
func NewLMSHandler(svc *service.LMSSyncService) *LMSHandler {
	return &LMSHandler{service: svc}
}

// Trigger godoc
// @Summary Trigger an LMS synchronization run
// @Tags LMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lms/sync [post]
func (h *LMSHandler) Trigger(c *gin.Context) {
	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Status godoc
// @Summary Result of the most recent LMS synchronization
// @Tags LMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lms/sync/status [get]
func (h *LMSHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.LastResult(), nil)
}
