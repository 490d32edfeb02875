package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LnD-Brainstaiton/ld-training-api/internal/dto"
	"github.com/LnD-Brainstaiton/ld-training-api/internal/middleware"
	appErrors "github.com/LnD-Brainstaiton/ld-training-api/pkg/errors"
	"github.com/LnD-Brainstaiton/ld-training-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, period, month, quarter string, year int) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Aggregated training dashboard
// @Tags Dashboard
// @Produce json
// @Param period query string false "Reporting period (month, quarter, year, all_time)"
// @Param month query string false "Month selector 0-11, used with period=month"
// @Param quarter query string false "Quarter selector 1-4, used with period=quarter"
// @Param year query int false "Year, defaults to the current year"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	period := strings.TrimSpace(c.Query("period"))
	month := strings.TrimSpace(c.Query("month"))
	quarter := strings.TrimSpace(c.Query("quarter"))
	year := time.Now().Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
			return
		}
		year = parsed
	}

	start := time.Now()
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), period, month, quarter, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
