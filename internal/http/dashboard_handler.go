package httpapi

import (
	"net/http"
	"strings"

	"cake-tracker/internal/aggregate"
	"cake-tracker/internal/service"

	"go.uber.org/zap"
)

// DashboardHandler 首页、统计页与导出
type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.dashboardService.Dashboard()))
}

// GetStats ?range=3months|6months|1year, defaults to 6months
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	tr := aggregate.DefaultTimeRange
	if raw := strings.TrimSpace(r.URL.Query().Get("range")); raw != "" {
		parsed, ok := aggregate.ParseTimeRange(raw)
		if !ok {
			writeJSON(w, http.StatusOK, Fail("invalid range: "+raw))
			return
		}
		tr = parsed
	}
	writeJSON(w, http.StatusOK, Ok(h.dashboardService.Stats(tr)))
}

func (h *DashboardHandler) ExportIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, board := h.dashboardService.ExportData()

	data, err := GenerateIncidentsExport(incidents, board)
	if err != nil {
		h.logger.Error("Failed to generate incidents export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate export"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=cake-incidents.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
