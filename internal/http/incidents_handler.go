package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"cake-tracker/internal/domain"
	"cake-tracker/internal/service"

	"go.uber.org/zap"
)

const incidentsPath = "/api/v1/incidents"

// IncidentsHandler 事件录入、列表与送达切换
type IncidentsHandler struct {
	incidentService *service.IncidentService
	logger          *zap.Logger
}

func NewIncidentsHandler(incidentService *service.IncidentService, logger *zap.Logger) *IncidentsHandler {
	return &IncidentsHandler{
		incidentService: incidentService,
		logger:          logger,
	}
}

// IncidentListResponse newest first. Stale is set when the last refresh failed
// and the previous list is being served.
type IncidentListResponse struct {
	Items []domain.Incident `json:"items"`
	Total int               `json:"total"`
	Stale bool              `json:"stale,omitempty"`
}

func (h *IncidentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == incidentsPath && r.Method == http.MethodGet:
		h.ListIncidents(w, r)
	case path == incidentsPath && r.Method == http.MethodPost:
		h.AddIncident(w, r)
	case path == incidentsPath+"/refresh" && r.Method == http.MethodPost:
		h.RefreshIncidents(w, r)
	case strings.HasPrefix(path, incidentsPath+"/") && strings.HasSuffix(path, "/delivered") && r.Method == http.MethodPut:
		id := strings.TrimSuffix(strings.TrimPrefix(path, incidentsPath+"/"), "/delivered")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.SetDelivered(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *IncidentsHandler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	items := h.incidentService.ListIncidents()
	writeJSON(w, http.StatusOK, Ok(IncidentListResponse{Items: items, Total: len(items)}))
}

// RefreshIncidents reloads from the store. A failed read still answers with
// the previous list.
func (h *IncidentsHandler) RefreshIncidents(w http.ResponseWriter, r *http.Request) {
	err := h.incidentService.Refresh(r.Context())
	items := h.incidentService.ListIncidents()
	writeJSON(w, http.StatusOK, Ok(IncidentListResponse{Items: items, Total: len(items), Stale: err != nil}))
}

func (h *IncidentsHandler) AddIncident(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonName string `json:"person_name"`
		Notes      string `json:"notes"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	inc, err := h.incidentService.AddIncident(r.Context(), service.AddIncidentRequest{
		PersonName: payload.PersonName,
		Notes:      payload.Notes,
	})
	if err != nil {
		var blocked *service.BlockedError
		switch {
		case errors.As(err, &blocked):
			writeJSON(w, http.StatusOK, Blocked(blocked.Message))
		case errors.Is(err, service.ErrPersonNameRequired), errors.Is(err, service.ErrSubmissionInFlight):
			writeJSON(w, http.StatusOK, Fail(err.Error()))
		default:
			writeJSON(w, http.StatusOK, Fail("failed to add incident"))
		}
		return
	}

	writeJSON(w, http.StatusOK, Ok(inc))
}

func (h *IncidentsHandler) SetDelivered(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		CakeDelivered *bool `json:"cake_delivered"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil || payload.CakeDelivered == nil {
		writeJSON(w, http.StatusOK, Fail("cake_delivered is required"))
		return
	}

	inc, err := h.incidentService.ToggleDelivered(r.Context(), id, *payload.CakeDelivered)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to update incident"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(inc))
}
