package httpapi

import (
	"net/http"

	"cake-tracker/internal/domain"
	"cake-tracker/internal/suggest"

	"go.uber.org/zap"
)

// SuggestionsHandler 姓名自动补全
type SuggestionsHandler struct {
	lookup *suggest.Lookup
	logger *zap.Logger
}

func NewSuggestionsHandler(lookup *suggest.Lookup, logger *zap.Logger) *SuggestionsHandler {
	return &SuggestionsHandler{lookup: lookup, logger: logger}
}

// SuggestionsResponse echoes seq so a client can drop responses older than
// its latest keystroke.
type SuggestionsResponse struct {
	Seq         string                  `json:"seq"`
	Query       string                  `json:"query"`
	Suggestions []domain.NameSuggestion `json:"suggestions"`
}

// GetSuggestions never fails: a lookup error yields no suggestions.
func (h *SuggestionsHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := SuggestionsResponse{
		Seq:         q.Get("seq"),
		Query:       q.Get("q"),
		Suggestions: []domain.NameSuggestion{},
	}

	got, err := h.lookup.Suggest(r.Context(), resp.Query)
	if err != nil {
		h.logger.Warn("Name suggestion lookup failed", zap.String("query", resp.Query), zap.Error(err))
	} else if got != nil {
		resp.Suggestions = got
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}
