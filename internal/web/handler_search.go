package web

import (
	"net/http"
	"strings"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	items, err := s.inventory.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, err, "failed to search items")
		return
	}

	s.metrics.SearchQueries.Inc()
	s.metrics.SearchResults.Observe(float64(len(items)))

	s.writeJSON(w, http.StatusOK, toItemResponses(items))
}
