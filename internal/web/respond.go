package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/imagestore"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy to HTTP statuses. Validation,
// not-found, and constraint errors carry their message to the caller;
// anything else is logged in full and surfaced as a generic failure.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrCycleDetected):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: domain.ErrCycleDetected.Error()})
	case errors.Is(err, domain.ErrConstraintViolation):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, imagestore.ErrInvalidCategory):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: imagestore.ErrInvalidCategory.Error()})
	default:
		s.logger.Error(fallback, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
