package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/homeinv/internal/domain"
)

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	regions, err := s.locations.ListRegions(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to list regions")
		return
	}

	s.writeJSON(w, http.StatusOK, toRegionResponses(regions))
}

// handleSetRegions replaces a location's whole region set from a JSON array.
func (s *Server) handleSetRegions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	var reqs []regionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeBadRequest(w, "invalid region list")
		return
	}

	regions := make([]*domain.Region, 0, len(reqs))
	for _, req := range reqs {
		regions = append(regions, req.toDomain())
	}

	stored, err := s.locations.SetRegions(r.Context(), id, regions)
	if err != nil {
		s.writeError(w, err, "failed to set regions")
		return
	}

	s.writeJSON(w, http.StatusOK, toRegionResponses(stored))
}

// handleRegionAt finds the first stored region containing the query point.
func (s *Server) handleRegionAt(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	x, err := parseCoord(r, "x")
	if err != nil {
		s.writeBadRequest(w, "invalid x coordinate")
		return
	}
	y, err := parseCoord(r, "y")
	if err != nil {
		s.writeBadRequest(w, "invalid y coordinate")
		return
	}

	region, err := s.locations.FindRegionAt(r.Context(), id, x, y)
	if err != nil {
		s.writeError(w, err, "failed to look up region")
		return
	}
	if region == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no region at point"})
		return
	}

	s.writeJSON(w, http.StatusOK, toRegionResponse(region))
}
