package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/homeinv/internal/imagestore"
	"github.com/vbonduro/homeinv/internal/service"
)

const maxNameLen = 200

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	var filter service.LocationFilter

	parentID, err := parseOptionalID(r.URL.Query().Get("parentId"))
	if err != nil {
		s.writeBadRequest(w, "invalid parentId")
		return
	}
	filter.ParentID = parentID
	filter.RootOnly = r.URL.Query().Get("root") == "true"

	locs, err := s.locations.ListLocations(r.Context(), filter)
	if err != nil {
		s.writeError(w, err, "failed to list locations")
		return
	}

	s.writeJSON(w, http.StatusOK, toLocationResponses(locs))
}

// locationFormInput pulls the shared create/update form fields.
func (s *Server) locationFormInput(w http.ResponseWriter, r *http.Request) (service.LocationInput, bool) {
	var in service.LocationInput

	if err := parseForm(r); err != nil {
		s.writeBadRequest(w, "failed to parse form")
		return in, false
	}

	in.Name = strings.TrimSpace(r.FormValue("name"))
	if in.Name == "" {
		s.writeBadRequest(w, "location name required")
		return in, false
	}
	if len(in.Name) > maxNameLen {
		s.writeBadRequest(w, "location name too long")
		return in, false
	}
	in.Description = r.FormValue("description")
	in.LocationType = r.FormValue("locationType")

	parentID, err := parseOptionalID(r.FormValue("parentId"))
	if err != nil {
		s.writeBadRequest(w, "invalid parentId")
		return in, false
	}
	in.ParentID = parentID

	imagePath, err := s.saveUpload(r, imagestore.CategoryLocations)
	if err != nil {
		if errors.Is(err, errUnsupportedImage) {
			s.writeBadRequest(w, "unsupported image format")
		} else {
			s.writeError(w, err, "failed to save image")
		}
		return in, false
	}
	in.ImagePath = imagePath

	return in, true
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	in, ok := s.locationFormInput(w, r)
	if !ok {
		return
	}

	loc, err := s.locations.CreateLocation(r.Context(), in)
	if err != nil {
		s.writeError(w, err, "failed to create location")
		return
	}

	s.writeJSON(w, http.StatusCreated, toLocationResponse(loc))
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	loc, err := s.locations.GetLocation(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to get location")
		return
	}
	if loc == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "location not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, toLocationResponse(loc))
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	in, ok := s.locationFormInput(w, r)
	if !ok {
		return
	}

	loc, err := s.locations.UpdateLocation(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err, "failed to update location")
		return
	}

	s.writeJSON(w, http.StatusOK, toLocationResponse(loc))
}

func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	if err := s.locations.DeleteLocation(r.Context(), id); err != nil {
		s.writeError(w, err, "failed to delete location")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	crumbs, err := s.locations.Breadcrumbs(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to get breadcrumbs")
		return
	}

	s.writeJSON(w, http.StatusOK, toBreadcrumbResponses(crumbs))
}

func (s *Server) handleSubtree(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid location id")
		return
	}

	locs, err := s.locations.Subtree(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to get subtree")
		return
	}

	s.writeJSON(w, http.StatusOK, toLocationResponses(locs))
}

// parseCoord parses a required integer query parameter.
func parseCoord(r *http.Request, key string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(key))
}
