package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/homeinv/internal/imagestore"
	"github.com/vbonduro/homeinv/internal/service"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	locationID, err := parseOptionalID(r.URL.Query().Get("locationId"))
	if err != nil {
		s.writeBadRequest(w, "invalid locationId")
		return
	}
	regionID, err := parseOptionalID(r.URL.Query().Get("regionId"))
	if err != nil {
		s.writeBadRequest(w, "invalid regionId")
		return
	}

	items, err := s.inventory.ListItems(r.Context(), locationID, regionID)
	if err != nil {
		s.writeError(w, err, "failed to list items")
		return
	}

	s.writeJSON(w, http.StatusOK, toItemResponses(items))
}

// itemFormInput pulls the shared create/update form fields.
func (s *Server) itemFormInput(w http.ResponseWriter, r *http.Request) (service.ItemInput, bool) {
	var in service.ItemInput

	if err := parseForm(r); err != nil {
		s.writeBadRequest(w, "failed to parse form")
		return in, false
	}

	in.Name = strings.TrimSpace(r.FormValue("name"))
	if in.Name == "" {
		s.writeBadRequest(w, "item name required")
		return in, false
	}
	if len(in.Name) > maxNameLen {
		s.writeBadRequest(w, "item name too long")
		return in, false
	}
	in.Description = r.FormValue("description")

	in.Quantity = 1
	if raw := r.FormValue("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			s.writeBadRequest(w, "invalid quantity")
			return in, false
		}
		in.Quantity = qty
	}

	locationID, err := parseOptionalID(r.FormValue("locationId"))
	if err != nil {
		s.writeBadRequest(w, "invalid locationId")
		return in, false
	}
	in.LocationID = locationID

	regionID, err := parseOptionalID(r.FormValue("regionId"))
	if err != nil {
		s.writeBadRequest(w, "invalid regionId")
		return in, false
	}
	in.RegionID = regionID

	imagePath, err := s.saveUpload(r, imagestore.CategoryInventory)
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

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	in, ok := s.itemFormInput(w, r)
	if !ok {
		return
	}

	item, err := s.inventory.CreateItem(r.Context(), in)
	if err != nil {
		s.writeError(w, err, "failed to create item")
		return
	}

	s.writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	item, err := s.inventory.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	in, ok := s.itemFormInput(w, r)
	if !ok {
		return
	}

	item, err := s.inventory.UpdateItem(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err, "failed to update item")
		return
	}

	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	if err := s.inventory.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, err, "failed to delete item")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleConsumeItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	item, err := s.inventory.ConsumeOne(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to consume item")
		return
	}

	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleHighlightItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	h, err := s.inventory.HighlightItem(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to highlight item")
		return
	}

	s.writeJSON(w, http.StatusOK, toHighlightResponse(h))
}
