package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumakit/lights-core/internal/audit"
	"github.com/lumakit/lights-core/internal/light"
)

// Power state travels as a string because clients submit form-style
// values; light.ParseBool accepts only an enumerated set.
type createLightRequest struct {
	Name        string `json:"name"`
	IsPoweredOn string `json:"is_powered_on,omitempty"`
}

type updateLightRequest struct {
	Name        *string `json:"name,omitempty"`
	IsPoweredOn *string `json:"is_powered_on,omitempty"`
}

type setPowerRequest struct {
	State string `json:"state"`
}

// handleListLights returns all lights ordered by name.
func (s *Server) handleListLights(w http.ResponseWriter, r *http.Request) {
	lights, err := s.lights.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to list lights")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lights": lights,
		"count":  len(lights),
	})
}

// handleCreateLight creates a new light.
func (s *Server) handleCreateLight(w http.ResponseWriter, r *http.Request) {
	var req createLightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := light.ValidateName(r.Context(), req.Name); err != nil {
		s.writeDomainError(w, err, "failed to create light")
		return
	}

	poweredOn := false
	if req.IsPoweredOn != "" {
		var err error
		poweredOn, err = light.ParseBool(req.IsPoweredOn)
		if err != nil {
			s.writeDomainError(w, err, "failed to create light")
			return
		}
	}

	l := &light.Light{
		Name:        req.Name,
		IsPoweredOn: poweredOn,
	}
	if err := s.lights.Create(r.Context(), l); err != nil {
		s.writeDomainError(w, err, "failed to create light")
		return
	}

	actor := userFromContext(r.Context())
	s.logger.Info("light created", "light_id", l.ID, "name", l.Name, "created_by", actor.ID)
	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityLight,
		EntityID:   l.ID,
		UserID:     actor.ID,
		Details:    map[string]any{"name": l.Name},
	})

	writeJSON(w, http.StatusCreated, l)
}

// handleGetLight returns a single light by ID.
func (s *Server) handleGetLight(w http.ResponseWriter, r *http.Request) {
	l, err := s.lights.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to get light")
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// handleUpdateLight modifies a light's name and/or power state.
func (s *Server) handleUpdateLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	var req updateLightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	l, err := s.lights.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to update light")
		return
	}

	if req.Name != nil {
		if err := light.ValidateName(r.Context(), *req.Name); err != nil {
			s.writeDomainError(w, err, "failed to update light")
			return
		}
		l.Name = *req.Name
	}
	if req.IsPoweredOn != nil {
		poweredOn, err := light.ParseBool(*req.IsPoweredOn)
		if err != nil {
			s.writeDomainError(w, err, "failed to update light")
			return
		}
		l.IsPoweredOn = poweredOn
	}

	if err := s.lights.Update(r.Context(), l); err != nil {
		s.writeDomainError(w, err, "failed to update light")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLight,
		EntityID:   id,
		UserID:     actor.ID,
	})

	writeJSON(w, http.StatusOK, l)
}

// handleSetLightPower switches a light on or off.
func (s *Server) handleSetLightPower(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	var req setPowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	poweredOn, err := light.ParseBool(req.State)
	if err != nil {
		s.writeDomainError(w, err, "failed to set power state")
		return
	}

	l, err := s.lights.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, "failed to set power state")
		return
	}

	l.IsPoweredOn = poweredOn
	if err := s.lights.Update(r.Context(), l); err != nil {
		s.writeDomainError(w, err, "failed to set power state")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityLight,
		EntityID:   id,
		UserID:     actor.ID,
		Details:    map[string]any{"is_powered_on": poweredOn},
	})

	writeJSON(w, http.StatusOK, l)
}

// handleDeleteLight removes a light.
func (s *Server) handleDeleteLight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := userFromContext(r.Context())

	if err := s.lights.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err, "failed to delete light")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityLight,
		EntityID:   id,
		UserID:     actor.ID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteAllLights clears the light inventory.
func (s *Server) handleDeleteAllLights(w http.ResponseWriter, r *http.Request) {
	actor := userFromContext(r.Context())

	if err := s.lights.DeleteAll(r.Context()); err != nil {
		s.writeDomainError(w, err, "failed to delete lights")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityLight,
		UserID:     actor.ID,
		Details:    map[string]any{"scope": "all"},
	})

	w.WriteHeader(http.StatusNoContent)
}
