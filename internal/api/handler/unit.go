package handler

import (
	"encoding/json"
	"net/http"

	"github.com/exobase-inc/exo-api/internal/api/middleware"
	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/service"
)

// UnitHandler handles unit endpoints
type UnitHandler struct {
	units *service.UnitService
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(units *service.UnitService) *UnitHandler {
	return &UnitHandler{units: units}
}

// Create handles unit creation inside a platform
func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, err := platformParam(r)
	if err != nil {
		response.BadRequest(w, "invalid platform ID")
		return
	}

	var input service.UnitCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	unit, err := h.units.Create(r.Context(), actor, platformID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, unit)
}

// Get handles getting a unit by ID
func (h *UnitHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, err := platformParam(r)
	if err != nil {
		response.BadRequest(w, "invalid platform ID")
		return
	}
	unitID, err := unitParam(r)
	if err != nil {
		response.BadRequest(w, "invalid unit ID")
		return
	}

	unit, err := h.units.Find(r.Context(), actor, platformID, unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, unit)
}

// UpdateConfig handles replacing a unit's provisioning config
func (h *UnitHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, err := platformParam(r)
	if err != nil {
		response.BadRequest(w, "invalid platform ID")
		return
	}
	unitID, err := unitParam(r)
	if err != nil {
		response.BadRequest(w, "invalid unit ID")
		return
	}

	var cfg domain.UnitConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	unit, err := h.units.UpdateConfig(r.Context(), actor, platformID, unitID, cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, unit)
}

// Delete handles soft-deleting a unit
func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, err := platformParam(r)
	if err != nil {
		response.BadRequest(w, "invalid platform ID")
		return
	}
	unitID, err := unitParam(r)
	if err != nil {
		response.BadRequest(w, "invalid unit ID")
		return
	}

	if err := h.units.MarkDeleted(r.Context(), actor, platformID, unitID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}
