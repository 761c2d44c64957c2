package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exobase-inc/exo-api/internal/api/middleware"
	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/service"
)

// PlatformHandler handles platform endpoints
type PlatformHandler struct {
	platforms *service.PlatformService
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(platforms *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

// Create handles platform creation inside a workspace
func (h *PlatformHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	workspaceID, err := domain.ParseIDKind(chi.URLParam(r, "workspaceID"), domain.KindWorkspace)
	if err != nil {
		response.BadRequest(w, "invalid workspace ID")
		return
	}

	var input service.PlatformCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	platform, err := h.platforms.Create(r.Context(), actor, workspaceID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, platform)
}

// Get handles getting a platform by ID
func (h *PlatformHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	platform, err := h.platforms.Find(r.Context(), actor, platformID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, platform)
}

// UpdateProvider handles storing provider credentials
func (h *PlatformHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
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

	var input service.ProviderUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	platform, err := h.platforms.UpdateProvider(r.Context(), actor, platformID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, platform)
}

// AddSource handles connecting a source repository
func (h *PlatformHandler) AddSource(w http.ResponseWriter, r *http.Request) {
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

	var input service.SourceAdd
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	platform, err := h.platforms.AddSource(r.Context(), actor, platformID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, platform)
}

func platformParam(r *http.Request) (domain.ID, error) {
	return domain.ParseIDKind(chi.URLParam(r, "platformID"), domain.KindPlatform)
}

func unitParam(r *http.Request) (domain.ID, error) {
	return domain.ParseIDKind(chi.URLParam(r, "unitID"), domain.KindUnit)
}

func deploymentParam(r *http.Request) (domain.ID, error) {
	return domain.ParseIDKind(chi.URLParam(r, "deploymentID"), domain.KindDeployment)
}
