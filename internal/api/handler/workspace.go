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

// WorkspaceHandler handles workspace endpoints
type WorkspaceHandler struct {
	workspaces *service.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(workspaces *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// Create handles workspace creation
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input service.WorkspaceCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	workspace, err := h.workspaces.Create(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, workspace)
}

// List handles listing the user's workspaces
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	workspaces, err := h.workspaces.ListForUser(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, workspaces)
}

// Get handles getting a workspace by ID
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	workspace, err := h.workspaces.Find(r.Context(), actor, workspaceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, workspace)
}

// MemberAdd is the request body for adding a workspace member.
type MemberAdd struct {
	User domain.UserRef    `json:"user" validate:"required"`
	Role domain.MemberRole `json:"role" validate:"required,oneof=owner developer auditor"`
}

// AddMember handles adding a member to a workspace
func (h *WorkspaceHandler) AddMember(w http.ResponseWriter, r *http.Request) {
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

	var input MemberAdd
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	workspace, err := h.workspaces.AddMember(r.Context(), actor, workspaceID, input.User, input.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, workspace)
}
