package handler

import (
	"encoding/json"
	"net/http"

	"github.com/exobase-inc/exo-api/internal/api/middleware"
	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/service"
)

// DeploymentHandler handles deployment endpoints, both the user-facing
// ones and the builder callbacks.
type DeploymentHandler struct {
	deployments *service.DeploymentService
}

// NewDeploymentHandler creates a new deployment handler
func NewDeploymentHandler(deployments *service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{deployments: deployments}
}

// Deploy handles starting a deployment for a unit
func (h *DeploymentHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, unitID, ok := unitScope(w, r)
	if !ok {
		return
	}

	var input service.DeployInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	deployment, err := h.deployments.Deploy(r.Context(), actor, platformID, unitID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, deployment)
}

// List handles listing a unit's deployments
func (h *DeploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, unitID, ok := unitScope(w, r)
	if !ok {
		return
	}

	deployments, err := h.deployments.ListForUnit(r.Context(), actor, platformID, unitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, deployments)
}

// Cancel handles canceling an in-flight deployment
func (h *DeploymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	platformID, unitID, ok := unitScope(w, r)
	if !ok {
		return
	}
	deploymentID, err := deploymentParam(r)
	if err != nil {
		response.BadRequest(w, "invalid deployment ID")
		return
	}

	deployment, err := h.deployments.Cancel(r.Context(), actor, platformID, unitID, deploymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, deployment)
}

// UpdateStatus handles the builder's ledger append callback
func (h *DeploymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	platformID, unitID, ok := builderScope(w, r)
	if !ok {
		return
	}
	deploymentID, err := deploymentParam(r)
	if err != nil {
		response.BadRequest(w, "invalid deployment ID")
		return
	}

	var input service.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	deployment, err := h.deployments.UpdateStatus(r.Context(), platformID, unitID, deploymentID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, deployment)
}

// RecordOutput handles the builder's output callback
func (h *DeploymentHandler) RecordOutput(w http.ResponseWriter, r *http.Request) {
	platformID, unitID, ok := builderScope(w, r)
	if !ok {
		return
	}
	deploymentID, err := deploymentParam(r)
	if err != nil {
		response.BadRequest(w, "invalid deployment ID")
		return
	}

	var output map[string]any
	if err := json.NewDecoder(r.Body).Decode(&output); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.deployments.RecordOutput(r.Context(), platformID, unitID, deploymentID, output); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// GetContext handles the builder's context fetch
func (h *DeploymentHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	platformID, unitID, ok := builderScope(w, r)
	if !ok {
		return
	}
	deploymentID, err := deploymentParam(r)
	if err != nil {
		response.BadRequest(w, "invalid deployment ID")
		return
	}

	contextView, err := h.deployments.GetContext(r.Context(), platformID, unitID, deploymentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, contextView)
}

// unitScope parses the platform and unit path params.
func unitScope(w http.ResponseWriter, r *http.Request) (domain.ID, domain.ID, bool) {
	platformID, err := platformParam(r)
	if err != nil {
		response.BadRequest(w, "invalid platform ID")
		return "", "", false
	}
	unitID, err := unitParam(r)
	if err != nil {
		response.BadRequest(w, "invalid unit ID")
		return "", "", false
	}
	return platformID, unitID, true
}

// builderScope parses the path params and checks them against the
// platform token: a token minted for one platform cannot touch
// another.
func builderScope(w http.ResponseWriter, r *http.Request) (domain.ID, domain.ID, bool) {
	claims, ok := middleware.GetPlatformClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return "", "", false
	}

	platformID, unitID, ok := unitScope(w, r)
	if !ok {
		return "", "", false
	}
	if claims.PlatformID != platformID {
		response.Forbidden(w, "token is scoped to a different platform")
		return "", "", false
	}
	return platformID, unitID, true
}
