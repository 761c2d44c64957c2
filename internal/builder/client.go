// Package builder talks to the deployment builder service, the worker
// that actually provisions infrastructure. The API only hands it a
// pointer to the persisted deployment; the builder pulls the full
// context back and reports progress through the ledger endpoints.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/exobase-inc/exo-api/internal/config"
	"github.com/exobase-inc/exo-api/internal/domain"
)

// Trigger asks the builder to pick up a deployment.
type Trigger interface {
	TriggerBuild(ctx context.Context, req BuildRequest) error
}

// BuildRequest identifies the deployment the builder should run. The
// platform token lets the builder call back into the API.
type BuildRequest struct {
	DeploymentID  domain.ID `json:"deployment_id"`
	WorkspaceID   domain.ID `json:"workspace_id"`
	PlatformID    domain.ID `json:"platform_id"`
	UnitID        domain.ID `json:"unit_id"`
	LogID         domain.ID `json:"log_id"`
	PlatformToken string    `json:"platform_token"`
}

// Client is the HTTP builder client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

var _ Trigger = (*Client)(nil)

// NewClient creates a builder client.
func NewClient(cfg config.BuilderConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "builder-client").Logger(),
	}
}

// TriggerBuild posts the build request. The deployment is already
// persisted when this runs, so a failure here leaves a queued
// deployment behind rather than losing it.
func (c *Client) TriggerBuild(ctx context.Context, req BuildRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal build request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/builds", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to reach builder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("deployment_id", string(req.DeploymentID)).
			Bytes("body", snippet).
			Msg("builder rejected build request")
		return fmt.Errorf("builder returned status %d", resp.StatusCode)
	}

	c.log.Info().
		Str("deployment_id", string(req.DeploymentID)).
		Str("unit_id", string(req.UnitID)).
		Msg("build triggered")
	return nil
}
