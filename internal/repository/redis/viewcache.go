package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/view"
)

const (
	workspaceCachePrefix = "workspace:view:"
	workspaceCacheTTL    = 2 * time.Minute
)

// WorkspaceViewCache keeps rendered workspace views in Redis so hot
// reads skip the document store and the migration pass. Entries are
// invalidated on every aggregate write; the short TTL bounds staleness
// if an invalidation is lost.
type WorkspaceViewCache struct {
	client *Client
}

// NewWorkspaceViewCache creates a workspace view cache.
func NewWorkspaceViewCache(client *Client) *WorkspaceViewCache {
	return &WorkspaceViewCache{client: client}
}

// Get retrieves the cached view for a workspace. A miss returns
// (nil, nil).
func (c *WorkspaceViewCache) Get(ctx context.Context, id domain.ID) (*view.WorkspaceView, error) {
	data, err := c.client.rdb.Get(ctx, workspaceCachePrefix+string(id)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var ws view.WorkspaceView
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace view: %w", err)
	}

	return &ws, nil
}

// Set caches the view for a workspace.
func (c *WorkspaceViewCache) Set(ctx context.Context, id domain.ID, ws *view.WorkspaceView) error {
	data, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace view: %w", err)
	}

	return c.client.rdb.Set(ctx, workspaceCachePrefix+string(id), data, workspaceCacheTTL).Err()
}

// Invalidate removes the cached view for a workspace.
func (c *WorkspaceViewCache) Invalidate(ctx context.Context, id domain.ID) error {
	return c.client.rdb.Del(ctx, workspaceCachePrefix+string(id)).Err()
}
