package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/migration"
)

// WorkspaceRepository persists workspace aggregates as single
// documents. Reads run stale documents through the migration engine
// and write the upgraded shape back so later reads skip the work.
type WorkspaceRepository struct {
	store  *Store
	engine *migration.Engine
	log    zerolog.Logger
}

var _ domain.WorkspaceRepository = (*WorkspaceRepository)(nil)

// NewWorkspaceRepository creates a workspace repository.
func NewWorkspaceRepository(store *Store, engine *migration.Engine, log zerolog.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		store:  store,
		engine: engine,
		log:    log.With().Str("component", "workspace-repository").Logger(),
	}
}

// Insert writes a new workspace at the current schema version with
// revision 1.
func (r *WorkspaceRepository) Insert(ctx context.Context, workspace *domain.Workspace) error {
	workspace.Revision = 1
	doc, err := workspaceToDocument(workspace, r.engine.Registry().CurrentVersion(migration.CollectionWorkspaces))
	if err != nil {
		return err
	}
	return r.store.InsertOne(ctx, migration.CollectionWorkspaces, doc)
}

// FindByID returns the workspace with the given id, migrated to the
// current schema version, or nil when it does not exist.
func (r *WorkspaceRepository) FindByID(ctx context.Context, id domain.ID) (*domain.Workspace, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByPlatformID returns the unique workspace embedding the given
// platform, or nil when none does.
func (r *WorkspaceRepository) FindByPlatformID(ctx context.Context, platformID domain.ID) (*domain.Workspace, error) {
	return r.findOne(ctx, bson.M{"platforms.id": string(platformID)})
}

// ListForUser returns every workspace the user is a member of.
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID domain.ID) ([]domain.Workspace, error) {
	docs, err := r.store.Find(ctx, migration.CollectionWorkspaces, bson.M{"members.user.id": string(userID)})
	if err != nil {
		return nil, err
	}

	workspaces := make([]domain.Workspace, 0, len(docs))
	for _, doc := range docs {
		upgraded, changed := r.engine.Upgrade(migration.CollectionWorkspaces, doc)
		if changed {
			r.writeBack(ctx, upgraded)
		}
		ws, err := workspaceFromDocument(upgraded)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, *ws)
	}
	return workspaces, nil
}

// Replace rewrites the whole aggregate, guarded by the revision read
// with it. A zero match means another writer got there first.
func (r *WorkspaceRepository) Replace(ctx context.Context, workspace *domain.Workspace) error {
	oid, err := objectID(workspace.ID)
	if err != nil {
		return err
	}

	expected := workspace.Revision
	workspace.Revision = expected + 1
	doc, err := workspaceToDocument(workspace, r.engine.Registry().CurrentVersion(migration.CollectionWorkspaces))
	if err != nil {
		workspace.Revision = expected
		return err
	}

	matched, err := r.store.ReplaceOne(ctx, migration.CollectionWorkspaces,
		replaceFilter(oid, expected), doc)
	if err != nil {
		workspace.Revision = expected
		return err
	}
	if matched == 0 {
		workspace.Revision = expected
		return domain.ErrConcurrentModification
	}
	return nil
}

// replaceFilter matches the document by id and the revision it was
// read at. Documents written before revision tracking carry no
// _revision field and decode as revision zero; nil matches both a
// missing field and an explicit null, so those documents stay
// replaceable.
func replaceFilter(oid primitive.ObjectID, expected int64) bson.M {
	if expected == 0 {
		return bson.M{"_id": oid, "_revision": bson.M{"$in": bson.A{int64(0), nil}}}
	}
	return bson.M{"_id": oid, "_revision": expected}
}

func (r *WorkspaceRepository) findOne(ctx context.Context, filter bson.M) (*domain.Workspace, error) {
	doc, err := r.store.FindOne(ctx, migration.CollectionWorkspaces, filter)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	upgraded, changed := r.engine.Upgrade(migration.CollectionWorkspaces, doc)
	if changed {
		r.writeBack(ctx, upgraded)
	}
	return workspaceFromDocument(upgraded)
}

// writeBack persists a freshly migrated document. Failure is logged,
// not surfaced: the caller already has the upgraded shape, and the
// same migration will simply run again on the next read. The replace
// is guarded by the revision the document was read at, so a concurrent
// writer's committed aggregate is never overwritten with the stale
// migrated shape; losing that race is benign.
func (r *WorkspaceRepository) writeBack(ctx context.Context, doc bson.M) {
	id := doc["_id"]
	filter := writeBackFilter(doc)
	if doc["_revision"] == nil {
		// Stamp documents that predate revision tracking so future
		// replaces match on a stored value.
		doc["_revision"] = int64(0)
	}
	matched, err := r.store.ReplaceOne(ctx, migration.CollectionWorkspaces, filter, doc)
	if err != nil {
		r.log.Warn().Err(err).Any("id", id).Msg("migration write-back failed")
		return
	}
	if matched == 0 {
		r.log.Debug().Any("id", id).Msg("migration write-back skipped, document was replaced concurrently")
	}
}

// writeBackFilter guards the write-back with the revision read with
// the document. A nil revision matches documents that have none yet.
func writeBackFilter(doc bson.M) bson.M {
	return bson.M{"_id": doc["_id"], "_revision": doc["_revision"]}
}

// workspaceToDocument renders the aggregate as a raw document with
// its _id, _version and _revision bookkeeping fields.
func workspaceToDocument(workspace *domain.Workspace, version int) (bson.M, error) {
	raw, err := bson.Marshal(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workspace: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert workspace document: %w", err)
	}

	oid, err := objectID(workspace.ID)
	if err != nil {
		return nil, err
	}
	doc["_id"] = oid
	doc["_version"] = int32(version)
	return doc, nil
}

// workspaceFromDocument decodes a migrated raw document into the
// aggregate type. Unknown legacy fields are dropped.
func workspaceFromDocument(doc bson.M) (*domain.Workspace, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workspace document: %w", err)
	}
	var workspace domain.Workspace
	if err := bson.Unmarshal(raw, &workspace); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace: %w", err)
	}
	return &workspace, nil
}

// objectID converts the identifier's random suffix into the document
// primary key, matching how ids have always been stored.
func objectID(id domain.ID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id.Suffix())
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q has no valid object id suffix: %w", id, err)
	}
	return oid, nil
}
