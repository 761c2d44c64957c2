package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func testObjectID(t *testing.T) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex("000000000000000000000001")
	require.NoError(t, err)
	return oid
}

func TestReplaceFilter_MatchesStoredRevision(t *testing.T) {
	oid := testObjectID(t)

	filter := replaceFilter(oid, 4)

	assert.Equal(t, bson.M{"_id": oid, "_revision": int64(4)}, filter)
}

// Documents written before revision tracking have no _revision field
// and decode as revision zero. The replace filter must still match
// them, or they could never be mutated again.
func TestReplaceFilter_ZeroRevisionMatchesMissingField(t *testing.T) {
	oid := testObjectID(t)

	filter := replaceFilter(oid, 0)

	assert.Equal(t, bson.M{
		"_id":       oid,
		"_revision": bson.M{"$in": bson.A{int64(0), nil}},
	}, filter)
}

func TestWriteBackFilter_GuardsOnReadRevision(t *testing.T) {
	oid := testObjectID(t)

	filter := writeBackFilter(bson.M{"_id": oid, "_revision": int64(7), "name": "acme"})

	assert.Equal(t, bson.M{"_id": oid, "_revision": int64(7)}, filter)
}

func TestWriteBackFilter_LegacyDocumentWithoutRevision(t *testing.T) {
	oid := testObjectID(t)

	filter := writeBackFilter(bson.M{"_id": oid, "name": "acme"})

	// nil matches documents missing the field.
	assert.Equal(t, bson.M{"_id": oid, "_revision": nil}, filter)
}

func TestWorkspaceFromDocument_MissingRevisionDecodesAsZero(t *testing.T) {
	ws, err := workspaceFromDocument(bson.M{
		"id":   "exo.workspace.000000000000000000000001",
		"name": "acme",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), ws.Revision)
}

func TestWorkspaceToDocument_CarriesRevisionAndVersion(t *testing.T) {
	ws := &domain.Workspace{
		ID:       "exo.workspace.000000000000000000000001",
		Name:     "acme",
		Revision: 3,
	}

	doc, err := workspaceToDocument(ws, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), doc["_revision"])
	assert.Equal(t, int32(3), doc["_version"])
	assert.Equal(t, testObjectID(t), doc["_id"])
}
