package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEngine_CurrentDocumentPassesThrough(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 2)
	r.Register("things", 1, func(doc bson.M) bson.M {
		out := cloneDoc(doc)
		out["migrated"] = true
		out["_version"] = int32(2)
		return out
	})
	engine := NewEngine(r)

	doc := bson.M{"_version": int32(2), "name": "x"}
	out, changed := engine.Upgrade("things", doc)

	assert.False(t, changed)
	assert.Equal(t, doc, out)
}

func TestEngine_MissingVersionDefaultsToOne(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 2)
	r.Register("things", 1, func(doc bson.M) bson.M {
		out := cloneDoc(doc)
		out["migrated"] = true
		out["_version"] = int32(2)
		return out
	})
	engine := NewEngine(r)

	out, changed := engine.Upgrade("things", bson.M{"name": "x"})

	assert.True(t, changed)
	assert.Equal(t, true, out["migrated"])
	assert.Equal(t, int32(2), out["_version"])
}

func TestEngine_ChainsMigrations(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 3)
	r.Register("things", 1, func(doc bson.M) bson.M {
		out := cloneDoc(doc)
		out["steps"] = append(out["steps"].([]string), "1->2")
		out["_version"] = int32(2)
		return out
	})
	r.Register("things", 2, func(doc bson.M) bson.M {
		out := cloneDoc(doc)
		out["steps"] = append(out["steps"].([]string), "2->3")
		out["_version"] = int32(3)
		return out
	})
	engine := NewEngine(r)

	out, changed := engine.Upgrade("things", bson.M{"_version": 1, "steps": []string{}})

	assert.True(t, changed)
	assert.Equal(t, []string{"1->2", "2->3"}, out["steps"])
	assert.Equal(t, int32(3), out["_version"])
}

func TestEngine_StampsVersionWhenMigrationForgets(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 2)
	r.Register("things", 1, func(doc bson.M) bson.M {
		return cloneDoc(doc) // no _version bump
	})
	engine := NewEngine(r)

	out, changed := engine.Upgrade("things", bson.M{"_version": 1})

	assert.True(t, changed)
	assert.Equal(t, int32(2), out["_version"])
}

func TestEngine_UnmigratableVersionPassesThrough(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 5)
	// No migration registered out of version 2.
	engine := NewEngine(r)

	doc := bson.M{"_version": int32(2), "name": "x"}
	out, changed := engine.Upgrade("things", doc)

	assert.False(t, changed)
	assert.Equal(t, doc, out)
}

func TestEngine_NewerDocumentIsLeftAlone(t *testing.T) {
	r := NewRegistry()
	r.SetCurrent("things", 2)
	engine := NewEngine(r)

	doc := bson.M{"_version": int32(7)}
	out, changed := engine.Upgrade("things", doc)

	assert.False(t, changed)
	assert.Equal(t, int32(7), out["_version"])
}

func TestEngine_UpgradeIsIdempotent(t *testing.T) {
	engine := NewEngine(Default())

	doc := bson.M{
		"_version": int32(1),
		"platforms": bson.A{
			bson.M{
				"id": "exo.platform.p1",
				"services": bson.M{
					"a": bson.M{"id": "exo.unit.a", "createdAt": int64(200), "deployments": bson.A{}},
					"b": bson.M{"id": "exo.unit.b", "createdAt": int64(100), "deployments": bson.A{}},
				},
			},
		},
	}

	once, changed := engine.Upgrade(CollectionWorkspaces, doc)
	require.True(t, changed)

	twice, changedAgain := engine.Upgrade(CollectionWorkspaces, once)
	assert.False(t, changedAgain)
	assert.Equal(t, once, twice)
}
