package migration

import "go.mongodb.org/mongo-driver/bson"

// Engine applies registered migrations to raw documents on the read
// path.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over a registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry exposes the engine's registry for version stamping.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Upgrade applies migrations to doc until it reaches the collection's
// current version. The second return reports whether anything changed
// and therefore whether a write-back is due.
//
// A document whose version has no registered migration is returned
// as-is: unmigratable legacy shapes pass through rather than fail,
// trading strict schema enforcement for availability.
func (e *Engine) Upgrade(collection string, doc bson.M) (bson.M, bool) {
	target := e.registry.CurrentVersion(collection)
	changed := false

	for {
		from := docVersion(doc)
		if from >= target {
			return doc, changed
		}

		fn := e.registry.MigrationFor(collection, from)
		if fn == nil {
			return doc, changed
		}

		doc = fn(doc)
		// Migrations advance exactly one version; stamp it in case
		// the function forgot.
		if docVersion(doc) != from+1 {
			doc["_version"] = int32(from + 1)
		}
		changed = true
	}
}

// docVersion reads the _version tag, defaulting to 1 for documents
// written before versioning existed.
func docVersion(doc bson.M) int {
	switch v := doc["_version"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}
