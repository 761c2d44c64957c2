// Package migration implements lazy, in-document schema migration.
//
// There are no offline migration passes. Documents carry a _version
// tag; whenever one is read, the registered per-version functions are
// applied in order until the document matches the collection's
// current version, and the upgraded document is written back so the
// next read skips the work. Each function is a pure mapping from one
// version to the next, so re-running after a lost write-back produces
// the same result.
package migration

import "go.mongodb.org/mongo-driver/bson"

// Func maps a document from one schema version to the next. It must
// be pure and total over the documented input shape: no I/O, no
// mutation of the input, deterministic output.
type Func func(doc bson.M) bson.M

// Registry declares, per collection, the current target version and
// the migration function for each source version.
type Registry struct {
	current map[string]int
	funcs   map[string]map[int]Func
}

// NewRegistry returns an empty registry. Collections without an entry
// report version 1 and have no migrations.
func NewRegistry() *Registry {
	return &Registry{
		current: map[string]int{},
		funcs:   map[string]map[int]Func{},
	}
}

// SetCurrent declares the version newly written documents carry.
func (r *Registry) SetCurrent(collection string, version int) {
	r.current[collection] = version
}

// Register installs the migration from version `from` to `from+1`.
func (r *Registry) Register(collection string, from int, fn Func) {
	if r.funcs[collection] == nil {
		r.funcs[collection] = map[int]Func{}
	}
	r.funcs[collection][from] = fn
}

// CurrentVersion returns the target version for a collection.
func (r *Registry) CurrentVersion(collection string) int {
	if v, ok := r.current[collection]; ok {
		return v
	}
	return 1
}

// MigrationFor returns the migration out of the given version, or nil
// when none is registered.
func (r *Registry) MigrationFor(collection string, from int) Func {
	return r.funcs[collection][from]
}
