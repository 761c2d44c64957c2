package migration

import "go.mongodb.org/mongo-driver/bson"

// Raw documents arrive as bson.M with bson.A children when decoded by
// the store (DefaultDocumentM), and as plain maps in fixtures. The
// helpers below accept both.

func asDoc(v any) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case map[string]any:
		return bson.M(d), true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case bson.A:
		return s, true
	case []any:
		return s, true
	}
	return nil, false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

// cloneDoc copies one level of a document so migrations can replace
// keys without mutating their input.
func cloneDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
