// Package aggregate holds the immutable nested-update helpers for the
// workspace tree. A document store that only offers whole-document
// replace gives atomicity for exactly one write, so every nested edit
// rebuilds its containing levels bottom-up and the caller persists
// the rebuilt root once.
package aggregate

import "github.com/exobase-inc/exo-api/internal/domain"

// Replace returns a new slice equal to list except the first element
// matching pred is swapped for next. The input slice and its other
// elements are left untouched. Fails with ErrElementNotFound when no
// element matches; this function never inserts.
func Replace[T any](list []T, pred func(T) bool, next T) ([]T, error) {
	idx := -1
	for i, item := range list {
		if pred(item) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrElementNotFound
	}

	out := make([]T, len(list))
	copy(out, list)
	out[idx] = next
	return out, nil
}
