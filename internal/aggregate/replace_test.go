package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exobase-inc/exo-api/internal/domain"
)

func TestReplace_SwapsMatchingElement(t *testing.T) {
	list := []string{"a", "b", "c"}

	out, err := Replace(list, func(s string) bool { return s == "b" }, "B")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "B", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c"}, list)
}

func TestReplace_FirstMatchOnly(t *testing.T) {
	list := []int{1, 2, 2, 3}

	out, err := Replace(list, func(n int) bool { return n == 2 }, 9)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 9, 2, 3}, out)
}

func TestReplace_NoMatchFails(t *testing.T) {
	list := []string{"a", "b"}

	out, err := Replace(list, func(s string) bool { return s == "z" }, "Z")

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestReplace_EmptyListFails(t *testing.T) {
	_, err := Replace(nil, func(s string) bool { return true }, "x")
	assert.ErrorIs(t, err, domain.ErrElementNotFound)
}

func TestReplace_ReturnsFreshSlice(t *testing.T) {
	list := []domain.Deployment{
		{ID: "exo.deploy.a"},
		{ID: "exo.deploy.b"},
	}

	out, err := Replace(list, func(d domain.Deployment) bool {
		return d.ID == "exo.deploy.b"
	}, domain.Deployment{ID: "exo.deploy.b", LogID: "exo.log.x"})
	require.NoError(t, err)

	// Mutating the result must not leak into the input.
	out[0].ID = "exo.deploy.mutated"
	assert.Equal(t, domain.ID("exo.deploy.a"), list[0].ID)
	assert.Equal(t, domain.ID(""), list[1].LogID)
}
