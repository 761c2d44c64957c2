package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Format(t *testing.T) {
	id := NewID(KindDeployment)

	assert.Equal(t, KindDeployment, id.Kind())
	assert.Len(t, id.Suffix(), 24)
	assert.Regexp(t, `^exo\.deploy\.[0-9a-f]{24}$`, id.String())
}

func TestNewID_Unique(t *testing.T) {
	seen := map[ID]bool{}
	for i := 0; i < 100; i++ {
		id := NewID(KindUnit)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("exo.workspace.0123456789abcdef01234567")
	require.NoError(t, err)
	assert.Equal(t, KindWorkspace, id.Kind())
	assert.Equal(t, "0123456789abcdef01234567", id.Suffix())

	for _, raw := range []string{
		"",
		"workspace.abc",
		"exo.workspace",
		"exo..abc",
		"exo.Workspace.abc",
		"exo.workspace.ABC",
		"other.workspace.abc",
	} {
		_, err := ParseID(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestParseIDKind(t *testing.T) {
	_, err := ParseIDKind("exo.unit.0123456789abcdef01234567", KindUnit)
	assert.NoError(t, err)

	_, err = ParseIDKind("exo.unit.0123456789abcdef01234567", KindPlatform)
	assert.Error(t, err)
}

func TestID_IsZero(t *testing.T) {
	assert.True(t, ID("").IsZero())
	assert.False(t, NewID(KindUser).IsZero())
}
