package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidInput(t *testing.T) {
	assert.ErrorIs(t, Run("", Up), ErrMissingDSN)
	assert.ErrorIs(t, Run("postgres://localhost/db", "sideways"), ErrInvalidDirection)
}

func TestEmbeddedFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
