package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "out.csv")

	require.NoError(t, SafeWriteFile(p, []byte("first")))
	require.NoError(t, SafeWriteFile(p, []byte("second")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not linger")
}
