package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	testCases := []struct {
		input, want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/~", "relative/~"},
		{"~", "/home/tester"},
		{"~/data/vectors.txt", "/home/tester/data/vectors.txt"},
	}
	for _, tc := range testCases {
		got, err := ExpandHome(tc.input)
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash(tc.want), got, "ExpandHome(%q)", tc.input)
	}

	_, err := ExpandHome("~no-such-user-textaug/file")
	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "file")
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filePath))
	require.NoError(t, os.WriteFile(filePath, nil, 0644))
	assert.True(t, Exists(filePath))
}
