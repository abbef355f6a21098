package vectors

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glove = `king 0.9 0.8 0.1
queen 0.85 0.82 0.15
King 0.9 0.79 0.1
apple 0.1 0.2 0.95
pear 0.12 0.18 0.9
`

func TestReadAndMostSimilar(t *testing.T) {
	m, err := Read(strings.NewReader(glove))
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dimensions())
	assert.Equal(t, 5, m.Len())

	got, err := m.MostSimilar("king", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "king", got[0].Word)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
	words := []string{got[1].Word, got[2].Word}
	assert.ElementsMatch(t, []string{"King", "queen"}, words)

	got, err = m.MostSimilar("apple", 2)
	require.NoError(t, err)
	assert.Equal(t, "pear", got[1].Word)

	_, err = m.MostSimilar("banana", 3)
	assert.True(t, errors.Is(err, ErrUnknownWord))
}

func TestReadWord2VecHeader(t *testing.T) {
	m, err := Read(strings.NewReader("2 2\nup 1 0\ndown -1 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.Dimensions())
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
	_, err = Read(strings.NewReader("a 1 2\nb 1\n"))
	assert.Error(t, err)
	_, err = Read(strings.NewReader("a 1 x\n"))
	assert.Error(t, err)
}

func TestLoadGzip(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "vectors.txt.gz")
	f, err := os.Create(filePath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(glove))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	m, err := Load(filePath)
	require.NoError(t, err)
	assert.Equal(t, 5, m.Len())
}
