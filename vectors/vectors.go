// Package vectors holds word embeddings and finds the words whose vectors are most similar to a
// given word, by cosine similarity.
//
// Embeddings are read from the GloVe / word2vec text formats: one word per line followed by its
// vector components, separated by spaces. The word2vec header line ("<count> <dimensions>") is
// detected and skipped.
package vectors

import (
	"bufio"
	"compress/gzip"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/internal/files"
	"github.com/pkg/errors"
)

// ErrUnknownWord is returned when a word has no vector.
var ErrUnknownWord = errors.New("word has no vector")

// Similarity of a word to a query.
type Similarity struct {
	Word  string
	Score float64
}

// Model holds unit length word vectors.
type Model struct {
	dims  int
	words []string
	index map[string]int
	// vecs holds len(words)*dims components, each vector normalized to unit length.
	vecs []float32
}

// New creates an empty Model for vectors of the given dimensions.
func New(dims int) *Model {
	return &Model{dims: dims, index: make(map[string]int)}
}

// Dimensions of the vectors.
func (m *Model) Dimensions() int { return m.dims }

// Len returns the number of words in the model.
func (m *Model) Len() int { return len(m.words) }

// Add sets the vector of word, normalizing it. If word was already present its vector is replaced.
func (m *Model) Add(word string, vec []float32) error {
	if len(vec) != m.dims {
		return errors.Errorf("vector for %q has %d dimensions, model has %d", word, len(vec), m.dims)
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	idx, found := m.index[word]
	if !found {
		idx = len(m.words)
		m.words = append(m.words, word)
		m.index[word] = idx
		m.vecs = append(m.vecs, make([]float32, m.dims)...)
	}
	dst := m.vecs[idx*m.dims : (idx+1)*m.dims]
	for ii, v := range vec {
		if norm == 0 {
			dst[ii] = 0
		} else {
			dst[ii] = float32(float64(v) / norm)
		}
	}
	return nil
}

// Vector returns the unit length vector of word, or nil if unknown.
func (m *Model) Vector(word string) []float32 {
	idx, found := m.index[word]
	if !found {
		return nil
	}
	return m.vecs[idx*m.dims : (idx+1)*m.dims]
}

// MostSimilar returns the n words most similar to word, the word itself included, sorted by
// decreasing cosine similarity. It returns ErrUnknownWord if word has no vector.
func (m *Model) MostSimilar(word string, n int) ([]Similarity, error) {
	query := m.Vector(word)
	if query == nil {
		return nil, errors.Wrapf(ErrUnknownWord, "%q", word)
	}
	if n <= 0 {
		return nil, nil
	}
	results := make([]Similarity, 0, len(m.words))
	for idx, w := range m.words {
		vec := m.vecs[idx*m.dims : (idx+1)*m.dims]
		var dot float64
		for ii, v := range vec {
			dot += float64(v) * float64(query[ii])
		}
		results = append(results, Similarity{Word: w, Score: dot})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// Read parses embeddings in GloVe or word2vec text format.
func Read(r io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	var (
		m      *Model
		lineNo int
	)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				dims, err := strconv.Atoi(fields[1])
				if err == nil {
					m = New(dims)
					continue
				}
			}
		}
		if len(fields) < 2 {
			return nil, errors.Errorf("line %d: expected a word followed by its vector", lineNo)
		}
		if m == nil {
			m = New(len(fields) - 1)
		}
		vec := make([]float32, len(fields)-1)
		for ii, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: invalid component %q", lineNo, field)
			}
			vec[ii] = float32(v)
		}
		if err := m.Add(fields[0], vec); err != nil {
			return nil, errors.WithMessagef(err, "line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read vectors")
	}
	if m == nil {
		return nil, errors.New("no vectors found")
	}
	return m, nil
}

// Load reads embeddings from a file, transparently decompressing it if its name ends in ".gz".
// A leading "~" in filePath is expanded to the user's home directory.
func Load(filePath string) (*Model, error) {
	filePath, err := files.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vectors file %q", filePath)
	}
	defer func() { _ = f.Close() }()
	var r io.Reader = f
	if strings.HasSuffix(filePath, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decompress %q", filePath)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	m, err := Read(r)
	if err != nil {
		return nil, errors.WithMessagef(err, "read from file %q", filePath)
	}
	return m, nil
}

// LoadFromHub downloads fileName from the HuggingFace repo (see hub.New) and loads it.
// E.g.: LoadFromHub(hub.New("fse/glove-wiki-gigaword-50"), "glove-wiki-gigaword-50.model.vectors.txt").
func LoadFromHub(repo *hub.Repo, fileName string) (*Model, error) {
	localPath, err := repo.DownloadFile(fileName)
	if err != nil {
		return nil, errors.WithMessagef(err, "while downloading vectors %q from %q", fileName, repo)
	}
	return Load(localPath)
}
