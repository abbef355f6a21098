// Package lexicon provides the lexical data used by the word level augmenters: stopwords and
// synonym lookup.
//
// A Thesaurus plays the role of a lexical database (like WordNet): given a word it returns the
// lemma names of all its synonym sets. The package ships a file backed implementation, see
// LoadThesaurus.
package lexicon

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/gomlx/go-textaug/internal/files"
	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed stopwords_english.txt
var englishStopwords string

// Stopwords is a set of words never selected for synonym insertion or replacement.
type Stopwords map[string]struct{}

// English returns the English stopword list, the same used by NLTK.
func English() Stopwords {
	s := make(Stopwords)
	for _, w := range strings.Fields(englishStopwords) {
		s[w] = struct{}{}
	}
	return s
}

// Contains reports whether word is a stopword. Matching is exact: like NLTK, "The" is not a
// stopword, "the" is.
func (s Stopwords) Contains(word string) bool {
	_, found := s[word]
	return found
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases word and strips accents (e.g. "Café" -> "cafe"), it is the key used by
// the thesaurus.
func Normalize(word string) string {
	result, _, err := transform.String(stripAccents, strings.ToLower(word))
	if err != nil {
		return strings.ToLower(word)
	}
	return result
}

// Thesaurus looks up synonyms of a word.
type Thesaurus interface {
	// Synonyms returns the distinct lemma names of all synonym sets containing word, possibly
	// including word itself. It returns nil if word is unknown.
	Synonyms(word string) []string
}

// MapThesaurus is an in-memory Thesaurus keyed by normalized word (see Normalize).
type MapThesaurus map[string][]string

// Compile time assert that MapThesaurus implements Thesaurus.
var _ Thesaurus = MapThesaurus(nil)

// Synonyms implements Thesaurus.
func (m MapThesaurus) Synonyms(word string) []string {
	return m[Normalize(word)]
}

// Add registers a synonym set: each member becomes a synonym of every other member.
// Underscores in lemma names (as in WordNet's "ice_cream") are replaced by spaces.
func (m MapThesaurus) Add(synset ...string) {
	lemmas := make([]string, 0, len(synset))
	for _, lemma := range synset {
		lemma = strings.TrimSpace(strings.ReplaceAll(lemma, "_", " "))
		if lemma != "" {
			lemmas = append(lemmas, lemma)
		}
	}
	for _, lemma := range lemmas {
		key := Normalize(lemma)
		m[key] = mergeUnique(m[key], lemmas)
	}
}

func mergeUnique(into, from []string) []string {
	seen := make(map[string]bool, len(into)+len(from))
	for _, w := range into {
		seen[w] = true
	}
	for _, w := range from {
		if !seen[w] {
			seen[w] = true
			into = append(into, w)
		}
	}
	sort.Strings(into)
	return into
}

// ReadThesaurus parses a thesaurus with one synonym set per line, members separated by commas.
// Empty lines and lines starting with "#" are ignored.
//
//	happy,felicitous,glad
//	car,auto,automobile,machine,motorcar
func ReadThesaurus(r io.Reader) (MapThesaurus, error) {
	m := make(MapThesaurus)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.Add(strings.Split(line, ",")...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read thesaurus")
	}
	return m, nil
}

// LoadThesaurus reads a thesaurus file (see ReadThesaurus). A leading "~" in filePath is expanded
// to the user's home directory.
func LoadThesaurus(filePath string) (MapThesaurus, error) {
	filePath, err := files.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open thesaurus file %q", filePath)
	}
	defer func() { _ = f.Close() }()
	m, err := ReadThesaurus(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "read from file %q", filePath)
	}
	return m, nil
}
