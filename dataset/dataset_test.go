package dataset

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labeled = []Record{
	{Text: "I loved it, truly.", Label: "pos"},
	{Text: "Terrible, \"awful\" service.", Label: "neg"},
	{Text: "Would come again", Label: "pos"},
}

func TestFormats(t *testing.T) {
	testCases := []struct {
		path   string
		format Format
	}{
		{"data.json", FormatJSON},
		{"DATA.JSON", FormatJSON},
		{"notes.txt", FormatLines},
		{"train.csv", FormatCSV},
		{"store.db", FormatSQLite},
		{"store.sqlite3", FormatSQLite},
		{"data.parquet", FormatUnknown},
	}
	for _, tc := range testCases {
		got := FormatFromPath(tc.path)
		fmt.Printf("\tFormatFromPath(%q) = %s\n", tc.path, got)
		assert.Equal(t, tc.format, got)
	}

	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("unknown")
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	records, err := Read(strings.NewReader(`["plain text", {"text": "with label", "label": "x"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text: "plain text"}, {Text: "with label", Label: "x"}}, records)

	_, err = Read(strings.NewReader(`[42]`), FormatJSON)
	assert.Error(t, err)
	_, err = Read(strings.NewReader(`{"text": "not an array"}`), FormatJSON)
	assert.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatCSV} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, format, labeled))
		got, err := Read(&buf, format)
		require.NoError(t, err)
		if diff := cmp.Diff(labeled, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", format, diff)
		}
	}

	// Without labels JSON is an array of strings and CSV has only the text column.
	unlabeled := []Record{{Text: "one"}, {Text: "two"}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, unlabeled))
	assert.JSONEq(t, `["one", "two"]`, buf.String())
	buf.Reset()
	require.NoError(t, Write(&buf, FormatCSV, unlabeled))
	assert.Equal(t, "text\none\ntwo\n", buf.String())

	// Lines drop labels and line breaks.
	buf.Reset()
	require.NoError(t, Write(&buf, FormatLines, []Record{{Text: "multi\nline", Label: "x"}, {Text: "single"}}))
	got, err := Read(&buf, FormatLines)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text: "multi line"}, {Text: "single"}}, got)

	assert.Error(t, Write(&buf, FormatSQLite, labeled))
}

func TestReadCSV(t *testing.T) {
	records, err := Read(strings.NewReader("id,Label,Text\n1,a,first\n2,b,\"second, with comma\"\n"), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Text: "first", Label: "a"}, {Text: "second, with comma", Label: "b"}}, records)

	_, err = Read(strings.NewReader("id,label\n1,a\n"), FormatCSV)
	assert.Error(t, err, "text column is required")
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data.json", "data.csv", "data.db"} {
		filePath := filepath.Join(dir, name)
		_, err := Save(filePath, labeled)
		require.NoError(t, err, name)
		got, err := Load(filePath)
		require.NoError(t, err, name)
		assert.Equal(t, labeled, got, name)
	}

	_, err := Save(filepath.Join(dir, "data.xml"), labeled)
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "texts.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	first, err := store.Save(ctx, labeled)
	require.NoError(t, err)
	generated := make([]Record, 1200)
	for ii := range generated {
		generated[ii] = Record{Text: faker.Sentence(), Label: "generated"}
	}
	second, err := store.Save(ctx, generated)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	got, err := store.Load(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, generated, got, "order of records is kept across insert batches")

	batches, err := store.Batches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, batches)

	all, err := store.Load(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, len(labeled)+len(generated))
	assert.Equal(t, labeled, all[:len(labeled)])

	require.NoError(t, store.Delete(ctx, first))
	got, err = store.Load(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGroupByLabel(t *testing.T) {
	groups := GroupByLabel(labeled)
	require.Len(t, groups, 2)
	assert.Equal(t, Group{Label: "pos", Texts: []string{"I loved it, truly.", "Would come again"}}, groups[0])
	assert.Equal(t, Group{Label: "neg", Texts: []string{"Terrible, \"awful\" service."}}, groups[1])
	assert.Equal(t, []Record{{Text: "I loved it, truly.", Label: "pos"}, {Text: "Would come again", Label: "pos"}},
		groups[0].Records())
	assert.Equal(t, []string{"I loved it, truly.", "Terrible, \"awful\" service.", "Would come again"}, Texts(labeled))
}
