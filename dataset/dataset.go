// Package dataset reads and writes collections of (optionally labeled) texts to augment, as JSON
// arrays, text lines, CSV and SQLite databases.
//
// Augmenters work on plain text slices, so labeled datasets are augmented per label: GroupByLabel
// splits the records and each Group is turned back into records with Group.Records.
package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-textaug/internal/files"
	"github.com/pkg/errors"
)

// Record is one text of a dataset, with an optional label.
type Record struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// Format of a dataset file.
type Format int

const (
	FormatUnknown Format = iota

	// FormatJSON is a JSON array of strings, or of {"text": ..., "label": ...} objects.
	FormatJSON

	// FormatLines has one text per line, without labels. Empty lines are skipped on reading.
	FormatLines

	// FormatCSV has a "text" column and an optional "label" column. A header row is required.
	FormatCSV

	// FormatSQLite is a database managed by SQLiteStore.
	FormatSQLite
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatJSON:    "json",
	FormatLines:   "lines",
	FormatCSV:     "csv",
	FormatSQLite:  "sqlite",
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if name, found := formatNames[f]; found {
		return name
	}
	return "unknown"
}

// ParseFormat converts a format name (as returned by Format.String) to a Format.
func ParseFormat(name string) (Format, error) {
	for f, fName := range formatNames {
		if f != FormatUnknown && fName == strings.ToLower(name) {
			return f, nil
		}
	}
	return FormatUnknown, errors.Errorf("unknown dataset format %q, valid formats are json, lines, csv and sqlite", name)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return FormatJSON
	case ".txt", ".text":
		return FormatLines
	case ".csv":
		return FormatCSV
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatUnknown
}

// Read records in the given format from r. FormatSQLite can't be read from a stream, use
// SQLiteStore.
func Read(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatLines:
		return readLines(r)
	case FormatCSV:
		return readCSV(r)
	}
	return nil, errors.Errorf("can't read format %s from a stream", format)
}

// Write records in the given format to w. Labels are dropped by FormatLines.
func Write(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if !hasLabels(records) {
			return errors.Wrap(enc.Encode(Texts(records)), "failed to write JSON")
		}
		return errors.Wrap(enc.Encode(records), "failed to write JSON")
	case FormatLines:
		bw := bufio.NewWriter(w)
		for _, rec := range records {
			// Texts with line breaks would be split on reading.
			if _, err := bw.WriteString(strings.ReplaceAll(rec.Text, "\n", " ") + "\n"); err != nil {
				return errors.Wrap(err, "failed to write lines")
			}
		}
		return errors.Wrap(bw.Flush(), "failed to write lines")
	case FormatCSV:
		cw := csv.NewWriter(w)
		header := []string{"text"}
		if hasLabels(records) {
			header = append(header, "label")
		}
		if err := cw.Write(header); err != nil {
			return errors.Wrap(err, "failed to write CSV")
		}
		for _, rec := range records {
			row := []string{rec.Text}
			if len(header) > 1 {
				row = append(row, rec.Label)
			}
			if err := cw.Write(row); err != nil {
				return errors.Wrap(err, "failed to write CSV")
			}
		}
		cw.Flush()
		return errors.Wrap(cw.Error(), "failed to write CSV")
	}
	return errors.Errorf("can't write format %s to a stream", format)
}

// Load reads the dataset in filePath, with the format given by its extension. SQLite databases
// return all their records, in insertion order. A leading "~" is expanded to the home directory.
func Load(filePath string) ([]Record, error) {
	filePath, err := files.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	format := FormatFromPath(filePath)
	if format == FormatSQLite {
		store, err := OpenSQLite(filePath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		return store.Load(context.Background(), "")
	}
	if format == FormatUnknown {
		return nil, errors.Errorf("unknown dataset format for %q, use one of the extensions .json, .txt, .csv or .db", filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %q", filePath)
	}
	defer func() { _ = f.Close() }()
	records, err := Read(f, format)
	if err != nil {
		return nil, errors.WithMessagef(err, "dataset %q", filePath)
	}
	return records, nil
}

// Save writes records to filePath, with the format given by its extension. Existing files are
// replaced, except SQLite databases, to which the records are appended as a new batch whose id
// is returned.
func Save(filePath string, records []Record) (batch string, err error) {
	filePath, err = files.ExpandHome(filePath)
	if err != nil {
		return "", err
	}
	format := FormatFromPath(filePath)
	if format == FormatSQLite {
		store, err := OpenSQLite(filePath)
		if err != nil {
			return "", err
		}
		defer func() { _ = store.Close() }()
		return store.Save(context.Background(), records)
	}
	if format == FormatUnknown {
		return "", errors.Errorf("unknown dataset format for %q, use one of the extensions .json, .txt, .csv or .db", filePath)
	}
	f, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %q", filePath)
	}
	if err = Write(f, format, records); err != nil {
		_ = f.Close()
		return "", errors.WithMessagef(err, "dataset %q", filePath)
	}
	return "", errors.Wrapf(f.Close(), "failed to close %q", filePath)
}

func readJSON(r io.Reader) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON array")
	}
	records := make([]Record, 0, len(raw))
	for ii, item := range raw {
		var rec Record
		if err := json.Unmarshal(item, &rec.Text); err != nil {
			if err = json.Unmarshal(item, &rec); err != nil {
				return nil, errors.Wrapf(err, "JSON item #%d is neither a string nor a {\"text\", \"label\"} object", ii)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func readLines(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			records = append(records, Record{Text: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read lines")
	}
	return records, nil
}

func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}
	textCol, labelCol := -1, -1
	for ii, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = ii
		case "label":
			labelCol = ii
		}
	}
	if textCol < 0 {
		return nil, errors.Errorf("CSV header %q has no \"text\" column", header)
	}
	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV")
		}
		if textCol >= len(row) {
			line, _ := cr.FieldPos(0)
			return nil, errors.Errorf("CSV line %d has no text column", line)
		}
		rec := Record{Text: row[textCol]}
		if labelCol >= 0 && labelCol < len(row) {
			rec.Label = row[labelCol]
		}
		records = append(records, rec)
	}
	return records, nil
}

func hasLabels(records []Record) bool {
	for _, rec := range records {
		if rec.Label != "" {
			return true
		}
	}
	return false
}

// Texts returns the texts of the records.
func Texts(records []Record) []string {
	texts := make([]string, len(records))
	for ii, rec := range records {
		texts[ii] = rec.Text
	}
	return texts
}

// Group of texts sharing a label.
type Group struct {
	Label string
	Texts []string
}

// Records returns one record per text of the group, with the group's label.
func (g Group) Records() []Record {
	records := make([]Record, len(g.Texts))
	for ii, text := range g.Texts {
		records[ii] = Record{Text: text, Label: g.Label}
	}
	return records
}

// GroupByLabel splits records per label, in order of first appearance. Texts keep their relative
// order within a group.
func GroupByLabel(records []Record) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, rec := range records {
		idx, found := index[rec.Label]
		if !found {
			idx = len(groups)
			index[rec.Label] = idx
			groups = append(groups, Group{Label: rec.Label})
		}
		groups[idx].Texts = append(groups[idx].Texts, rec.Text)
	}
	return groups
}
