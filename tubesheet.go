package cytometry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// Reserved tube sheet columns. Every other column is a condition.
const (
	TubeSheetFile = "file"
	TubeSheetName = "name"
)

// ReadTubeSheet reads a comma-separated tube sheet: one tube per row, with a
// "file" column, an optional "name" column and one column per condition.
// Condition cells are parsed according to schema. Relative file paths are
// resolved against the sheet's directory.
func ReadTubeSheet(path string, schema *experiment.Schema) ([]TubeConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	rows, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, pfx.Err(err)
	}

	dir := filepath.Dir(path)
	out := make([]TubeConfig, 0, len(rows))
	for i, row := range rows {
		tc, err := tubeFromRow(row, schema)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", path, i+1)
		}
		tc.File = resolvePath(dir, tc.File)
		out = append(out, tc)
	}

	return out, nil
}

func tubeFromRow(row map[string]string, schema *experiment.Schema) (TubeConfig, error) {
	tc := TubeConfig{Conditions: make(map[string]interface{}, len(row))}

	// Sorted so that the first bad column reported is stable
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cell := strings.TrimSpace(row[key])
		switch key {
		case TubeSheetFile:
			tc.File = cell
			continue
		case TubeSheetName:
			tc.Name = cell
			continue
		}

		t, exists := schema.Type(key)
		if !exists {
			return tc, errors.Wrapf(experiment.ErrUnknownCondition, "column %q", key)
		}
		v, err := t.Parse(cell)
		if err != nil {
			return tc, errors.Wrapf(err, "column %q", key)
		}
		tc.Conditions[key] = v
	}

	if tc.File == "" {
		return tc, errors.Errorf("no %q column", TubeSheetFile)
	}

	return tc, nil
}
