package cytometry

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/cytometry/experiment"
	"github.com/carbocation/cytometry/view"
	"github.com/carbocation/pfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ConditionConfig declares one experimental condition.
type ConditionConfig struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TubeConfig points at one event table and its condition values.
type TubeConfig struct {
	File       string                 `json:"file"`
	Name       string                 `json:"name"`
	Conditions map[string]interface{} `json:"conditions"`
}

// Manifest describes an experiment on disk and the views to draw from it.
type Manifest struct {
	ManifestPath string `json:"-"`

	Conditions []ConditionConfig `json:"conditions"`
	Tubes      []TubeConfig      `json:"tubes"`

	// TubeSheet optionally names a delimited file with one tube per row. Its
	// rows are appended to Tubes.
	TubeSheet string `json:"tube_sheet"`

	Views []view.Config `json:"views"`
}

func ParseManifestFromPath(path string) (Manifest, error) {
	out := Manifest{ManifestPath: expandHomeDir(path)}

	f, err := os.Open(out.ManifestPath)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return out, pfx.Err(err)
	}

	// Relative paths are relative to the manifest
	dir := filepath.Dir(out.ManifestPath)
	for i := range out.Tubes {
		out.Tubes[i].File = resolvePath(dir, out.Tubes[i].File)
	}
	if out.TubeSheet != "" {
		out.TubeSheet = resolvePath(dir, out.TubeSheet)
	}

	return out, nil
}

// View returns the view config with the given name.
func (m Manifest) View(name string) (view.Config, error) {
	for _, v := range m.Views {
		if v.Name == name {
			return v, nil
		}
	}
	return view.Config{}, errors.Wrapf(view.ErrUnknownView, "no view named %q in %s", name, m.ManifestPath)
}

// Schema builds the condition schema the manifest declares.
func (m Manifest) Schema() (*experiment.Schema, error) {
	s := experiment.NewSchema()
	for _, c := range m.Conditions {
		t, err := experiment.ParseConditionType(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "condition %q", c.Name)
		}
		if err := s.Declare(c.Name, t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Experiment declares the manifest's conditions, loads every tube and
// finalizes the result.
func (m Manifest) Experiment() (*experiment.Experiment, error) {
	schema, err := m.Schema()
	if err != nil {
		return nil, err
	}

	ex := experiment.New()
	for _, name := range schema.Names() {
		t, _ := schema.Type(name)
		if err := ex.AddCondition(name, t); err != nil {
			return nil, err
		}
	}

	tubes := append([]TubeConfig(nil), m.Tubes...)
	if m.TubeSheet != "" {
		sheet, err := ReadTubeSheet(m.TubeSheet, schema)
		if err != nil {
			return nil, err
		}
		tubes = append(tubes, sheet...)
	}

	for _, tc := range tubes {
		data, err := ReadEventData(tc.File)
		if err != nil {
			return nil, err
		}

		name := tc.Name
		if name == "" {
			name = filepath.Base(tc.File)
		}

		if _, err := ex.AddTube(name, data, tc.Conditions); err != nil {
			return nil, errors.Wrapf(err, "%s", tc.File)
		}

		log.WithFields(log.Fields{
			"tube":     name,
			"events":   data.Len(),
			"channels": len(data.Channels),
		}).Infoln("Loaded tube")
	}

	ex.Finalize()

	return ex, nil
}

func resolvePath(dir, path string) string {
	path = expandHomeDir(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// expandHomeDir replaces a leading "~" or "~/" with the current user's home
// directory. Other paths, and paths for which no home directory can be found,
// are returned unchanged.
func expandHomeDir(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		log.WithError(err).Warnf("Cannot expand %q", path)
		return path
	}

	return filepath.Join(usr.HomeDir, strings.TrimPrefix(path, "~"))
}
