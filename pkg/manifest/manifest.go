// Package manifest reads batch store files. A manifest lists datasets to
// append, each pointing at an array input file:
//
//	container = "solid.h5"
//
//	[[dataset]]
//	sample   = "EA0000"
//	dataset  = "PESlt1"
//	project  = "testproject"
//	material = "PTMChmw"
//	method   = "PES"
//	axes     = "[R,G,B]"
//	input    = "a1.csv"
//
// The YAML form uses a datasets list with the same keys.
package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/solidhdf5/pkg/arrayio"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/store"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Entry is one dataset to store
type Entry struct {
	Sample   string `toml:"sample" yaml:"sample"`
	Dataset  string `toml:"dataset" yaml:"dataset"`
	Project  string `toml:"project" yaml:"project"`
	Material string `toml:"material" yaml:"material"`
	Method   string `toml:"method" yaml:"method"`
	Axes     string `toml:"axes" yaml:"axes"`
	Date     string `toml:"date" yaml:"date"`
	Time     string `toml:"time" yaml:"time"`
	Input    string `toml:"input" yaml:"input"`
}

// Manifest is a parsed batch file. Input paths are absolute once loaded.
type Manifest struct {
	Container string  `toml:"container" yaml:"container"`
	Datasets  []Entry `toml:"dataset" yaml:"datasets"`

	path string
}

// Path returns the file the manifest was read from
func (m *Manifest) Path() string {
	return m.path
}

// Load reads and validates the manifest at path
func Load(path string) (*Manifest, error) {
	logger := log.With().Str("manifest", path).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "failed to read manifest %s", path)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = toml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "failed to parse manifest %s", path)
	}
	m.path = path

	if err := m.validate(); err != nil {
		return nil, err
	}
	m.resolveInputs(filepath.Dir(path))

	logger.Debug().Int("datasets", len(m.Datasets)).Msg("Manifest loaded")
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Datasets) == 0 {
		return errors.Newf(errors.ErrManifestInvalid, "manifest %s lists no datasets", m.path)
	}
	seen := make(map[string]int)
	for i, e := range m.Datasets {
		var missing []string
		for _, f := range []struct{ name, value string }{
			{"sample", e.Sample}, {"dataset", e.Dataset}, {"input", e.Input},
		} {
			if strings.TrimSpace(f.value) == "" {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			return errors.Newf(errors.ErrManifestInvalid, "entry %d is missing %s", i+1, strings.Join(missing, ", ")).
				WithDetail("entry", i+1)
		}
		key := e.Sample + "/" + e.Dataset
		if prev, ok := seen[key]; ok {
			return errors.Newf(errors.ErrManifestInvalid, "entries %d and %d both store %s", prev, i+1, key)
		}
		seen[key] = i + 1
	}
	return nil
}

func (m *Manifest) resolveInputs(dir string) {
	for i := range m.Datasets {
		in := m.Datasets[i].Input
		if !filepath.IsAbs(in) {
			m.Datasets[i].Input = filepath.Join(dir, in)
		}
	}
}

// Requests reads every input file and builds the store requests. Missing
// dates and times are taken from now.
func (m *Manifest) Requests(containerPath string, now time.Time) ([]store.Request, error) {
	reqs := make([]store.Request, 0, len(m.Datasets))
	for _, e := range m.Datasets {
		arr, err := arrayio.ReadFile(e.Input)
		if err != nil {
			return nil, err
		}
		req := store.Request{
			Container:   containerPath,
			Array:       arr,
			AxisNames:   e.Axes,
			Project:     e.Project,
			Material:    e.Material,
			Method:      e.Method,
			Date:        e.Date,
			Time:        e.Time,
			SampleName:  e.Sample,
			DatasetName: e.Dataset,
		}
		req.Stamp(now)
		reqs = append(reqs, req)
	}
	return reqs, nil
}
