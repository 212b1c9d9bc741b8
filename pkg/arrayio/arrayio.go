// Package arrayio reads numeric arrays from text files and writes them
// back out as CSV.
//
// Delimited files (.csv, .tsv) hold one row per line. Structured files
// (.json, .yaml, .yml, .toml) hold either nested lists, whose nesting
// gives the shape, or a flat form with explicit shape:
//
//	{"shape": [2, 3], "data": [1, 2, 3, 4, 5, 6]}
//
// TOML has no top-level arrays, so nested lists go under a data key.
package arrayio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is an input file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "cannot tell the format of %s from its extension", path).
		WithDetail("path", path)
}

// ReadFile reads an array from path, choosing the parser by extension
func ReadFile(path string) (container.Array, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return container.Array{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return container.Array{}, errors.Wrapf(err, errors.ErrInputParse, "failed to read %s", path)
	}
	arr, err := Parse(data, format)
	if err != nil {
		return container.Array{}, errors.Wrapf(err, errors.ErrInputParse, "failed to parse %s", path).
			WithDetail("path", path)
	}
	return arr, nil
}

// Parse decodes data in the given format
func Parse(data []byte, format Format) (container.Array, error) {
	switch format {
	case FormatCSV:
		return parseDelimited(data, ',')
	case FormatTSV:
		return parseDelimited(data, '\t')
	case FormatJSON:
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return container.Array{}, errors.Wrap(err, errors.ErrInputParse, "invalid JSON")
		}
		return fromValue(v)
	case FormatYAML:
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return container.Array{}, errors.Wrap(err, errors.ErrInputParse, "invalid YAML")
		}
		return fromValue(v)
	case FormatTOML:
		var v map[string]interface{}
		if err := toml.Unmarshal(data, &v); err != nil {
			return container.Array{}, errors.Wrap(err, errors.ErrInputParse, "invalid TOML")
		}
		return fromValue(v)
	}
	return container.Array{}, errors.Newf(errors.ErrInvalidInput, "unknown format %q", format)
}

func parseDelimited(data []byte, comma rune) (container.Array, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.Comment = '#'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var (
		values []float64
		rows   uint64
		width  int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return container.Array{}, errors.Wrap(err, errors.ErrInputParse, "invalid delimited data")
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if rows == 0 {
			width = len(rec)
		} else if len(rec) != width {
			return container.Array{}, errors.Newf(errors.ErrInputParse,
				"row %d has %d values, expected %d", rows+1, len(rec), width)
		}
		for col, field := range rec {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return container.Array{}, errors.Wrapf(err, errors.ErrInputParse,
					"row %d column %d is not a number", rows+1, col+1)
			}
			values = append(values, f)
		}
		rows++
	}
	if rows == 0 {
		return container.Array{}, errors.New(errors.ErrInputParse, "no rows")
	}
	return container.NewArray([]uint64{rows, uint64(width)}, values)
}

// fromValue turns a decoded document into an array
func fromValue(v interface{}) (container.Array, error) {
	switch x := v.(type) {
	case []interface{}:
		return fromNested(x)
	case map[string]interface{}:
		data, ok := x["data"]
		if !ok {
			return container.Array{}, errors.New(errors.ErrInputParse, "document has no data key")
		}
		shapeValue, ok := x["shape"]
		if !ok {
			return fromValue(data)
		}
		return fromFlat(shapeValue, data)
	}
	return container.Array{}, errors.Newf(errors.ErrInputParse, "expected a list or a table, got %T", v)
}

func fromFlat(shapeValue, dataValue interface{}) (container.Array, error) {
	shapeList, ok := shapeValue.([]interface{})
	if !ok {
		return container.Array{}, errors.New(errors.ErrInputParse, "shape must be a list")
	}
	shape := make([]uint64, len(shapeList))
	for i, d := range shapeList {
		f, err := number(d)
		if err != nil || f < 1 || f != float64(uint64(f)) {
			return container.Array{}, errors.Newf(errors.ErrInputParse, "shape entry %d is not a positive integer", i)
		}
		shape[i] = uint64(f)
	}

	list, ok := dataValue.([]interface{})
	if !ok {
		return container.Array{}, errors.New(errors.ErrInputParse, "data must be a list")
	}
	data := make([]float64, len(list))
	for i, e := range list {
		f, err := number(e)
		if err != nil {
			return container.Array{}, errors.Wrapf(err, errors.ErrInputParse, "data entry %d", i)
		}
		data[i] = f
	}
	return container.NewArray(shape, data)
}

// fromNested walks nested lists depth first. Every list at the same depth
// must have the same length.
func fromNested(list []interface{}) (container.Array, error) {
	var (
		shape []uint64
		data  []float64
	)

	var walk func(v interface{}, depth int) error
	walk = func(v interface{}, depth int) error {
		sub, isList := v.([]interface{})
		if !isList {
			if depth != len(shape) {
				return errors.Newf(errors.ErrInputParse, "ragged array: value at depth %d", depth)
			}
			f, err := number(v)
			if err != nil {
				return err
			}
			data = append(data, f)
			return nil
		}
		if len(sub) == 0 {
			return errors.New(errors.ErrInputParse, "empty list")
		}
		switch {
		case depth == len(shape) && len(data) == 0:
			shape = append(shape, uint64(len(sub)))
		case depth >= len(shape) || shape[depth] != uint64(len(sub)):
			return errors.Newf(errors.ErrInputParse, "ragged array: list of %d at depth %d", len(sub), depth)
		}
		for _, e := range sub {
			if err := walk(e, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(list, 0); err != nil {
		return container.Array{}, err
	}
	return container.NewArray(shape, data)
}

func number(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, errors.Newf(errors.ErrInputParse, "%v is not a number", v)
}

// WriteCSV writes arr as comma separated rows split along its last dimension
func WriteCSV(w io.Writer, arr container.Array) error {
	cw := csv.NewWriter(w)
	for _, row := range arr.Rows() {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes arr to path as CSV
func WriteFile(path string, arr container.Array) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, arr)
}
