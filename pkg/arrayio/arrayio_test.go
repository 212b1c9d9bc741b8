// pkg/arrayio/arrayio_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp directory for file round trips
// PURPOSE: Test array parsing from every supported format and CSV output

package arrayio_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/arrayio"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		format arrayio.Format
		input  string
		shape  []uint64
		data   []float64
	}{
		{
			name:   "csv_matrix",
			format: arrayio.FormatCSV,
			input:  "# R,G,B\n0.1, 0.2, 0.3\n1,2,3\n\n",
			shape:  []uint64{2, 3},
			data:   []float64{0.1, 0.2, 0.3, 1, 2, 3},
		},
		{
			name:   "tsv_matrix",
			format: arrayio.FormatTSV,
			input:  "1\t2\n3\t4\n5\t6\n",
			shape:  []uint64{3, 2},
			data:   []float64{1, 2, 3, 4, 5, 6},
		},
		{
			name:   "json_nested",
			format: arrayio.FormatJSON,
			input:  `[[1, 2], [3, 4.5]]`,
			shape:  []uint64{2, 2},
			data:   []float64{1, 2, 3, 4.5},
		},
		{
			name:   "json_vector",
			format: arrayio.FormatJSON,
			input:  `[1e3, -2]`,
			shape:  []uint64{2},
			data:   []float64{1000, -2},
		},
		{
			name:   "json_flat_with_shape",
			format: arrayio.FormatJSON,
			input:  `{"shape": [2, 1, 2], "data": [1, 2, 3, 4]}`,
			shape:  []uint64{2, 1, 2},
			data:   []float64{1, 2, 3, 4},
		},
		{
			name:   "yaml_nested",
			format: arrayio.FormatYAML,
			input:  "- [1, 2, 3]\n- [4, 5, 6.5]\n",
			shape:  []uint64{2, 3},
			data:   []float64{1, 2, 3, 4, 5, 6.5},
		},
		{
			name:   "yaml_flat",
			format: arrayio.FormatYAML,
			input:  "shape: [3]\ndata: [7, 8, 9]\n",
			shape:  []uint64{3},
			data:   []float64{7, 8, 9},
		},
		{
			name:   "toml_nested",
			format: arrayio.FormatTOML,
			input:  "data = [[1, 2], [3, 4]]\n",
			shape:  []uint64{2, 2},
			data:   []float64{1, 2, 3, 4},
		},
		{
			name:   "toml_flat",
			format: arrayio.FormatTOML,
			input:  "shape = [2, 2]\ndata = [1.5, 2, 3, 4]\n",
			shape:  []uint64{2, 2},
			data:   []float64{1.5, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr, err := arrayio.Parse([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, arr.Shape)
			assert.Equal(t, tt.data, arr.Data)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format arrayio.Format
		input  string
	}{
		{"csv_ragged", arrayio.FormatCSV, "1,2\n3\n"},
		{"csv_not_a_number", arrayio.FormatCSV, "1,x\n"},
		{"csv_empty", arrayio.FormatCSV, "# nothing\n"},
		{"json_ragged", arrayio.FormatJSON, `[[1, 2], [3]]`},
		{"json_mixed_depth", arrayio.FormatJSON, `[1, [2]]`},
		{"json_strings", arrayio.FormatJSON, `["a", "b"]`},
		{"json_empty", arrayio.FormatJSON, `[]`},
		{"json_shape_mismatch", arrayio.FormatJSON, `{"shape": [3], "data": [1, 2]}`},
		{"json_bad_shape", arrayio.FormatJSON, `{"shape": [1.5], "data": [1]}`},
		{"json_shape_overflows", arrayio.FormatJSON, `{"shape": [4294967296, 4294967296], "data": []}`},
		{"yaml_shape_overflows", arrayio.FormatYAML, "shape: [4294967296, 4294967296]\ndata: []\n"},
		{"json_scalar", arrayio.FormatJSON, `42`},
		{"toml_no_data", arrayio.FormatTOML, "values = [1, 2]\n"},
		{"yaml_invalid", arrayio.FormatYAML, "- [1, 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := arrayio.Parse([]byte(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := arrayio.FormatFromPath("/data/a1.CSV")
	require.NoError(t, err)
	assert.Equal(t, arrayio.FormatCSV, f)

	f, err = arrayio.FormatFromPath("a1.yml")
	require.NoError(t, err)
	assert.Equal(t, arrayio.FormatYAML, f)

	_, err = arrayio.FormatFromPath("a1.xlsx")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a1.json")
	require.NoError(t, os.WriteFile(path, []byte(`[[1, 2], [3, 4]]`), 0o644))

	arr, err := arrayio.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 2}, arr.Shape)

	_, err = arrayio.ReadFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInputParse))
}

func TestWriteCSV(t *testing.T) {
	arr, err := arrayio.Parse([]byte("0.5,1\n2,3.25\n"), arrayio.FormatCSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, arrayio.WriteCSV(&buf, arr))
	assert.Equal(t, "0.5,1\n2,3.25\n", buf.String())

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, arrayio.WriteFile(path, arr))
	back, err := arrayio.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, arr.Equal(back))
}
