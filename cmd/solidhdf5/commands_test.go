// cmd/solidhdf5/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: memory backend, temp directories
// PURPOSE: Run the command tree end to end and check output and exit codes

package solidhdf5

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/solidhdf5/pkg/config"
	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/store"
	"github.com/arthur-debert/solidhdf5/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	*testutil.TestEnvironment
	t      *testing.T
	dtypes []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{TestEnvironment: testutil.NewTestEnvironment(t), t: t}
}

func (h *harness) path(name string) string {
	return h.Path(name)
}

func (h *harness) write(name, content string) string {
	h.t.Helper()
	return h.WriteFile(name, content)
}

func (h *harness) run(args ...string) (string, error) {
	backend := func(sc config.StoreConfig) (container.Backend, error) {
		h.dtypes = append(h.dtypes, sc.DType)
		return h.Backend, nil
	}
	now := func() time.Time { return time.Date(2021, 2, 23, 8, 30, 0, 0, time.Local) }

	cmd := newRootCmd(backend, now)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) storeArgs(c, path, input string) []string {
	return []string{
		"--format", "text", "store", c, path,
		"--input", input,
		"--project", "testproject",
		"--material", "PTMChmw",
		"--method", "PES",
		"--axes", "[E,I]",
	}
}

func TestStoreLoadShow(t *testing.T) {
	h := newHarness(t)
	c := h.path("solid.h5")
	input := h.WriteArray("pes.csv", testutil.MustArray(t, []uint64{2, 3}, []float64{1, 2, 3, 4, 5, 6}))

	out, err := h.run(h.storeArgs(c, "EA0000/PESlt1", input)...)
	require.NoError(t, err)
	assert.Equal(t, "New sample.\nCreating new directory and dataset.\nStored as EA0000/PESlt1\n", out)

	out, err = h.run(h.storeArgs(c, "EA0000/PESlt2", input)...)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		store.NoteSampleExists,
		store.NoteDatasetUnique,
		store.NoteAddingDataset,
		"Stored as EA0000/PESlt2",
	}, "\n")+"\n", out)

	out, err = h.run("--format", "text", "load", c, "EA0000/PESlt1")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Path: EA0000/PESlt1",
		"Shape: 2x3",
		"Attributes: Axisnames: [E,I], Date: 20210223, Method: PES, Time: 08:30",
		"1\t2\t3",
		"4\t5\t6",
	}, "\n")+"\n", out)

	out, err = h.run("--format", "text", "show", c)
	require.NoError(t, err)
	assert.Contains(t, out, "Samples:\n\tSamplename: EA0000\n\tMaterial: PTMChmw, Project: testproject\n")
	assert.Contains(t, out, "\t\t\tLoad with load(EA0000/PESlt2)")

	assert.Equal(t, 0, h.Backend.OpenHandles())
	_, err = os.Stat(c + ".lock")
	assert.NoError(t, err, "store takes the sidecar lock by default")
}

func TestStore_NameConflictExitsWithTwo(t *testing.T) {
	h := newHarness(t)
	c := h.path("solid.h5")
	input := h.write("pes.csv", "1,2\n")

	_, err := h.run(h.storeArgs(c, "EA0000/PESlt1", input)...)
	require.NoError(t, err)

	out, err := h.run(h.storeArgs(c, "EA0000/PESlt1", input)...)
	require.Error(t, err)
	assert.True(t, IsOutcome(err))
	assert.Equal(t, ExitNameConflict, ExitCode(err))
	assert.Equal(t, strings.Join([]string{
		store.NoteSampleExists,
		store.NoteDatasetConflict,
		store.NoteNotStored,
	}, "\n")+"\n", out)
}

func TestStore_Inaccessible(t *testing.T) {
	h := newHarness(t)
	c := h.path("locked.h5")
	h.Backend.SetInaccessible(c)
	input := h.write("pes.csv", "1,2\n")

	out, err := h.run(h.storeArgs(c, "EA0000/PESlt1", input)...)
	assert.Equal(t, ExitInaccessible, ExitCode(err))
	assert.Equal(t, store.NoteNotAccessible+"\n", out)

	out, err = h.run("--format", "text", "show", c)
	assert.Equal(t, ExitInaccessible, ExitCode(err))
	assert.Equal(t, store.NoteNotAccessible+"\n", out)

	out, err = h.run("--format", "text", "load", c, "EA0000/PESlt1")
	assert.Equal(t, ExitInaccessible, ExitCode(err))
	assert.Equal(t, store.NoteNotAccessible+"\n", out)
}

func TestStore_InvalidArguments(t *testing.T) {
	h := newHarness(t)
	c := h.path("solid.h5")
	input := h.write("pes.csv", "1,2\n")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"missing_input", []string{"store", c, "EA0000/PESlt1"}, errors.ErrInvalidInput},
		{"bad_path", []string{"store", c, "EA0000", "--input", input}, errors.ErrInvalidInput},
		{"unreadable_input", []string{"store", c, "EA0000/D", "--input", h.path("nope.csv")}, errors.ErrInputParse},
		{"bad_dtype", []string{"store", c, "EA0000/D", "--input", input, "--dtype", "complex128"}, errors.ErrInvalidInput},
		{"too_many_args", []string{"store", c, "EA0000/D", "extra", "--input", input}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			require.Error(t, err)
			assert.False(t, IsOutcome(err))
			assert.Equal(t, ExitError, ExitCode(err))
			if tt.code != "" {
				assert.True(t, errors.HasErrorCode(err, tt.code), "got %v", err)
			}
		})
	}

	assert.False(t, h.Backend.Exists(c), "nothing reaches the backend on invalid input")
}

func TestStore_DTypeFlagOverridesConfig(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SOLIDHDF5_STORE_DTYPE", "int32")
	input := h.write("pes.csv", "1,2\n")

	_, err := h.run(h.storeArgs(h.path("a.h5"), "S/D1", input)...)
	require.NoError(t, err)
	_, err = h.run(append(h.storeArgs(h.path("a.h5"), "S/D2", input), "--dtype", "float32")...)
	require.NoError(t, err)

	assert.Equal(t, []string{"int32", "float32"}, h.dtypes)
}

func TestStore_DefaultContainerInDataDir(t *testing.T) {
	h := newHarness(t)
	input := h.write("pes.csv", "1,2\n")

	args := h.storeArgs("", "S/D", input)
	// drop the empty container argument
	args = append(args[:3], args[4:]...)
	_, err := h.run(args...)
	require.NoError(t, err)

	want := h.DataPath("solid.h5")
	assert.True(t, h.Backend.Exists(want))
	assert.DirExists(t, h.DataDir)
}

func TestStore_Manifest(t *testing.T) {
	h := newHarness(t)
	a := h.write("a.csv", "1,2\n3,4\n")
	h.write("b.csv", "5,6\n")
	m := h.write("run.toml", `container = "batch.h5"

[[dataset]]
sample   = "EA0000"
dataset  = "PESlt1"
project  = "testproject"
material = "PTMChmw"
method   = "PES"
axes     = "[E,I]"
input    = "a.csv"

[[dataset]]
sample   = "EA0000"
dataset  = "PESlt2"
method   = "PES"
input    = "b.csv"
`)
	// a bare name that does not exist in the working directory lands in the data dir
	c := h.DataPath("batch.h5")

	out, err := h.run("--format", "text", "store", "--manifest", m)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		store.NoteNewSample,
		store.NoteCreatingBoth,
		"Stored as EA0000/PESlt1",
		"",
		store.NoteSampleExists,
		store.NoteDatasetUnique,
		store.NoteAddingDataset,
		"Stored as EA0000/PESlt2",
	}, "\n")+"\n", out)
	assert.True(t, h.Backend.Exists(c), "the manifest names the container")

	// a second run against an explicit container conflicts on both entries
	out, err = h.run("--format", "text", "store", c, "--manifest", m)
	assert.Equal(t, ExitNameConflict, ExitCode(err))
	assert.Equal(t, 2, strings.Count(out, store.NoteNotStored))

	_, err = h.run("store", c, "EA0000/X", "--manifest", m, "--input", a)
	assert.Error(t, err, "--input and --manifest are exclusive")
}

func TestLoad_NotFoundAndOutput(t *testing.T) {
	h := newHarness(t)
	c := h.path("solid.h5")
	stored := testutil.MustArray(t, []uint64{2, 2}, []float64{0.5, 1, 2, 3})
	input := h.WriteArray("pes.csv", stored)
	_, err := h.run(h.storeArgs(c, "EA0000/PESlt1", input)...)
	require.NoError(t, err)

	out, err := h.run("--format", "text", "load", c, "EA0000/missing")
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Equal(t, store.NoteNoData+"\n", out)

	target := h.path("out.csv")
	out, err = h.run("--format", "text", "load", c, "EA0000/PESlt1", "--output", target)
	require.NoError(t, err)
	assert.Equal(t, "Wrote EA0000/PESlt1 (2x2) to "+target+"\n", out)

	testutil.AssertArrayFile(t, target, stored)
}

func TestJSONOutput(t *testing.T) {
	h := newHarness(t)
	c := h.path("solid.h5")
	input := h.write("pes.csv", "1,2\n")

	out, err := h.run("--format", "json", "store", c, "S/D", "--input", input)
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "success", res["outcome"])
	assert.Equal(t, "S/D", res["path"])

	out, err = h.run("--format", "json", "show", c, h.path("other.h5"))
	assert.Equal(t, ExitInaccessible, ExitCode(err))

	var reports []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, true, reports[0]["accessible"])
	assert.Equal(t, false, reports[1]["accessible"])
}

func TestOutputFormatFromConfig(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SOLIDHDF5_OUTPUT_FORMAT", "json")

	out, err := h.run("show", h.path("none.h5"))
	assert.Equal(t, ExitInaccessible, ExitCode(err))
	assert.True(t, strings.HasPrefix(out, "{"), "output.format selects JSON: %q", out)

	out, _ = h.run("--format", "text", "show", h.path("none.h5"))
	assert.Equal(t, store.NoteNotAccessible+"\n", out, "--format wins over output.format")
}

func TestGenConfig(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("gen-config")
	require.NoError(t, err)
	assert.Contains(t, out, "[store]")
	assert.Contains(t, out, `# dtype = "float64"`)

	out, err = h.run("gen-config", "-w")
	require.NoError(t, err)
	target := filepath.Join(h.ConfigDir, "config.toml")
	assert.Contains(t, out, target)
	assert.FileExists(t, target)

	_, err = h.run("gen-config", "-w")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "an existing file is not replaced")

	t.Setenv("SOLIDHDF5_STORE_COMPRESSION", "4")
	out, err = h.run("gen-config", "--resolved")
	require.NoError(t, err)
	assert.Regexp(t, `compression = ['"]?4`, out)
}

func TestMiscCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "solidhdf5 version "))

	out, err = h.run("help", "topics")
	require.NoError(t, err)
	for _, topic := range []string{"config", "inputs", "layout", "manifest"} {
		assert.Contains(t, out, topic)
	}

	out, err = h.run("topics")
	require.NoError(t, err)
	assert.Contains(t, out, "layout")

	out, err = h.run("help", "inputs")
	require.NoError(t, err)
	assert.Contains(t, out, "Array input files")

	out, err = h.run("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "solidhdf5")

	out, err = h.run("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMANDS:")
	assert.Contains(t, out, "store")

	_, err = h.run()
	assert.Error(t, err, "the bare command asks for a subcommand")
}
