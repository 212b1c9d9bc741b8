// pkg/testutil/environment.go
// DEPENDENCIES: paths, memory backend, arrayio
// PURPOSE: Orchestrate test environments with isolated directories

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/container/memory"
	"github.com/arthur-debert/solidhdf5/pkg/paths"
)

// TestEnvironment is a temp directory that stands in for every location
// solidhdf5 reads from or writes to
type TestEnvironment struct {
	// Dir is the working directory of the test
	Dir string

	ConfigDir string
	DataDir   string
	StateDir  string

	// Backend is a fresh memory backend
	Backend *memory.Backend

	t *testing.T
}

// NewTestEnvironment points the SOLIDHDF5_*_DIR variables and HOME into a
// new temp directory and changes into it. Everything is restored when the
// test ends.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	dir := t.TempDir()
	env := &TestEnvironment{
		Dir:       dir,
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
		StateDir:  filepath.Join(dir, "state"),
		Backend:   memory.New(),
		t:         t,
	}

	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvDataDir, env.DataDir)
	t.Setenv(paths.EnvStateDir, env.StateDir)
	t.Setenv(paths.EnvHome, filepath.Join(dir, "home"))
	t.Chdir(dir)

	return env
}

// Path returns name joined to the working directory
func (env *TestEnvironment) Path(name string) string {
	return filepath.Join(env.Dir, name)
}

// DataPath returns where a bare container name resolves when it does not
// exist in the working directory
func (env *TestEnvironment) DataPath(name string) string {
	return filepath.Join(env.DataDir, name)
}

// WriteFile writes content to name below the working directory
func (env *TestEnvironment) WriteFile(name, content string) string {
	env.t.Helper()
	return WriteFile(env.t, env.Dir, name, content)
}

// WriteArray writes arr as a CSV input file below the working directory
func (env *TestEnvironment) WriteArray(name string, arr container.Array) string {
	env.t.Helper()
	return WriteArray(env.t, env.Dir, name, arr)
}
