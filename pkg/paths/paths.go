// Package paths provides centralized path handling for solidhdf5.
// It follows the XDG Base Directory layout and resolves container
// names given on the command line to files on disk.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for solidhdf5
	EnvDataDir = "SOLIDHDF5_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for solidhdf5
	EnvConfigDir = "SOLIDHDF5_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for solidhdf5
	EnvStateDir = "SOLIDHDF5_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name used under every XDG base directory
	AppDirName = "solidhdf5"

	// LogFileName is the name of the log file
	LogFileName = "solidhdf5.log"

	// LockSuffix is appended to a container path to form its lock file
	LockSuffix = ".lock"
)

// ConfigFileNames are the user config files looked up, in order, in ConfigDir
var ConfigFileNames = []string{"config.toml", "config.yaml", "config.yml"}

// Paths resolves the directories solidhdf5 reads from and writes to
type Paths struct {
	dataDir   string
	configDir string
	stateDir  string
}

// New creates a Paths instance, honouring the SOLIDHDF5_*_DIR overrides
func New() *Paths {
	p := &Paths{
		dataDir:   filepath.Join(xdg.DataHome, AppDirName),
		configDir: filepath.Join(xdg.ConfigHome, AppDirName),
		stateDir:  filepath.Join(xdg.StateHome, AppDirName),
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.dataDir = ExpandHome(dir)
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	}
	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = ExpandHome(dir)
	}

	return p
}

// DataDir returns the directory where containers without a directory part live
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigDir returns the solidhdf5 config directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// StateDir returns the solidhdf5 state directory
func (p *Paths) StateDir() string {
	return p.stateDir
}

// LogFilePath returns the path of the log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ConfigFilePath returns the first existing user config file, or "" if none exists
func (p *Paths) ConfigFilePath() string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(p.configDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ResolveContainer turns a container name into an absolute file path.
//
// Names with a directory part are taken relative to the working directory.
// A bare file name is used as-is when it exists in the working directory and
// is otherwise placed in DataDir.
func (p *Paths) ResolveContainer(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New(errors.ErrInvalidInput, "container path is empty")
	}

	name = ExpandHome(name)

	if filepath.Base(name) == name {
		if _, err := os.Stat(name); err != nil && os.IsNotExist(err) {
			name = filepath.Join(p.dataDir, name)
		}
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "failed to get absolute path for %s", name)
	}
	return abs, nil
}

// LockPath returns the lock file guarding the container at path
func LockPath(containerPath string) string {
	return containerPath + LockSuffix
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}
