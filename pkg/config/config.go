// Package config loads solidhdf5 settings.
//
// Settings are layered with koanf: the embedded defaults.toml first, then
// the user config file (TOML or YAML), then SOLIDHDF5_* environment
// variables. Later layers override earlier ones key by key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables that override settings
const EnvPrefix = "SOLIDHDF5_"

// Supported dataset element types
var DTypes = []string{"float64", "float32", "int64", "int32"}

// Config is the resolved solidhdf5 configuration
type Config struct {
	Container ContainerConfig `koanf:"container"`
	Store     StoreConfig     `koanf:"store"`
	Lock      LockConfig      `koanf:"lock"`
	Output    OutputConfig    `koanf:"output"`

	// Source is the user config file that was loaded, if any
	Source string `koanf:"-"`

	k *koanf.Koanf
}

type ContainerConfig struct {
	Default string `koanf:"default"`
}

type StoreConfig struct {
	DType       string `koanf:"dtype"`
	Compression int    `koanf:"compression"`
	Shuffle     bool   `koanf:"shuffle"`
	Checksum    bool   `koanf:"checksum"`
}

type LockConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout"`
	Poll    time.Duration `koanf:"poll"`
}

type OutputConfig struct {
	Format string `koanf:"format"`
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config file. It must exist when set.
	// When empty the user config in the solidhdf5 config dir is used if present.
	ConfigFile string
}

// Load builds the configuration from defaults, the user config file and the environment
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	source := opts.ConfigFile
	if source != "" {
		source = paths.ExpandHome(source)
		if _, err := os.Stat(source); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", source)
		}
	} else {
		source = paths.New().ConfigFilePath()
	}

	if source != "" {
		if err := k.Load(file.Provider(source), parserFor(source)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", source)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Source = source
	cfg.k = k

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// Validate checks value ranges that the decoder cannot express
func (c *Config) Validate() error {
	valid := false
	for _, dt := range DTypes {
		if c.Store.DType == dt {
			valid = true
			break
		}
	}
	if !valid {
		return errors.Newf(errors.ErrConfigValid, "store.dtype must be one of %s, got %q",
			strings.Join(DTypes, ", "), c.Store.DType)
	}

	if c.Store.Compression < 0 || c.Store.Compression > 9 {
		return errors.Newf(errors.ErrConfigValid, "store.compression must be between 0 and 9, got %d", c.Store.Compression)
	}

	if c.Lock.Timeout < 0 || c.Lock.Poll < 0 {
		return errors.New(errors.ErrConfigValid, "lock durations must not be negative")
	}

	return nil
}

// Resolved returns the effective settings as TOML
func (c *Config) Resolved() ([]byte, error) {
	if c.k == nil {
		return nil, fmt.Errorf("configuration was not loaded")
	}
	out := koanf.New(".")
	for _, key := range []string{"container", "store", "lock", "output"} {
		if err := out.Set(key, c.k.Get(key)); err != nil {
			return nil, err
		}
	}
	return out.Marshal(toml.Parser())
}
