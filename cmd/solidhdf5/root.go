package solidhdf5

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/arthur-debert/solidhdf5/internal/version"
	"github.com/arthur-debert/solidhdf5/pkg/cobrax/topics"
	"github.com/arthur-debert/solidhdf5/pkg/config"
	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/container/hdf5"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	"github.com/arthur-debert/solidhdf5/pkg/paths"
	"github.com/arthur-debert/solidhdf5/pkg/store"
	"github.com/arthur-debert/solidhdf5/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// backendFunc builds the container backend from the store settings
type backendFunc func(config.StoreConfig) (container.Backend, error)

func hdf5Backend(sc config.StoreConfig) (container.Backend, error) {
	b, err := hdf5.New(hdf5.Options{
		DType:       sc.DType,
		Compression: sc.Compression,
		Shuffle:     sc.Shuffle,
		Checksum:    sc.Checksum,
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// app holds the global flags and what is resolved from them before a
// command runs
type app struct {
	verbosity  int
	configFile string
	format     ui.Format

	cfg   *config.Config
	paths *paths.Paths

	newBackend backendFunc
	now        func() time.Time
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(hdf5Backend, time.Now)
}

func newRootCmd(newBackend backendFunc, now func() time.Time) *cobra.Command {
	initTemplateFormatting()

	a := &app{newBackend: newBackend, now: now}

	rootCmd := &cobra.Command{
		Use:     "solidhdf5",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().Var(&a.format, "format", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "term", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "data",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(a.newStoreCmd())
	rootCmd.AddCommand(a.newLoadCmd())
	rootCmd.AddCommand(a.newShowCmd())
	rootCmd.AddCommand(a.newGenConfigCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())

	sub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		opts := topics.Options{
			Extensions: []string{".md", ".txt"},
			Renderer:   topics.NewGlamourRenderer(stdoutIsTerminal()),
		}
		if _, err := topics.Initialize(rootCmd, sub, opts); err != nil {
			log.Debug().Err(err).Msg("help topics unavailable")
		}
	}
	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// setup loads the configuration and settles the output format. An explicit
// --format wins over output.format.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: a.configFile})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.paths = paths.New()

	if !cmd.Flags().Changed("format") {
		format, err := ui.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		a.format = format
	}

	log.Debug().
		Str("config", cfg.Source).
		Str("format", a.format.String()).
		Msg("Configuration loaded")
	return nil
}

func (a *app) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	return ui.NewRenderer(a.format, cmd.OutOrStdout())
}

// store builds a Store; a non-empty dtype overrides store.dtype
func (a *app) store(dtype string) (*store.Store, error) {
	sc := a.cfg.Store
	if dtype != "" {
		if !slices.Contains(config.DTypes, dtype) {
			return nil, errors.Newf(errors.ErrInvalidInput, "unsupported dtype %q (want one of %s)",
				dtype, strings.Join(config.DTypes, ", "))
		}
		sc.DType = dtype
	}
	backend, err := a.newBackend(sc)
	if err != nil {
		return nil, err
	}

	opts := []store.Option{store.WithLogger(logging.GetLogger("store"))}
	if a.cfg.Lock.Enabled {
		opts = append(opts, store.WithLock(a.cfg.Lock.Timeout, a.cfg.Lock.Poll))
	}
	return store.New(backend, opts...), nil
}

// container resolves a container argument, falling back to container.default
func (a *app) container(name string) (string, error) {
	if name == "" {
		name = a.cfg.Container.Default
	}
	return a.paths.ResolveContainer(name)
}

// ensureDataDir creates the data directory when the container lives in it
func (a *app) ensureDataDir(containerPath string) error {
	dataDir, err := filepath.Abs(a.paths.DataDir())
	if err != nil || filepath.Dir(containerPath) != dataDir {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrContainerInaccessible, MsgErrDataDir, dataDir)
	}
	return nil
}
