package solidhdf5

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/solidhdf5/internal/version"
	"github.com/arthur-debert/solidhdf5/pkg/arrayio"
	"github.com/arthur-debert/solidhdf5/pkg/config"
	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/logging"
	"github.com/arthur-debert/solidhdf5/pkg/manifest"
	"github.com/arthur-debert/solidhdf5/pkg/store"
	"github.com/spf13/cobra"
)

type storeFlags struct {
	input    string
	manifest string
	project  string
	material string
	method   string
	axes     string
	date     string
	time     string
	dtype    string
}

func (a *app) newStoreCmd() *cobra.Command {
	var f storeFlags

	cmd := &cobra.Command{
		Use:     "store [container] <sample/dataset>",
		Short:   MsgStoreShort,
		Long:    MsgStoreLong,
		Example: MsgStoreExample,
		GroupID: "data",
		Args: func(cmd *cobra.Command, args []string) error {
			if f.manifest != "" {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.manifest != "" {
				return a.runStoreManifest(cmd, args, f)
			}
			return a.runStore(cmd, args, f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", MsgFlagInput)
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", MsgFlagManifest)
	cmd.Flags().StringVar(&f.project, "project", "", MsgFlagProject)
	cmd.Flags().StringVar(&f.material, "material", "", MsgFlagMaterial)
	cmd.Flags().StringVar(&f.method, "method", "", MsgFlagMethod)
	cmd.Flags().StringVar(&f.axes, "axes", "", MsgFlagAxes)
	cmd.Flags().StringVar(&f.date, "date", "", MsgFlagDate)
	cmd.Flags().StringVar(&f.time, "time", "", MsgFlagTime)
	cmd.Flags().StringVar(&f.dtype, "dtype", "", MsgFlagDType)
	cmd.MarkFlagsMutuallyExclusive("input", "manifest")

	_ = cmd.MarkFlagFilename("input", "csv", "tsv", "txt", "json", "toml", "yaml", "yml")
	_ = cmd.MarkFlagFilename("manifest", "toml", "yaml", "yml")
	_ = cmd.RegisterFlagCompletionFunc("dtype", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.DTypes, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (a *app) runStore(cmd *cobra.Command, args []string, f storeFlags) error {
	logger := logging.GetLogger("cmd.store")

	if f.input == "" {
		return errors.New(errors.ErrInvalidInput, MsgErrNoInput)
	}
	path := args[len(args)-1]
	sample, dataset, err := container.SplitPath(path)
	if err != nil {
		return err
	}
	var name string
	if len(args) == 2 {
		name = args[0]
	}
	containerPath, err := a.container(name)
	if err != nil {
		return err
	}

	arr, err := arrayio.ReadFile(f.input)
	if err != nil {
		return err
	}

	req := store.Request{
		Container:   containerPath,
		Array:       arr,
		AxisNames:   f.axes,
		Project:     f.project,
		Material:    f.material,
		Method:      f.method,
		Date:        f.date,
		Time:        f.time,
		SampleName:  sample,
		DatasetName: dataset,
	}
	req.Stamp(a.now())

	logger.Info().
		Str("container", containerPath).
		Str("path", req.Path()).
		Str("input", f.input).
		Str("shape", container.FormatShape(arr.Shape)).
		Msg("Storing dataset")

	s, err := a.store(f.dtype)
	if err != nil {
		return err
	}
	if err := a.ensureDataDir(containerPath); err != nil {
		return err
	}

	res, err := s.Store(cmd.Context(), req)
	if err != nil {
		return err
	}

	r, err := a.renderer(cmd)
	if err != nil {
		return err
	}
	if err := r.RenderResult(res); err != nil {
		return err
	}
	return exitFor(res.Outcome)
}

func (a *app) runStoreManifest(cmd *cobra.Command, args []string, f storeFlags) error {
	logger := logging.GetLogger("cmd.store")

	m, err := manifest.Load(f.manifest)
	if err != nil {
		return err
	}
	name := m.Container
	if len(args) == 1 {
		name = args[0]
	}
	containerPath, err := a.container(name)
	if err != nil {
		return err
	}

	reqs, err := m.Requests(containerPath, a.now())
	if err != nil {
		return err
	}

	logger.Info().
		Str("container", containerPath).
		Str("manifest", m.Path()).
		Int("datasets", len(reqs)).
		Msg("Storing manifest")

	s, err := a.store(f.dtype)
	if err != nil {
		return err
	}
	if err := a.ensureDataDir(containerPath); err != nil {
		return err
	}

	results, batchErr := s.StoreBatch(cmd.Context(), containerPath, reqs)

	r, err := a.renderer(cmd)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		if err := r.RenderResult(results); err != nil {
			return err
		}
	} else if batchErr == nil {
		if err := r.RenderMessage(MsgNothingToRender); err != nil {
			return err
		}
	}
	if batchErr != nil {
		return batchErr
	}
	return exitFor(worst(results))
}

func (a *app) newLoadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "load [container] <sample/dataset>",
		Short:   MsgLoadShort,
		Long:    MsgLoadLong,
		Example: MsgLoadExample,
		GroupID: "data",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 2 {
				name = args[0]
			}
			containerPath, err := a.container(name)
			if err != nil {
				return err
			}

			s, err := a.store("")
			if err != nil {
				return err
			}
			res, err := s.Load(cmd.Context(), containerPath, args[len(args)-1])
			if err != nil {
				return err
			}

			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			if output != "" && res.Outcome == store.Success {
				if err := arrayio.WriteFile(output, *res.Array); err != nil {
					return err
				}
				return r.RenderMessage(fmt.Sprintf(MsgArrayWritten,
					res.Path, container.FormatShape(res.Array.Shape), output))
			}
			if err := r.RenderResult(res); err != nil {
				return err
			}
			return exitFor(res.Outcome)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	_ = cmd.MarkFlagFilename("output", "csv")

	return cmd
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [container...]",
		Short:   MsgShowShort,
		Long:    MsgShowLong,
		Example: MsgShowExample,
		GroupID: "data",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = []string{""}
			}
			containers := make([]string, 0, len(names))
			for _, name := range names {
				path, err := a.container(name)
				if err != nil {
					return err
				}
				containers = append(containers, path)
			}

			s, err := a.store("")
			if err != nil {
				return err
			}
			reports, err := s.ShowMany(cmd.Context(), containers...)
			if err != nil {
				return err
			}

			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			var result interface{} = reports
			if len(reports) == 1 {
				result = reports[0]
			}
			if err := r.RenderResult(result); err != nil {
				return err
			}

			for _, rep := range reports {
				if !rep.Accessible {
					return exitFor(store.Inaccessible)
				}
			}
			return nil
		},
	}
}

func (a *app) newGenConfigCmd() *cobra.Command {
	var write, resolved bool

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgGenConfigExample,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if resolved {
				data, err := a.cfg.Resolved()
				if err != nil {
					return errors.Wrap(err, errors.ErrInternal, "failed to marshal configuration")
				}
				_, err = out.Write(data)
				return err
			}

			content := config.GenerateConfigContent()
			if !write {
				_, err := fmt.Fprintln(out, content)
				return err
			}

			target := filepath.Join(a.paths.ConfigDir(), "config.toml")
			if _, err := os.Stat(target); err == nil {
				return errors.Newf(errors.ErrInvalidInput, MsgErrConfigExists, target)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrConfigLoad, MsgErrWriteConfig, target)
			}
			if err := os.WriteFile(target, []byte(content+"\n"), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrConfigLoad, MsgErrWriteConfig, target)
			}
			_, err := fmt.Fprintf(out, MsgConfigWritten, target)
			return err
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&resolved, "resolved", false, MsgFlagResolved)
	cmd.MarkFlagsMutuallyExclusive("write", "resolved")

	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpCmd, _, err := cmd.Root().Find([]string{"help"}); err == nil {
				if helpCmd.RunE != nil {
					return helpCmd.RunE(helpCmd, []string{"topics"})
				} else if helpCmd.Run != nil {
					helpCmd.Run(helpCmd, []string{"topics"})
					return nil
				}
			}
			return fmt.Errorf("help command not found")
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat,
				version.Version, version.Commit, version.Date)
			return err
		},
	}
}
