package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqdoc/pkg/pipeline"
)

// convertFlags holds the command-line flags shared by the conversion
// commands. Values not given on the command line come from the
// configuration.
type convertFlags struct {
	config string // explicit config file
	watch  bool   // convert again whenever the tree or project changes
}

// convertCommand creates the command converting a tree to format.
func (c *CLI) convertCommand(format, short string) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   format + " [tree]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Flags(), flags.config)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			opts := optionsFromConfig(v, args[0], format)
			opts.Logger = loggerFromContext(ctx)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(opts.NoCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if !flags.watch {
				return runConvert(ctx, runner, opts)
			}
			printInfo("Watching %d files, press Ctrl+C to stop", len(opts.WatchPaths()))
			return watchFiles(ctx, loggerFromContext(ctx), opts.WatchPaths(), debounceDelay, func(ctx context.Context) error {
				return runConvert(ctx, runner, opts)
			})
		},
	}

	f := cmd.Flags()
	f.StringP("out", "o", pipeline.DefaultOutDir, "output directory")
	f.StringSliceP("source", "s", nil, "directories searched for diagram files (default: directory of the tree)")
	f.StringSliceP("exclude", "x", nil, "glob patterns of source files to leave out")
	f.Bool("single-document", false, "write all source files into one document")
	f.StringP("name", "n", pipeline.DefaultName, "document name in single-document mode")
	f.String("top-level", pipeline.DefaultTopLevel, "top-level heading in single-document mode")
	f.StringP("empty", "e", pipeline.DefaultEmpty, "placeholder for empty table cells")
	f.StringP("project", "p", "", "project file declaring record types")
	f.String("plantuml", "", "PlantUML jar, command or server URL")
	f.String("diagram-format", pipeline.DefaultDiagramFormat, "image format of rendered diagrams: png, svg, jpg")
	f.Bool("no-cache", false, "disable the diagram cache")
	f.BoolVar(&flags.watch, "watch", false, "convert again when the tree or project file changes")
	f.StringVar(&flags.config, "config", "", "config file (default: reqdoc.yaml in . or the config directory)")
	registerConvertCompletions(cmd, format)

	return cmd
}

// runConvert runs one conversion with a spinner and prints its summary.
func runConvert(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Converting %s to %s...", opts.TreePath, opts.Format))
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return context.Canceled
		}
		return err
	}

	printSummary(res)
	prog.done(fmt.Sprintf("Converted %d records", res.Stats.Records))
	return nil
}

// dumpCommand creates the command printing the conversion events of a tree.
func (c *CLI) dumpCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "dump [tree]",
		Short: "Print the conversion events of a requirement tree",
		Long: `Print every section, record and attribute of a requirement tree in the
order a document converter receives them. Excluded files are left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			opts := optionsFromConfig(v, args[0], pipeline.FormatDump)
			opts.Stdout = cmd.OutOrStdout()

			runner := pipeline.NewRunner(nil, c.Logger)
			defer runner.Close()

			res, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("dumped", "files", res.Stats.Files, "records", res.Stats.Records)
			return nil
		},
	}

	cmd.Flags().StringSliceP("exclude", "x", nil, "glob patterns of source files to leave out")
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default: reqdoc.yaml in . or the config directory)")

	return cmd
}
