package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqdoc/pkg/pipeline"
)

// treeExtensions are the file types offered for the tree argument.
var treeExtensions = []string{"yaml", "yml", "json"}

// completionCommand creates the command printing shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for reqdoc. Tree arguments complete to YAML
and JSON files, --diagram-format to the image formats the output supports.

  $ source <(reqdoc completion bash)
  $ reqdoc completion zsh > "${fpath[1]}/_reqdoc"
  $ reqdoc completion fish > ~/.config/fish/completions/reqdoc.fish
  PS> reqdoc completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// completeTree offers tree files for the first positional argument only.
func completeTree(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return treeExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// diagramFormatCompletion offers the image formats usable in format output.
// DOCX embeds raster images only.
func diagramFormatCompletion(format string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var formats []string
		for f := range pipeline.ValidDiagramFormats {
			if format == pipeline.FormatDOCX && f == "svg" {
				continue
			}
			formats = append(formats, f)
		}
		slices.Sort(formats)
		return formats, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerConvertCompletions wires argument and flag completion into a
// conversion command.
func registerConvertCompletions(cmd *cobra.Command, format string) {
	cmd.ValidArgsFunction = completeTree
	_ = cmd.RegisterFlagCompletionFunc("diagram-format", diagramFormatCompletion(format))
	_ = cmd.RegisterFlagCompletionFunc("project", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
	_ = cmd.MarkFlagDirname("out")
}
