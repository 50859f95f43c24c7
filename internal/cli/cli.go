// Package cli implements the reqdoc command-line interface.
//
// The CLI converts requirement trees into Markdown, reStructuredText and
// DOCX documents and prints trees for inspection. It is built on cobra,
// reads layered configuration through viper and logs through
// charmbracelet/log.
//
// # Commands
//
//   - markdown, rst, docx: convert a tree file into documents
//   - dump: print the conversion events of a tree
//   - cache: manage the diagram cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings are read from defaults, an optional reqdoc.yaml or reqdoc.toml,
// REQDOC_* environment variables and flags, in increasing precedence.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reqdoc/pkg/buildinfo"
	"github.com/matzehuels/reqdoc/pkg/cache"
	"github.com/matzehuels/reqdoc/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "reqdoc"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "reqdoc turns requirement trees into documents",
		Long: `reqdoc converts requirement trees into Markdown, reStructuredText and DOCX
documents. Sections become headings, records are rendered by type, and
PlantUML and Graphviz diagrams are rendered and embedded.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			registerLogHooks(c.Logger)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.convertCommand(pipeline.FormatMarkdown, "Convert a requirement tree to Markdown"))
	root.AddCommand(c.convertCommand(pipeline.FormatRST, "Convert a requirement tree to reStructuredText"))
	root.AddCommand(c.convertCommand(pipeline.FormatDOCX, "Convert a requirement tree to DOCX"))
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/reqdoc/).
func cacheDir() (string, error) {
	return cache.DefaultDir(appName)
}
