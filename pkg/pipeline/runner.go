package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/cache"
	"github.com/matzehuels/reqdoc/pkg/convert"
	"github.com/matzehuels/reqdoc/pkg/httputil"
	"github.com/matzehuels/reqdoc/pkg/project"
	"github.com/matzehuels/reqdoc/pkg/render"
	"github.com/matzehuels/reqdoc/pkg/render/dump"
)

// Runner executes conversion runs with a shared diagram cache.
//
// The Runner keeps no state between runs apart from the cache, the HTTP
// client and the hook registry; the watch loop reuses one Runner for every
// run.
type Runner struct {
	Cache    cache.Cache
	Registry *project.Registry
	HTTP     *httputil.Client
	Logger   *log.Logger

	// Open creates output documents. Nil creates files on disk.
	Open render.Opener
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Registry: project.NewRegistry(),
		HTTP:     httputil.NewClient(httputil.DefaultTimeout),
		Logger:   logger,
	}
}

// Execute runs load → build → convert for opts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Format: opts.Format}

	// Stage 1: Load
	loadStart := time.Now()
	tree, proj, err := Load(opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Debug("loaded tree",
		"files", len(tree.Files),
		"records", tree.RecordCount(),
		"project", opts.Project,
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	conv, err := r.converter(opts, proj)
	if err != nil {
		return nil, err
	}

	// Stage 3: Convert
	dr := convert.Driver{
		Exclude: convert.NewExcluder(opts.Exclude),
		Logger:  opts.Logger,
	}
	stats, err := dr.Convert(ctx, tree, conv)
	result.Stats.Files = stats.Files
	result.Stats.Excluded = stats.Excluded
	result.Stats.Sections = stats.Sections
	result.Stats.ConvertTime = stats.Duration
	if doc, ok := conv.(*convert.Document); ok {
		c := doc.Counters()
		result.Outputs = c.Outputs
		result.Stats.Records = c.Records
		result.Stats.Skipped = c.Skipped
		result.Stats.Diagrams = c.Diagrams
	} else {
		result.Stats.Records = stats.Records
	}
	if err != nil {
		return result, err
	}

	r.Logger.Debug("converted",
		"format", opts.Format,
		"files", result.Stats.Files,
		"records", result.Stats.Records,
		"duration", result.Stats.ConvertTime)

	return result, nil
}

func (r *Runner) converter(opts Options, proj *project.File) (convert.Converter, error) {
	if opts.IsDump() {
		return dump.New(opts.Stdout), nil
	}
	rend, err := NewRenderer(opts.Format, r.Open)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(opts, r.Cache, r.HTTP)
	return NewDocument(opts, rend, resolver, proj, r.Registry), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
