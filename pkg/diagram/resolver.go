package diagram

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/cache"
	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/observability"
)

// Resolver places diagrams into an output directory.
type Resolver struct {
	// Roots are searched in order for declared paths that do not exist as
	// given.
	Roots  []string
	OutDir string
	Format string // DefaultFormat when empty

	PlantUML Tool
	Graphviz Tool

	// Cache holds rendered images. Nil disables caching.
	Cache  cache.Cache
	Logger *log.Logger
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return r.Logger
}

func (r *Resolver) format() string {
	if r.Format == "" {
		return DefaultFormat
	}
	return r.Format
}

func (r *Resolver) outDir() string {
	if r.OutDir == "" {
		return "."
	}
	return r.OutDir
}

// Locate returns the file a declared path refers to: the path itself if it
// exists, otherwise the first root containing it.
func (r *Resolver) Locate(declared string) (string, error) {
	if isFile(declared) {
		return declared, nil
	}
	if !filepath.IsAbs(declared) {
		for _, root := range r.Roots {
			if p := filepath.Join(root, declared); isFile(p) {
				return p, nil
			}
		}
	}
	return "", errors.Wrap(errors.ErrCodeNotFound, &errors.NotFoundError{Declared: declared},
		"diagram %s not found (source roots: %v)", declared, r.Roots)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// Place locates declared, renders or copies it into the output directory
// and returns the path of the placed image.
func (r *Resolver) Place(ctx context.Context, declared string) (string, error) {
	src, err := r.Locate(declared)
	if err != nil {
		return "", err
	}
	out := r.outDir()
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeSink, err, "create %s", out)
	}

	kind := Classify(src)
	if kind == KindImage {
		dst := filepath.Join(out, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return "", errors.Wrap(errors.ErrCodeSink, err, "copy %s", src)
		}
		r.logger().Debug("diagram copied", "src", src, "dst", dst)
		return dst, nil
	}

	tool := r.PlantUML
	if kind == KindGraphviz {
		tool = r.Graphviz
	}
	if tool == nil {
		return "", errors.New(errors.ErrCodeTool, "no %s tool configured for %s", kind, declared)
	}
	return r.render(ctx, tool, declared, src, out)
}

func (r *Resolver) render(ctx context.Context, tool Tool, declared, src, out string) (string, error) {
	format := r.format()
	expected := ExpectedName(src, format, out)

	data, err := os.ReadFile(src)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", src)
	}
	key := cache.DiagramKey(tool.Name(), format, data)
	if r.fromCache(ctx, key, expected) {
		r.logger().Debug("diagram from cache", "src", src, "dst", expected)
		return expected, nil
	}

	// A stale image from an earlier run must not pass the name check below.
	if err := os.Remove(expected); err != nil && !os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeSink, err, "remove %s", expected)
	}

	hooks := observability.Diagram()
	hooks.OnRenderStart(ctx, tool.Name(), src)
	start := time.Now()
	err = tool.Render(ctx, src, format, out)
	hooks.OnRenderComplete(ctx, tool.Name(), src, time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeTool, err, "%s: render %s", tool.Name(), declared)
		}
		return "", err
	}

	if !isFile(expected) {
		return "", errors.Wrap(errors.ErrCodeNotFound,
			&errors.NotFoundError{Declared: declared, Expected: expected},
			"diagram %s was rendered, but %s was not produced; the tool named its output differently, "+
				"for example after the name given to @startuml", declared, expected)
	}
	r.toCache(ctx, key, expected)
	r.logger().Debug("diagram rendered", "tool", tool.Name(), "src", src, "dst", expected, "duration", time.Since(start))
	return expected, nil
}

// fromCache writes the cached image for key to dst. Cache failures count as
// misses.
func (r *Resolver) fromCache(ctx context.Context, key, dst string) bool {
	if r.Cache == nil {
		return false
	}
	hooks := observability.Cache()
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		hooks.OnCacheMiss(ctx, "diagram")
		return false
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return false
	}
	hooks.OnCacheHit(ctx, "diagram")
	return true
}

func (r *Resolver) toCache(ctx context.Context, key, path string) {
	if r.Cache == nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, 0); err != nil {
		r.logger().Warn("cache diagram", "path", path, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "diagram", len(data))
}

// copyFile copies src to dst. Copying a file onto itself is a no-op.
func copyFile(src, dst string) error {
	if same(src, dst) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	outf, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outf, in); err != nil {
		outf.Close()
		return err
	}
	return outf.Close()
}

func same(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
