package convert

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/model"
	"github.com/matzehuels/reqdoc/pkg/observability"
)

// Converter receives the lifecycle events of a conversion run.
//
// The driver calls Begin once, then EnterFile, the visits and LeaveFile for
// every file, then Finish. Close is called on every exit path, after Finish
// on success; it must release any open output and tolerate repeated calls.
type Converter interface {
	Begin(ctx context.Context) error
	EnterFile(ctx context.Context, file string) error
	VisitSection(ctx context.Context, s model.Section) error
	VisitRecord(ctx context.Context, rec *model.Record, level int) error
	LeaveFile(ctx context.Context, file string) error
	Finish(ctx context.Context) error
	Close() error
}

// Stats summarizes a driver run.
type Stats struct {
	Files    int
	Excluded int
	Sections int
	Records  int
	Duration time.Duration
}

// Driver walks a tree and feeds it to a Converter.
type Driver struct {
	// Exclude filters source files. Nil excludes nothing.
	Exclude *Excluder
	Logger  *log.Logger
}

// Convert feeds every non-excluded file of tree to conv, in input order.
// The first failure aborts the run; conv is closed on every path.
func (dr *Driver) Convert(ctx context.Context, tree *model.Tree, conv Converter) (stats Stats, err error) {
	logger := dr.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	hooks := observability.Convert()
	start := time.Now()

	files := groupFiles(tree)
	hooks.OnConvertStart(ctx, len(files))
	defer func() {
		if cerr := conv.Close(); cerr != nil && err == nil {
			err = cerr
		}
		stats.Duration = time.Since(start)
		hooks.OnConvertComplete(ctx, stats.Records, stats.Duration, err)
	}()

	logger.Debug("begin", "files", len(files))
	if err := conv.Begin(ctx); err != nil {
		return stats, err
	}

	for _, f := range files {
		if dr.Exclude.Excluded(f.Path) {
			logger.Debug("exclude file", "file", f.Path)
			hooks.OnFileExcluded(ctx, f.Path)
			stats.Excluded++
			continue
		}

		logger.Debug("enter file", "file", f.Path)
		hooks.OnFileEnter(ctx, f.Path)
		if err := conv.EnterFile(ctx, f.Path); err != nil {
			return stats, err
		}
		stats.Files++

		for _, it := range f.Items {
			switch {
			case it.IsSection():
				logger.Debug("section", "name", it.Section.Name, "level", it.Section.Level)
				if err := conv.VisitSection(ctx, *it.Section); err != nil {
					return stats, err
				}
				stats.Sections++
			case it.IsRecord():
				logger.Debug("record", "name", it.Record.Name, "type", it.Record.Type, "level", it.Level)
				if err := conv.VisitRecord(ctx, it.Record, it.Level); err != nil {
					return stats, err
				}
				stats.Records++
			}
		}

		logger.Debug("leave file", "file", f.Path)
		if err := conv.LeaveFile(ctx, f.Path); err != nil {
			return stats, err
		}
	}

	logger.Debug("finish")
	if err := conv.Finish(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// groupFiles regroups the items of tree by source file, in order of first
// appearance. Items without a file belong to the file listing them; files
// without items are kept.
func groupFiles(tree *model.Tree) []model.File {
	if tree == nil {
		return nil
	}
	var files []model.File
	index := make(map[string]int)
	add := func(path string) int {
		i, ok := index[path]
		if !ok {
			i = len(files)
			index[path] = i
			files = append(files, model.File{Path: path})
		}
		return i
	}
	for _, f := range tree.Files {
		add(f.Path)
		for _, it := range f.Items {
			if it.File == "" {
				it.File = f.Path
			}
			i := add(it.File)
			files[i].Items = append(files[i].Items, it)
		}
	}
	return files
}
