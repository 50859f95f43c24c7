package pipeline

import (
	"path/filepath"

	reqio "github.com/matzehuels/reqdoc/pkg/io"
	"github.com/matzehuels/reqdoc/pkg/model"
	"github.com/matzehuels/reqdoc/pkg/project"
)

// Load reads the tree file and, if one is set, the project file.
func Load(opts Options) (*model.Tree, *project.File, error) {
	tree, err := reqio.ImportTree(opts.TreePath)
	if err != nil {
		return nil, nil, err
	}
	if opts.Project == "" {
		return tree, nil, nil
	}
	proj, err := project.Load(opts.Project)
	if err != nil {
		return nil, nil, err
	}
	return tree, proj, nil
}

// sourceRoots returns the directories searched for diagrams: the configured
// sources, or the directory of the tree file when none are set.
func sourceRoots(opts Options) []string {
	if len(opts.Sources) > 0 {
		return opts.Sources
	}
	return []string{filepath.Dir(opts.TreePath)}
}
