package cli

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/reqdoc/pkg/diagram"
	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/pipeline"
)

// Configuration keys. Flags with dashes map to keys with underscores.
const (
	keyOut            = "out"
	keySource         = "source"
	keyExclude        = "exclude"
	keySingleDocument = "single_document"
	keyName           = "name"
	keyTopLevel       = "top_level"
	keyEmpty          = "empty"
	keyProject        = "project"
	keyPlantUML       = "plantuml"
	keyDiagramFormat  = "diagram_format"
	keyNoCache        = "no_cache"
)

// envPrefix prefixes environment overrides: REQDOC_OUT, REQDOC_NO_CACHE, ...
const envPrefix = "REQDOC"

// loadConfig layers defaults, the config file, the environment and the
// flags of fs. An explicit config file must exist; the default locations
// are optional.
func loadConfig(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(keyOut, pipeline.DefaultOutDir)
	v.SetDefault(keySource, []string{})
	v.SetDefault(keyExclude, []string{})
	v.SetDefault(keySingleDocument, false)
	v.SetDefault(keyName, pipeline.DefaultName)
	v.SetDefault(keyTopLevel, pipeline.DefaultTopLevel)
	v.SetDefault(keyEmpty, pipeline.DefaultEmpty)
	v.SetDefault(keyProject, "")
	v.SetDefault(keyPlantUML, "")
	v.SetDefault(keyDiagramFormat, pipeline.DefaultDiagramFormat)
	v.SetDefault(keyNoCache, false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		for _, dir := range configDirs() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// PLANTUML is the conventional variable of PlantUML installations.
	if err := v.BindEnv(keyPlantUML, envPrefix+"_PLANTUML", diagram.EnvPlantUML); err != nil {
		return nil, err
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := configKeys[key]; !known || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
	}
	return v, nil
}

var configKeys = map[string]struct{}{
	keyOut: {}, keySource: {}, keyExclude: {}, keySingleDocument: {}, keyName: {},
	keyTopLevel: {}, keyEmpty: {}, keyProject: {}, keyPlantUML: {},
	keyDiagramFormat: {}, keyNoCache: {},
}

// configDirs returns $XDG_CONFIG_HOME/reqdoc and ~/.config/reqdoc.
func configDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}
	return dirs
}

// optionsFromConfig builds pipeline options for a tree and an output format.
func optionsFromConfig(v *viper.Viper, tree, format string) pipeline.Options {
	return pipeline.Options{
		TreePath:       tree,
		Format:         format,
		OutDir:         v.GetString(keyOut),
		Sources:        v.GetStringSlice(keySource),
		Exclude:        v.GetStringSlice(keyExclude),
		SingleDocument: v.GetBool(keySingleDocument),
		Name:           v.GetString(keyName),
		TopLevel:       v.GetString(keyTopLevel),
		Empty:          v.GetString(keyEmpty),
		Project:        v.GetString(keyProject),
		PlantUML:       v.GetString(keyPlantUML),
		DiagramFormat:  v.GetString(keyDiagramFormat),
		NoCache:        v.GetBool(keyNoCache),
	}
}
