package diagram

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/httputil"
)

// EnvPlantUML names the environment variable holding the path of
// plantuml.jar or the URL of a PlantUML server.
const EnvPlantUML = "PLANTUML"

const plantumlName = "plantuml"

const installHint = "install PlantUML from https://plantuml.com/download and set " + EnvPlantUML +
	" to the path of plantuml.jar, or set it to a PlantUML server URL such as https://www.plantuml.com/plantuml"

// NewPlantUML returns the PlantUML tool selected by setting: a server for an
// http(s) URL, a jar for any other non-empty value, otherwise a plantuml
// executable from PATH. Without any of these the returned tool fails with
// an install hint when used.
func NewPlantUML(setting string, client *httputil.Client) Tool {
	switch {
	case strings.HasPrefix(setting, "http://"), strings.HasPrefix(setting, "https://"):
		return &ServerTool{URL: setting, Client: client}
	case setting != "":
		return &JarTool{Jar: setting}
	}
	if path, err := exec.LookPath(plantumlName); err == nil {
		return &CommandTool{Path: path}
	}
	return missingTool{}
}

// JarTool runs plantuml.jar with a Java runtime.
type JarTool struct {
	Jar  string
	Java string // "java" when empty
}

func (t *JarTool) Name() string { return plantumlName }

func (t *JarTool) Render(ctx context.Context, src, format, outDir string) error {
	java := t.Java
	if java == "" {
		java = "java"
	}
	if _, err := exec.LookPath(java); err != nil {
		return errors.New(errors.ErrCodeTool,
			"PlantUML needs a Java runtime, but %s was not found. Install one with:\n  macOS:  brew install openjdk\n  Linux:  apt install default-jre", java)
	}
	if !isFile(t.Jar) {
		return errors.New(errors.ErrCodeTool, "plantuml.jar not found at %s; %s", t.Jar, installHint)
	}
	return runPlantUML(ctx, java, []string{"-jar", t.Jar}, src, format, outDir)
}

// CommandTool runs a plantuml executable.
type CommandTool struct {
	Path string
}

func (t *CommandTool) Name() string { return plantumlName }

func (t *CommandTool) Render(ctx context.Context, src, format, outDir string) error {
	return runPlantUML(ctx, t.Path, nil, src, format, outDir)
}

// runPlantUML runs "prog args... <src> -t<format> -o <outDir>" with absolute
// paths; PlantUML resolves -o relative to the source file otherwise.
func runPlantUML(ctx context.Context, prog string, args []string, src, format, outDir string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, prog, append(args, absSrc, "-t"+format, "-o", absOut)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeTool, err, "plantuml %s: %s", filepath.Base(src), strings.TrimSpace(output.String()))
	}
	return nil
}

type missingTool struct{}

func (missingTool) Name() string { return plantumlName }

func (missingTool) Render(_ context.Context, src, _, _ string) error {
	return errors.New(errors.ErrCodeTool, "cannot render %s: no PlantUML found; %s", src, installHint)
}
