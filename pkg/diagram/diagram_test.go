package diagram

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/klauspost/compress/flate"

	"github.com/matzehuels/reqdoc/pkg/cache"
	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/httputil"
)

// fakeTool writes "<name>.<format>" for every source, where name is the
// source stem unless misname is set.
type fakeTool struct {
	misname string
	err     error
	calls   int
}

func (f *fakeTool) Name() string { return "fake" }

func (f *fakeTool) Render(_ context.Context, src, format, outDir string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	dst := ExpectedName(src, format, outDir)
	if f.misname != "" {
		dst = filepath.Join(outDir, f.misname+"."+format)
	}
	return os.WriteFile(dst, []byte("IMG:"+filepath.Base(src)), 0o644)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"flow.puml", KindPlantUML},
		{"a/b/flow.PlantUML", KindPlantUML},
		{"seq.wsd", KindPlantUML},
		{"graph.dot", KindGraphviz},
		{"graph.gv", KindGraphviz},
		{"photo.png", KindImage},
		{"noext", KindImage},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExpectedName(t *testing.T) {
	if got, want := ExpectedName("diagrams/flow.puml", "png", "out"), filepath.Join("out", "flow.png"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPlaceRendersDescription(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "diagrams", "flow.puml"), "@startuml\nA -> B\n@enduml\n")

	tool := &fakeTool{}
	r := &Resolver{Roots: []string{src}, OutDir: filepath.Join(dir, "out"), PlantUML: tool}
	got, err := r.Place(context.Background(), "diagrams/flow.puml")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out", "flow.png"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if tool.calls != 1 {
		t.Errorf("calls = %d, want 1", tool.calls)
	}
}

func TestPlaceRootsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "logo.png"), "first")
	writeFile(t, filepath.Join(dir, "b", "logo.png"), "second")

	out := filepath.Join(dir, "out")
	r := &Resolver{Roots: []string{filepath.Join(dir, "missing"), filepath.Join(dir, "a"), filepath.Join(dir, "b")}, OutDir: out}
	got, err := r.Place(context.Background(), "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(got)
	if string(data) != "first" {
		t.Errorf("copied %q, want the first root's file", data)
	}
}

func TestPlaceDeclaredPathAsGiven(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "pics", "photo.jpg")
	writeFile(t, img, "jpg")

	r := &Resolver{Roots: []string{filepath.Join(dir, "elsewhere")}, OutDir: filepath.Join(dir, "out")}
	got, err := r.Place(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "photo.jpg" {
		t.Errorf("got %q", got)
	}
}

func TestPlaceCopyOntoItself(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "photo.png")
	writeFile(t, img, "png")

	r := &Resolver{OutDir: dir}
	if _, err := r.Place(context.Background(), img); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(img)
	if string(data) != "png" {
		t.Errorf("file changed to %q", data)
	}
}

func TestPlaceNotFound(t *testing.T) {
	r := &Resolver{Roots: []string{t.TempDir()}, OutDir: t.TempDir()}
	_, err := r.Place(context.Background(), "diagrams/none.puml")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
	var nf *errors.NotFoundError
	if !stderrors.As(err, &nf) || nf.Declared != "diagrams/none.puml" || nf.Expected != "" {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestPlaceNameMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "flow.puml"), "@startuml differently_named\n@enduml\n")

	out := filepath.Join(dir, "out")
	r := &Resolver{Roots: []string{dir}, OutDir: out, PlantUML: &fakeTool{misname: "differently_named"}}
	_, err := r.Place(context.Background(), "flow.puml")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
	var nf *errors.NotFoundError
	if !stderrors.As(err, &nf) {
		t.Fatalf("no NotFoundError in %v", err)
	}
	if nf.Declared != "flow.puml" || nf.Expected != filepath.Join(out, "flow.png") {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestPlaceToolError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "g.dot"), "digraph {}")

	r := &Resolver{Roots: []string{dir}, OutDir: dir, Graphviz: &fakeTool{err: stderrors.New("crashed")}}
	if _, err := r.Place(context.Background(), "g.dot"); !errors.Is(err, errors.ErrCodeTool) {
		t.Errorf("got %v, want TOOL_ERROR", err)
	}
}

func TestPlaceNoTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "g.dot"), "digraph {}")

	r := &Resolver{Roots: []string{dir}, OutDir: dir}
	if _, err := r.Place(context.Background(), "g.dot"); !errors.Is(err, errors.ErrCodeTool) {
		t.Errorf("got %v, want TOOL_ERROR", err)
	}
}

func TestPlaceUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "flow.puml"), "@startuml\nA -> B\n@enduml\n")
	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	tool := &fakeTool{}
	for _, out := range []string{"out1", "out2"} {
		r := &Resolver{Roots: []string{dir}, OutDir: filepath.Join(dir, out), PlantUML: tool, Cache: c, Format: "svg"}
		got, err := r.Place(context.Background(), "flow.puml")
		if err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(got)
		if string(data) != "IMG:flow.puml" {
			t.Errorf("%s: image = %q", out, data)
		}
	}
	if tool.calls != 1 {
		t.Errorf("tool ran %d times, want 1", tool.calls)
	}
}

func TestPlaceStaleImageDoesNotHideMisnamedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(dir, "flow.puml"), "@startuml renamed\n@enduml\n")
	writeFile(t, filepath.Join(out, "flow.png"), "old image")

	r := &Resolver{Roots: []string{dir}, OutDir: out, PlantUML: &fakeTool{misname: "renamed"}}
	_, err := r.Place(context.Background(), "flow.puml")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
	if _, err := os.Stat(filepath.Join(out, "flow.png")); !os.IsNotExist(err) {
		t.Errorf("stale flow.png still present: %v", err)
	}
}

func TestEncode(t *testing.T) {
	sources := []string{
		"@startuml\nAlice -> Bob: hello\n@enduml\n",
		"@startuml\nA -> B\n@enduml\n",
		"@startuml\nclass Boot\nclass Journal\nBoot --> Journal\n@enduml\n",
	}
	for _, s := range sources {
		src := []byte(s)
		enc, err := Encode(src)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range enc {
			if !strings.ContainsRune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_", r) {
				t.Fatalf("Encode() = %q contains %q", enc, r)
			}
		}

		raw, err := plantumlEncoding.DecodeString(enc)
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, src) {
			t.Errorf("round trip = %q, want %q", got, src)
		}
	}
}

func TestServerTool(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "flow.puml")
	writeFile(t, src, "@startuml\nA -> B\n@enduml\n")

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Write([]byte("PNG"))
	}))
	defer srv.Close()

	client := httputil.NewClient(5 * time.Second)
	client.Delay = time.Millisecond
	tool := NewPlantUML(srv.URL+"/plantuml/", client)
	if _, ok := tool.(*ServerTool); !ok {
		t.Fatalf("NewPlantUML(url) = %T, want *ServerTool", tool)
	}
	if err := tool.Render(context.Background(), src, "png", dir); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(path, "/plantuml/png/") {
		t.Errorf("requested %q", path)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "flow.png"))
	if string(data) != "PNG" {
		t.Errorf("image = %q", data)
	}
}

func TestServerToolFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "flow.puml")
	writeFile(t, src, "@startuml\n@enduml\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "syntax error", http.StatusBadRequest)
	}))
	defer srv.Close()

	tool := &ServerTool{URL: srv.URL, Client: httputil.NewClient(5 * time.Second)}
	if err := tool.Render(context.Background(), src, "png", dir); !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("got %v, want NETWORK_ERROR", err)
	}
}

func TestNewPlantUMLJar(t *testing.T) {
	tool := NewPlantUML("/opt/plantuml.jar", nil)
	jar, ok := tool.(*JarTool)
	if !ok || jar.Jar != "/opt/plantuml.jar" {
		t.Fatalf("NewPlantUML(jar) = %#v", tool)
	}
}

func TestJarToolMissingJava(t *testing.T) {
	tool := &JarTool{Jar: "plantuml.jar", Java: "definitely-not-a-java-binary"}
	err := tool.Render(context.Background(), "a.puml", "png", t.TempDir())
	if !errors.Is(err, errors.ErrCodeTool) || !strings.Contains(err.Error(), "Java") {
		t.Errorf("got %v, want TOOL_ERROR with a Java hint", err)
	}
}

func TestMissingTool(t *testing.T) {
	err := missingTool{}.Render(context.Background(), "a.puml", "png", t.TempDir())
	if !errors.Is(err, errors.ErrCodeTool) || !strings.Contains(err.Error(), EnvPlantUML) {
		t.Errorf("got %v, want TOOL_ERROR naming %s", err, EnvPlantUML)
	}
}

func TestGraphvizTool(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "deps.dot")
	writeFile(t, src, "digraph G { a -> b; }\n")

	r := &Resolver{Roots: []string{dir}, OutDir: filepath.Join(dir, "out"), Graphviz: GraphvizTool{}, Format: "svg"}
	got, err := r.Place(context.Background(), "deps.dot")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80s", data)
	}
}

func TestGraphvizToolUnsupportedFormat(t *testing.T) {
	err := GraphvizTool{}.Render(context.Background(), "g.dot", "bmp", t.TempDir())
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("got %v, want UNSUPPORTED", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := RenderDOT(context.Background(), []byte("not dot {"), graphviz.SVG); err == nil {
		t.Error("expected a parse error")
	}
}
