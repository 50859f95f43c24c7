package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reserved holds the characters escaped in Markdown and reStructuredText.
const Reserved = "\\`*_{}[]<>()#+-.!|"

// EscapeReserved prefixes every reserved character with a backslash.
// Escaping already escaped text escapes the backslashes again.
func EscapeReserved(text string) string {
	if !strings.ContainsAny(text, Reserved) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if strings.ContainsRune(Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Opener opens an output document for writing.
type Opener func(path string) (io.WriteCloser, error)

// CreateFile creates path and its parent directories.
func CreateFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// Writer is a buffered output document. The first write error is kept and
// returned by Err and Close; later writes are dropped.
type Writer struct {
	bw  *bufio.Writer
	c   io.Closer
	err error
}

// OpenWriter opens path through open.
func OpenWriter(open Opener, path string) (*Writer, error) {
	if open == nil {
		open = CreateFile
	}
	wc, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Writer{bw: bufio.NewWriter(wc), c: wc}, nil
}

// WriteString writes s.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.bw.WriteString(s)
}

// Printf writes formatted text.
func (w *Writer) Printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.bw, format, args...)
}

// Err returns the first write error.
func (w *Writer) Err() error { return w.err }

// Close flushes and closes the document.
func (w *Writer) Close() error {
	if w.err == nil {
		w.err = w.bw.Flush()
	}
	if err := w.c.Close(); err != nil && w.err == nil {
		w.err = err
	}
	return w.err
}

// MemFS is an in-memory Opener target for tests and dry runs.
type MemFS struct {
	Files map[string]*strings.Builder
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{Files: make(map[string]*strings.Builder)}
}

// Open implements Opener.
func (m *MemFS) Open(path string) (io.WriteCloser, error) {
	b := &strings.Builder{}
	m.Files[filepath.ToSlash(path)] = b
	return nopCloser{b}, nil
}

// Get returns the content written to path.
func (m *MemFS) Get(path string) string {
	if b, ok := m.Files[filepath.ToSlash(path)]; ok {
		return b.String()
	}
	return ""
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
