package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqdoc/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Converted 42 records (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks writes conversion, diagram, cache and HTTP events to the logger
// at debug level.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetConvertHooks(h)
	observability.SetDiagramHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnConvertStart(_ context.Context, files int) {
	h.logger.Debug("convert start", "files", files)
}

func (h *logHooks) OnConvertComplete(_ context.Context, records int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("convert failed", "records", records, "duration", d, "error", err)
		return
	}
	h.logger.Debug("convert complete", "records", records, "duration", d)
}

func (h *logHooks) OnFileEnter(_ context.Context, file string) {
	h.logger.Debug("file", "path", file)
}

func (h *logHooks) OnFileExcluded(_ context.Context, file string) {
	h.logger.Debug("file excluded", "path", file)
}

func (h *logHooks) OnRecordDispatched(_ context.Context, typeName, source string) {
	h.logger.Debug("dispatch", "type", typeName, "handler", source)
}

func (h *logHooks) OnRenderStart(_ context.Context, tool, path string) {
	h.logger.Debug("render diagram", "tool", tool, "path", path)
}

func (h *logHooks) OnRenderComplete(_ context.Context, tool, path string, d time.Duration, err error) {
	h.logger.Debug("diagram rendered", "tool", tool, "path", path, "duration", d, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "error", err)
}
