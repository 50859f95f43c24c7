package diagram

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/httputil"
)

// plantumlEncoding is unpadded base64 over the PlantUML alphabet.
var plantumlEncoding = base64.NewEncoding("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_").
	WithPadding(base64.NoPadding)

// Encode returns the text encoding of a PlantUML source used in server
// URLs: raw deflate, then base64 over the PlantUML alphabet.
func Encode(src []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(src); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return plantumlEncoding.EncodeToString(buf.Bytes()), nil
}

// ServerTool renders diagrams on a PlantUML server.
type ServerTool struct {
	URL    string
	Client *httputil.Client
}

func (t *ServerTool) Name() string { return plantumlName }

// ImageURL returns the server URL of the image of src in format.
func (t *ServerTool) ImageURL(src []byte, format string) (string, error) {
	enc, err := Encode(src)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(t.URL, "/") + "/" + format + "/" + enc, nil
}

func (t *ServerTool) Render(ctx context.Context, src, format, outDir string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", src)
	}
	u, err := t.ImageURL(data, format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTool, err, "encode %s", src)
	}

	client := t.Client
	if client == nil {
		client = httputil.NewClient(30 * time.Second)
	}
	img, err := client.Get(ctx, u)
	if err != nil {
		return err
	}
	dst := ExpectedName(src, format, outDir)
	if err := os.WriteFile(dst, img, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "write %s", dst)
	}
	return nil
}
