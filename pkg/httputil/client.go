package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/reqdoc/pkg/errors"
	"github.com/matzehuels/reqdoc/pkg/observability"
)

// DefaultTimeout is the request timeout of clients built by callers that
// have no better value.
const DefaultTimeout = 30 * time.Second

// maxBody bounds a response body; rendered diagrams are far smaller.
const maxBody = 32 << 20

// StatusError is a response with a non-2xx status code.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// Client fetches URLs with retry.
type Client struct {
	HTTP      *http.Client
	Attempts  int
	Delay     time.Duration // first backoff delay, doubled per retry
	UserAgent string
}

// NewClient returns a Client with the given request timeout, 3 attempts and
// a 1 second initial backoff.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		Attempts:  3,
		Delay:     time.Second,
		UserAgent: "reqdoc",
	}
}

// Get fetches rawURL and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse url %q", rawURL)
	}

	var body []byte
	err = Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		body, err = c.get(ctx, u)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", u.Redacted())
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, u *url.URL) ([]byte, error) {
	hooks := observability.HTTP()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, Retryable(serr)
		}
		return nil, serr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, Retryable(err)
	}
	return data, nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
