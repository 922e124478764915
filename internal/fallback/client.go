// Package fallback sends one logical HTTP request across an ordered list of
// equivalent base URLs, moving on only when a base clearly is not the service
// that was meant (404/405 or a transport failure).
package fallback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNoBases       = errors.New("fallback: at least one base URL is required")
	ErrRequestFailed = errors.New("fallback: request failed")
)

// StatusError records a base that answered with a routing status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fallback triggered for %s (%d)", e.URL, e.Code)
}

// RoutingError is returned when every base was tried without a definitive
// answer. Last is the error recorded for the final base.
type RoutingError struct {
	Path     string
	Attempts int
	Last     error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no base answered %s after %d attempts: %v", e.Path, e.Attempts, e.Last)
}

func (e *RoutingError) Unwrap() error { return e.Last }

// Request describes the call replayed against each base.
type Request struct {
	Method string
	Header http.Header
	Body   []byte
}

type Client struct {
	bases      []string
	httpClient *http.Client
}

// New builds a Client over bases, in the order given. A nil httpClient gets a
// client with a two minute timeout.
func New(bases []string, httpClient *http.Client) (*Client, error) {
	cleaned := make([]string, 0, len(bases))
	for _, b := range bases {
		b = strings.TrimRight(strings.TrimSpace(b), "/")
		if b != "" {
			cleaned = append(cleaned, b)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoBases
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{bases: cleaned, httpClient: httpClient}, nil
}

// Bases returns a copy of the base list in try order.
func (c *Client) Bases() []string {
	out := make([]string, len(c.bases))
	copy(out, c.bases)
	return out
}

// Do returns the first definitive response. Anything other than 404/405 is
// definitive, error statuses included. The caller owns the response body.
func (c *Client) Do(ctx context.Context, path string, req Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var lastErr error
	for _, base := range c.bases {
		url := base + path

		var body io.Reader
		if req.Body != nil {
			body = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			lastErr = fmt.Errorf("build request for %s: %w", url, err)
			continue
		}
		for k, vals := range req.Header {
			for _, v := range vals {
				httpReq.Header.Add(k, v)
			}
		}

		slog.Debug("fallback attempt", "method", method, "url", url)
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("fallback base unreachable", "url", url, "error", err)
			lastErr = err
			continue
		}

		if !isRoutingStatus(resp.StatusCode) {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		slog.Warn("fallback base rejected route", "url", url, "status", resp.StatusCode)
		lastErr = &StatusError{URL: url, Code: resp.StatusCode}
	}

	if lastErr == nil {
		lastErr = ErrRequestFailed
	}
	return nil, &RoutingError{Path: path, Attempts: len(c.bases), Last: lastErr}
}

func isRoutingStatus(code int) bool {
	return code == http.StatusNotFound || code == http.StatusMethodNotAllowed
}

var localHostPattern = regexp.MustCompile(`localhost|127\.0\.0\.1`)

// IsLocalHost reports whether host looks like a developer machine.
func IsLocalHost(host string) bool {
	return localHostPattern.MatchString(host)
}

// OrderBases puts the same-origin base first on developer machines and the
// remote deployment first everywhere else.
func OrderBases(local bool, sameOrigin, remote string) []string {
	if local {
		return []string{sameOrigin, remote}
	}
	return []string{remote, sameOrigin}
}
