package music

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nikhilbhutani/listenloved/internal/fallback"
)

// HTTPStatusError is a non-2xx answer for a track download.
type HTTPStatusError struct {
	Track string
	Code  int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetch track %s: status %d", e.Track, e.Code)
}

// HTTPLoader downloads /<id> relative to each music base in turn.
type HTTPLoader struct {
	Client *fallback.Client
}

func (h HTTPLoader) Load(ctx context.Context, id string) (io.ReadCloser, error) {
	if !validName(id) {
		return nil, fmt.Errorf("%w: %q", ErrTrackNotFound, id)
	}
	resp, err := h.Client.Do(ctx, "/"+url.PathEscape(id), fallback.Request{Method: http.MethodGet})
	if err != nil {
		return nil, fmt.Errorf("fetch track %s: %w", id, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{Track: id, Code: resp.StatusCode}
	}
	return resp.Body, nil
}
