package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStorage talks to the Supabase Storage REST API with the service
// role key.
type SupabaseStorage struct {
	endpoint   string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseStorage(projectURL, serviceKey string) *SupabaseStorage {
	return &SupabaseStorage{
		endpoint:   strings.TrimRight(projectURL, "/") + "/storage/v1/object",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// APIError is a non-success answer from the storage API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("supabase %s failed (%d)", e.Op, e.Status)
	}
	return fmt.Sprintf("supabase %s failed (%d): %s", e.Op, e.Status, e.Body)
}

func (s *SupabaseStorage) send(ctx context.Context, method, bucket, path string, body io.Reader, header http.Header) (*http.Response, error) {
	url := s.endpoint + "/" + bucket + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	return s.httpClient.Do(req)
}

// Upload overwrites any existing object at path.
func (s *SupabaseStorage) Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error {
	resp, err := s.send(ctx, http.MethodPost, bucket, path, data, http.Header{
		"Content-Type": {contentType},
		"X-Upsert":     {"true"},
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return apiError("upload", resp)
	}
	return nil
}

func (s *SupabaseStorage) Download(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	resp, err := s.send(ctx, http.MethodGet, bucket, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, path, err)
	}
	if resp.StatusCode < 400 {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	// Supabase reports a missing object as 400 with a not_found body on some
	// versions and as 404 on others.
	apiErr := apiError("download", resp)
	if resp.StatusCode == http.StatusNotFound || strings.Contains(apiErr.Body, "not_found") {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, path)
	}
	return nil, apiErr
}

func (s *SupabaseStorage) Delete(ctx context.Context, bucket, path string) error {
	resp, err := s.send(ctx, http.MethodDelete, bucket, path, nil, nil)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return apiError("delete", resp)
	}
	return nil
}

func apiError(op string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
