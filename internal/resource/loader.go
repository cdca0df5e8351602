package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Fetcher retrieves the raw bytes behind a logical resource path.
// A non-2xx status must be reported through the returned status code, not the error.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (body []byte, status int, err error)
}

// Loader fetches JSON resources by logical path and decodes them.
// Each call performs exactly one attempt; retries and fallbacks belong to callers.
type Loader struct {
	fetcher Fetcher
}

// NewLoader wraps a Fetcher.
func NewLoader(f Fetcher) *Loader {
	return &Loader{fetcher: f}
}

// NewHTTPLoader loads resources relative to baseURL.
func NewHTTPLoader(baseURL string) *Loader {
	return NewLoader(NewHTTPFetcher(baseURL, nil))
}

// NewFSLoader loads resources from a local file tree.
func NewFSLoader(fsys fs.FS) *Loader {
	return NewLoader(FSFetcher{FS: fsys})
}

// Load fetches path and decodes it into a generic JSON value
// (map[string]any, []any, string, float64, bool or nil).
func (l *Loader) Load(ctx context.Context, p string) (any, error) {
	var v any
	if err := l.LoadInto(ctx, p, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadInto fetches path and decodes it into v.
func (l *Loader) LoadInto(ctx context.Context, p string, v any) error {
	body, err := l.Raw(ctx, p)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Path: p, Err: err}
	}
	if dec.More() {
		return &DecodeError{Path: p, Err: errors.New("trailing data after JSON value")}
	}
	return nil
}

// Raw fetches path without decoding it.
func (l *Loader) Raw(ctx context.Context, p string) ([]byte, error) {
	if l == nil || l.fetcher == nil {
		return nil, &FetchError{Path: p, Err: errors.New("no fetcher configured")}
	}
	body, status, err := l.fetcher.Fetch(ctx, p)
	if err != nil {
		return nil, &FetchError{Path: p, Status: status, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &FetchError{Path: p, Status: status}
	}
	return body, nil
}

// HTTPFetcher reads resources from a remote static host, bypassing caches.
type HTTPFetcher struct {
	baseURL string
	http    *http.Client
}

// NewHTTPFetcher builds a fetcher rooted at baseURL. A nil client uses a
// client without timeout; cancellation comes from the request context.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    client,
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, int, error) {
	endpoint, err := url.JoinPath(f.baseURL, strings.TrimLeft(name, "/"))
	if err != nil {
		return nil, 0, fmt.Errorf("join path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// FSFetcher reads resources from a file tree. Missing files report 404.
type FSFetcher struct {
	FS fs.FS
}

// Fetch implements Fetcher.
func (f FSFetcher) Fetch(_ context.Context, name string) ([]byte, int, error) {
	clean := path.Clean(strings.TrimLeft(name, "/"))
	if !fs.ValidPath(clean) {
		return nil, http.StatusNotFound, nil
	}
	body, err := fs.ReadFile(f.FS, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, http.StatusNotFound, nil
		}
		return nil, http.StatusInternalServerError, err
	}
	return body, http.StatusOK, nil
}
