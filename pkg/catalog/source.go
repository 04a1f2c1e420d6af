package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	cart "github.com/goliatone/go-cart"
)

// maxDocumentSize caps how much of a remote catalog is read.
const maxDocumentSize = 8 << 20

// Source fetches the product list.
type Source interface {
	Fetch(ctx context.Context) ([]cart.CatalogItem, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]cart.CatalogItem, error)

// Fetch implements Source.
func (fn SourceFunc) Fetch(ctx context.Context) ([]cart.CatalogItem, error) {
	if fn == nil {
		return nil, fmt.Errorf("catalog: nil source")
	}
	return fn(ctx)
}

// Static returns a Source that always yields items.
func Static(items ...cart.CatalogItem) Source {
	snapshot := append([]cart.CatalogItem(nil), items...)
	return SourceFunc(func(context.Context) ([]cart.CatalogItem, error) {
		return append([]cart.CatalogItem(nil), snapshot...), nil
	})
}

// FileSource reads a catalog document from disk.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]cart.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", s.Path, err)
	}
	return decodeFrom(s.Path, raw)
}

// HTTPSource fetches a catalog document with GET. A nil Client uses
// http.DefaultClient.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch implements Source.
func (s HTTPSource) Fetch(ctx context.Context) ([]cart.CatalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: request %q: %w", s.URL, err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %q: %w", s.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: s.URL, StatusCode: resp.StatusCode}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("catalog: read %q: %w", s.URL, err)
	}
	return decodeFrom(s.URL, raw)
}

// StatusError reports a non-2xx response from an HTTPSource.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: fetch %q: unexpected status %d", e.URL, e.StatusCode)
}
