package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	cart "github.com/goliatone/go-cart"
	"github.com/goliatone/go-cart/pkg/catalog"
	"github.com/goliatone/go-cart/pkg/rules"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

type decodeFixture struct {
	Description string       `json:"description"`
	Cases       []decodeCase `json:"cases"`
}

type decodeCase struct {
	Name        string   `json:"name"`
	Input       string   `json:"input"`
	ExpectNames []string `json:"expectNames"`
	ExpectErr   string   `json:"expectErr"`
}

func TestDecodeFixtures(t *testing.T) {
	var fx decodeFixture
	if err := json.Unmarshal(readFixture(t, "catalog_decode.json"), &fx); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			items, err := catalog.Decode([]byte(tc.Input))
			if tc.ExpectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				if items != nil {
					t.Fatalf("expected no partial catalog, got %v", items)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			if diff := cmp.Diff(tc.ExpectNames, names); diff != "" {
				t.Fatalf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeValidationErrorsAreTyped(t *testing.T) {
	_, err := catalog.Decode([]byte(`{"productos":[{"nombre":"Apple","precio":-3}]}`))
	if !errors.Is(err, catalog.ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestFileSourceReadsDocument(t *testing.T) {
	items, err := catalog.FileSource{Path: fixturePath(t, "productos.json")}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []cart.CatalogItem{
		{Name: "Manzana", UnitPrice: decimal.RequireFromString("1.25"), Image: "img/manzana.png"},
		{Name: "Pera", UnitPrice: decimal.RequireFromString("0.9"), Image: "img/pera.png"},
		{Name: "Sandia", UnitPrice: decimal.RequireFromString("4.5"), Image: "img/sandia.png"},
		{Name: "Uvas", UnitPrice: decimal.RequireFromString("3"), Image: "img/uvas.png"},
	}
	if diff := cmp.Diff(want, items, decimalEqual); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := catalog.Load(context.Background(), catalog.FileSource{Path: filepath.Join(t.TempDir(), "nope.json")})
	var loadErr *catalog.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist cause, got %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	payload := readFixture(t, "productos.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/productos.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c, err := catalog.Load(context.Background(), catalog.HTTPSource{URL: server.URL + "/productos.json", Client: server.Client()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 items, got %d", c.Len())
	}

	_, err = catalog.Load(context.Background(), catalog.HTTPSource{URL: server.URL + "/missing"})
	var statusErr *catalog.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestCatalogLookups(t *testing.T) {
	apple := cart.NewCatalogItem("Apple", decimal.RequireFromString("2"))
	pear := cart.NewCatalogItem("Pear", decimal.RequireFromString("3"))
	c := catalog.New(apple, pear)

	got, err := c.At(1)
	if err != nil || got.Name != "Pear" {
		t.Fatalf("At(1): %v %v", got, err)
	}
	for _, i := range []int{-1, 2} {
		if _, err := c.At(i); !errors.Is(err, catalog.ErrItemNotFound) {
			t.Fatalf("At(%d): expected ErrItemNotFound, got %v", i, err)
		}
	}
	if got, err := c.Find("Apple"); err != nil || got.Name != "Apple" {
		t.Fatalf("Find: %v %v", got, err)
	}
	if _, err := c.Find("Kiwi"); !errors.Is(err, catalog.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	items := c.Items()
	items[0].Name = "mutated"
	if first, _ := c.At(0); first.Name != "Apple" {
		t.Fatalf("expected Items to return a copy")
	}

	var empty *catalog.Catalog
	if empty.Len() != 0 || len(empty.Items()) != 0 {
		t.Fatalf("expected nil catalog to behave as empty")
	}
}

func TestCatalogFilter(t *testing.T) {
	items, err := catalog.Decode(readFixture(t, "productos.json"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := catalog.New(items...)

	cel, err := rules.NewEvaluator(rules.Config{Engine: rules.EngineCEL})
	if err != nil {
		t.Fatalf("cel: %v", err)
	}
	for name, evaluator := range map[string]rules.Evaluator{"expr": nil, "cel": cel} {
		t.Run(name, func(t *testing.T) {
			cheap, err := c.Filter(evaluator, "precio < 2.0")
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(cheap) != 2 || cheap[0].Name != "Manzana" || cheap[1].Name != "Pera" {
				t.Fatalf("unexpected cheap items %v", cheap)
			}
			tail, err := c.Filter(evaluator, `index >= 2 && name != "Uvas"`)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(tail) != 1 || tail[0].Name != "Sandia" {
				t.Fatalf("unexpected tail items %v", tail)
			}
			exact, err := c.Filter(evaluator, `price_exact == "0.9"`)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(exact) != 1 || exact[0].Name != "Pera" {
				t.Fatalf("unexpected exact price match %v", exact)
			}
		})
	}

	if _, err := c.Filter(nil, "precio"); !errors.Is(err, rules.ErrNotBoolean) {
		t.Fatalf("expected ErrNotBoolean, got %v", err)
	}
}

func TestCatalogFilterWithFunctions(t *testing.T) {
	registry := rules.NewFunctionRegistry()
	if err := registry.Register("hasPrefix", func(args ...any) (any, error) {
		name, _ := args[0].(string)
		prefix, _ := args[1].(string)
		return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	c := catalog.New(
		cart.NewCatalogItem("Manzana", decimal.RequireFromString("1.25")),
		cart.NewCatalogItem("Mango", decimal.RequireFromString("2")),
		cart.NewCatalogItem("Pera", decimal.RequireFromString("0.9")),
	)
	for _, engine := range []rules.Engine{rules.EngineExpr, rules.EngineCEL} {
		t.Run(string(engine), func(t *testing.T) {
			evaluator, err := rules.NewEvaluator(rules.Config{Engine: engine, Functions: registry})
			if err != nil {
				t.Fatalf("evaluator: %v", err)
			}
			got, err := c.Filter(evaluator, `call("hasPrefix", nombre, "man")`)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if len(got) != 2 || got[0].Name != "Manzana" || got[1].Name != "Mango" {
				t.Fatalf("unexpected items %v", got)
			}
		})
	}
}

func TestCachedSource(t *testing.T) {
	var calls atomic.Int32
	source := catalog.SourceFunc(func(context.Context) ([]cart.CatalogItem, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("offline")
		}
		return []cart.CatalogItem{cart.NewCatalogItem("Apple", decimal.RequireFromString("1"))}, nil
	})
	cached := catalog.Cached(source, time.Minute)
	ctx := context.Background()

	if _, err := cached.Fetch(ctx); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	for i := 0; i < 3; i++ {
		items, err := cached.Fetch(ctx)
		if err != nil || len(items) != 1 {
			t.Fatalf("fetch %d: %v %v", i, items, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected failure not cached and success cached, got %d calls", calls.Load())
	}
	cached.Invalidate()
	if _, err := cached.Fetch(ctx); err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected refetch after invalidate, got %d calls", calls.Load())
	}
}

func TestRetryingSource(t *testing.T) {
	var calls atomic.Int32
	flaky := catalog.SourceFunc(func(context.Context) ([]cart.CatalogItem, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("timeout")
		}
		return []cart.CatalogItem{cart.NewCatalogItem("Apple", decimal.RequireFromString("1"))}, nil
	})
	retrying := catalog.Retrying(flaky, catalog.RetryConfig{Attempts: 3, Min: time.Millisecond, Max: 2 * time.Millisecond})
	items, err := retrying.Fetch(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("expected success on third attempt, got %v %v", items, err)
	}

	calls.Store(0)
	failing := catalog.SourceFunc(func(context.Context) ([]cart.CatalogItem, error) {
		calls.Add(1)
		return nil, errors.New("down")
	})
	_, err = catalog.Retrying(failing, catalog.RetryConfig{Attempts: 2, Min: time.Millisecond, Max: time.Millisecond}).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "2 attempts failed") {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestRetryingSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := catalog.SourceFunc(func(context.Context) ([]cart.CatalogItem, error) {
		cancel()
		return nil, errors.New("down")
	})
	_, err := catalog.Retrying(source, catalog.RetryConfig{Attempts: 5, Min: time.Second, Max: time.Second}).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStaticSourceCopies(t *testing.T) {
	source := catalog.Static(cart.NewCatalogItem("Apple", decimal.RequireFromString("1")))
	first, _ := source.Fetch(context.Background())
	first[0].Name = "mutated"
	second, _ := source.Fetch(context.Background())
	if second[0].Name != "Apple" {
		t.Fatalf("expected Static to hand out copies")
	}
}

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to locate fixture directory")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata", name)
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(fixturePath(t, name))
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", name, err)
	}
	return raw
}
