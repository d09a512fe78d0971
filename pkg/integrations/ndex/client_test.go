package ndex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/cximage/pkg/cache"
	"github.com/matzehuels/cximage/pkg/errors"
)

const (
	testUUID    = "0a1b2c3d-4e5f-6789-abcd-ef0123456789"
	testNetwork = `[{"numberVerification":[{"longNumber":281474976710655}]},` +
		`{"networkAttributes":[{"n":"name","v":"tiny"}]},` +
		`{"nodes":[{"@id":1,"n":"TP53"},{"@id":2,"n":"MDM2"}]},` +
		`{"edges":[{"@id":3,"s":1,"t":2,"i":"binds"}]}]`
)

func testClient(t *testing.T, url string, backend cache.Cache) *Client {
	t.Helper()
	return NewClient(backend, time.Hour, url)
}

func TestClient_FetchNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/network/"+testUUID {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(testNetwork))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	doc, err := c.FetchNetwork(context.Background(), testUUID, false)
	if err != nil {
		t.Fatalf("FetchNetwork: %v", err)
	}
	if doc.Name() != "tiny" {
		t.Errorf("Name = %q, want tiny", doc.Name())
	}
	nodes, edges := doc.Counts()
	if nodes != 2 || edges != 1 {
		t.Errorf("Counts = %d, %d; want 2, 1", nodes, edges)
	}
}

func TestClient_FetchNetwork_UppercaseUUID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/network/"+testUUID {
			t.Errorf("path = %q, want canonical lowercase uuid", r.URL.Path)
		}
		w.Write([]byte(testNetwork))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	if _, err := c.FetchNetwork(context.Background(), "0A1B2C3D-4E5F-6789-ABCD-EF0123456789", false); err != nil {
		t.Fatalf("FetchNetwork: %v", err)
	}
}

func TestClient_FetchNetwork_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL, nil)

	_, err := c.FetchNetwork(context.Background(), testUUID, false)
	if err == nil {
		t.Fatal("expected error for missing network")
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestClient_FetchNetwork_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(testNetwork))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)
	_, err := c.FetchNetwork(context.Background(), testUUID, false)
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}

	c.SetBasicAuth("user", "pass")
	if _, err := c.FetchNetwork(context.Background(), testUUID, false); err != nil {
		t.Fatalf("FetchNetwork with auth: %v", err)
	}
}

func TestClient_FetchNetwork_InvalidID(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0", nil)
	_, err := c.FetchNetwork(context.Background(), "not-a-uuid", false)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClient_FetchNetwork_InvalidBodyNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"error":"maintenance"}`))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server.URL, fc)

	for i := 0; i < 2; i++ {
		_, err := c.FetchNetwork(context.Background(), testUUID, false)
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Fatalf("expected INVALID_FORMAT, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

func TestClient_FetchNetwork_Cached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(testNetwork))
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, server.URL, fc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc, err := c.FetchNetwork(ctx, testUUID, false)
		if err != nil {
			t.Fatalf("FetchNetwork #%d: %v", i, err)
		}
		if doc.Name() != "tiny" {
			t.Errorf("Name = %q", doc.Name())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}

	if _, err := c.FetchNetwork(ctx, testUUID, true); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("refresh should refetch, server called %d times", calls.Load())
	}
}

func TestNewClient_DefaultHost(t *testing.T) {
	c := NewClient(nil, time.Hour, "")
	if c.BaseURL() != "https://www.ndexbio.org" {
		t.Errorf("BaseURL = %q", c.BaseURL())
	}
}
