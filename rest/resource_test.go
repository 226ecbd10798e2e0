package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwctl/fwctl/storage"
)

// memBackend is a minimal in-memory cache backend for tests.
type memBackend map[string][]byte

func (m memBackend) Put(ctx context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func (m memBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m memBackend) Delete(ctx context.Context, key string) error {
	if _, ok := m[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m, key)
	return nil
}

func (m memBackend) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	return nil, nil
}

func TestResource_Exists(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/projects/p/global/firewalls/yes" {
			w.Write([]byte(`{"name":"yes"}`)) // nolint: errcheck
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`)) // nolint: errcheck
	}))
	defer ts.Close()

	svc := &Service{BaseURL: ts.URL, NewBackOff: fastRetry(0)}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"Exists", "projects/p/global/firewalls/yes", true},
		{"NotFound", "projects/p/global/firewalls/no", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Resource{Service: svc, Path: tt.path}
			got, err := res.Exists(context.Background())
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists() got = %t, want = %t", got, tt.want)
			}
		})
	}
}

func TestResource_MetadataCache(t *testing.T) {
	var gets int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&gets, 1)
		}
		w.Write([]byte(`{"name":"allow-ssh","network":"global/networks/default"}`)) // nolint: errcheck
	}))
	defer ts.Close()

	svc := &Service{
		BaseURL:    ts.URL,
		NewBackOff: fastRetry(0),
		Cache:      &storage.Cache{Backend: memBackend{}},
	}
	res := &Resource{Service: svc, Path: "projects/p/global/firewalls/allow-ssh"}

	ctx := context.Background()

	// First read fills the cache.
	if _, err := res.Metadata(ctx); err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	// Second read is served from the cache.
	if _, err := res.Metadata(ctx); err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if got := atomic.LoadInt32(&gets); got != 1 {
		t.Fatalf("GET requests after cached read got = %d, want = 1", got)
	}

	// A mutation invalidates the entry; the next read goes to the network.
	if _, err := res.Patch(ctx, map[string]string{"description": "x"}); err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if _, err := res.Metadata(ctx); err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if got := atomic.LoadInt32(&gets); got != 2 {
		t.Errorf("GET requests after invalidate got = %d, want = 2", got)
	}
}

func TestResource_MetadataNoCache(t *testing.T) {
	var gets int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gets, 1)
		w.Write([]byte(`{"name":"allow-ssh"}`)) // nolint: errcheck
	}))
	defer ts.Close()

	svc := &Service{BaseURL: ts.URL, NewBackOff: fastRetry(0)}
	res := &Resource{Service: svc, Path: "projects/p/global/firewalls/allow-ssh"}

	for i := 0; i < 2; i++ {
		if _, err := res.Metadata(context.Background()); err != nil {
			t.Fatalf("Metadata() error = %v", err)
		}
	}
	if got := atomic.LoadInt32(&gets); got != 2 {
		t.Errorf("GET requests got = %d, want = 2 (no cache configured)", got)
	}
}
