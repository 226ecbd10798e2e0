package kvbackend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fwctl/fwctl/storage"
	"github.com/pkg/errors"
)

func TestBackend_io(t *testing.T) {
	tests := []struct {
		name   string
		create func(t *testing.T) (store storage.KVBackend, done func())
	}{
		{
			"Memory",
			func(*testing.T) (storage.KVBackend, func()) {
				return &Memory{}, func() {}
			},
		},
		{
			"Bolt",
			func(t *testing.T) (storage.KVBackend, func()) {
				file := filepath.Join(t.TempDir(), "cache.db")
				bolt, err := NewBolt(file)
				if err != nil {
					t.Fatal(err)
				}
				return bolt, func() {
					if err := bolt.Close(); err != nil {
						t.Errorf("close db: %v", err)
					}
					if err := os.Remove(file); err != nil {
						t.Errorf("remove db file: %v", err)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, done := tt.create(t)
			defer done()

			ctx := context.Background()

			// Get non-existing
			_, err := be.Get(ctx, "projects/p/global/firewalls/a")
			if errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Get non-existing key; want error = %v, got = %v", storage.ErrNotFound, err)
			}

			// Create
			err = be.Put(ctx, "projects/p/global/firewalls/a", []byte(`{"name":"a"}`))
			if err != nil {
				t.Fatalf("Create error = %v", err)
			}
			assertValue(t, be, "projects/p/global/firewalls/a", []byte(`{"name":"a"}`))

			// Update
			err = be.Put(ctx, "projects/p/global/firewalls/a", []byte(`{"name":"a","description":"x"}`))
			if err != nil {
				t.Fatalf("Update error = %v", err)
			}
			assertValue(t, be, "projects/p/global/firewalls/a", []byte(`{"name":"a","description":"x"}`))

			// Create another
			err = be.Put(ctx, "projects/p/global/firewalls/b", []byte(`{"name":"b"}`))
			if err != nil {
				t.Fatalf("Create another error = %v", err)
			}

			// Scan non-existing
			assertScan(t, be, "projects/q/global/firewalls", nil)

			// Scan existing
			assertScan(t, be, "projects/p/global/firewalls", map[string][]byte{
				"projects/p/global/firewalls/a": []byte(`{"name":"a","description":"x"}`),
				"projects/p/global/firewalls/b": []byte(`{"name":"b"}`),
			})

			// Delete non-existing key
			err = be.Delete(ctx, "projects/p/global/firewalls/nonexisting")
			if errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Delete non-existing key; want error = %v, got = %v", storage.ErrNotFound, err)
			}

			// Delete existing key
			err = be.Delete(ctx, "projects/p/global/firewalls/a")
			if err != nil {
				t.Fatalf("Delete error = %v", err)
			}
			_, err = be.Get(ctx, "projects/p/global/firewalls/a")
			if errors.Cause(err) != storage.ErrNotFound {
				t.Errorf("Get deleted key; want error = %v, got = %v", storage.ErrNotFound, err)
			}
		})
	}
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		input      string
		bucket     string
		key        string
		wantErr    bool
	}{
		{"projects/p/global/firewalls/a", "projects/p/global/firewalls", "a", false},
		{"foo/bar", "foo", "bar", false},
		{"nobucket", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			bucket, key, err := bucketKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("bucketKey(%q) error = %v, wantErr = %t", tt.input, err, tt.wantErr)
			}
			if string(bucket) != tt.bucket || string(key) != tt.key {
				t.Errorf("bucketKey(%q) got = (%q, %q), want = (%q, %q)", tt.input, bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func assertValue(t *testing.T, be storage.KVBackend, key string, want []byte) {
	t.Helper()
	got, err := be.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get(%q) got = %s, want = %s", key, got, want)
	}
}

func assertScan(t *testing.T, be storage.KVBackend, prefix string, want map[string][]byte) {
	t.Helper()
	got, err := be.Scan(context.Background(), prefix)
	if err != nil {
		t.Fatalf("Scan(%q) error = %v", prefix, err)
	}
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan(%q) got = %v, want = %v", prefix, got, want)
	}
}
