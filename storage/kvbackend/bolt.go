package kvbackend

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwctl/fwctl/storage"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bolt stores key-value pairs in a bolt db file.
type Bolt struct {
	db *bolt.DB
}

// DefaultFile returns the default cache file location (~/.fwctl/cache.db).
func DefaultFile() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "get user")
	}
	return filepath.Join(u.HomeDir, ".fwctl", "cache.db"), nil
}

// NewBolt creates and opens a database at the given path. If the file or
// directory do not exist, they are created.
func NewBolt(file string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, errors.Wrapf(err, "ensure dir exists: %s", filepath.Dir(file))
	}
	db, err := bolt.Open(file, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	return &Bolt{db: db}, nil
}

// Close closes the Bolt DB store and releases all resources.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Put creates or updates a value.
func (b *Bolt) Put(ctx context.Context, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := bucketKey(key)
		if err != nil {
			return err
		}
		bkt, err := tx.CreateBucketIfNotExists(buc)
		if err != nil {
			return errors.Wrap(err, "ensure bucket exists")
		}
		return bkt.Put(k, value)
	})
}

// Get returns a single value.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, error) {
	var ret []byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		buc, k, err := bucketKey(key)
		if err != nil {
			return err
		}
		bkt := tx.Bucket(buc)
		if bkt == nil {
			return storage.ErrNotFound
		}
		data := bkt.Get(k)
		if len(data) == 0 {
			return storage.ErrNotFound
		}
		ret = make([]byte, len(data))
		copy(ret, data)
		return nil
	}); err != nil {
		return nil, err
	}
	return ret, nil
}

// Delete deletes a key.
func (b *Bolt) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		buc, k, err := bucketKey(key)
		if err != nil {
			return err
		}
		bkt := tx.Bucket(buc)
		if bkt == nil {
			return storage.ErrNotFound
		}
		if len(bkt.Get(k)) == 0 {
			return storage.ErrNotFound
		}
		if err := bkt.Delete(k); err != nil {
			return errors.Wrap(err, "delete key")
		}
		return nil
	})
}

// Scan returns all entries with keys matching the given prefix.
//
// Note: the prefix must match a bucket. The bucket used is the key up to the
// last / character.
func (b *Bolt) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if strings.HasSuffix(prefix, "/") {
		return nil, errors.New("prefix should not contain trailing /")
	}
	ret := make(map[string][]byte)
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(prefix))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			val := make([]byte, len(v))
			copy(val, v)
			ret[prefix+"/"+string(k)] = val
			return nil
		})
	})
	return ret, err
}

// bucketKey splits a resource path into a bolt bucket and key.
//
// The bucket is everything up to the last /, the key everything after it:
//
//   projects/p/global/firewalls/allow-ssh
//   ->
//   bucket: projects/p/global/firewalls
//   key:    allow-ssh
//
// Returns an error if the input does not contain a slash.
func bucketKey(input string) (bucket, key []byte, err error) {
	i := strings.LastIndex(input, "/")
	if i < 0 {
		return nil, nil, errors.Errorf("key %q must contain at least one /", input)
	}
	return []byte(input[:i]), []byte(input[i+1:]), nil
}
