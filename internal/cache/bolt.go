package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketReads = []byte("reads")

// boltBackend persists entries across sessions (the "local" store).
// Reads are promoted into an in-memory layer on first access.
type boltBackend struct {
	db  *bolt.DB
	mem *memoryBackend
}

func openBoltBackend(baseDir, scope string) (*boltBackend, error) {
	dir := baseDir
	if scope != "" {
		dir = filepath.Join(baseDir, hashScope(scope))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "roster.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReads)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &boltBackend{db: db, mem: newMemoryBackend()}, nil
}

// hashScope partitions the local store per site so two sites never share entries
func hashScope(scope string) string {
	normalized := strings.TrimRight(strings.ToLower(scope), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (b *boltBackend) get(key string) ([]byte, bool) {
	if v, ok := b.mem.get(key); ok {
		return v, true
	}

	var data []byte
	b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketReads).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil, false
	}

	b.mem.set(key, data)
	return data, true
}

func (b *boltBackend) set(key string, value []byte) error {
	b.mem.set(key, value)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReads).Put([]byte(key), value)
	})
}

func (b *boltBackend) deletePrefix(prefix string) {
	b.mem.deletePrefix(prefix)
	b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketReads)
		// Collect first: deleting under a live cursor skips keys
		var keys [][]byte
		c := bkt.Cursor()
		for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := bkt.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *boltBackend) clear() {
	b.mem.clear()
	b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketReads); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketReads)
		return err
	})
}

func (b *boltBackend) len() int {
	n := 0
	b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketReads).Stats().KeyN
		return nil
	})
	return n
}

func (b *boltBackend) close() error {
	b.mem.clear()
	return b.db.Close()
}
