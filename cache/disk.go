package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jonwraymond/fetchops/observe"
)

// diskDocument is the on-disk shape of one cache entry: the stored value,
// when it was stored (unix milliseconds), its lifetime (milliseconds),
// and the memory key it belongs to.
type diskDocument struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	TTL       int64           `json:"ttl"`
	Key       string          `json:"key"`
}

// diskStore mirrors cache entries to one JSON file per entry. Memory is
// authoritative: every method is best-effort, logging failures at debug
// and never surfacing them to cache callers.
type diskStore struct {
	dir    string
	logger observe.Logger
}

func newDiskStore(dir string, logger observe.Logger) *diskStore {
	return &diskStore{dir: dir, logger: logger}
}

// write persists an entry. The directory is created on demand.
func (d *diskStore) write(memKey string, value any, storedAt time.Time, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		d.logger.Debug("disk mirror encode failed",
			observe.F("key", memKey),
			observe.F("error", err.Error()))
		return
	}

	doc, err := json.Marshal(diskDocument{
		Data:      data,
		Timestamp: storedAt.UnixMilli(),
		TTL:       ttl.Milliseconds(),
		Key:       memKey,
	})
	if err != nil {
		d.logger.Debug("disk mirror encode failed",
			observe.F("key", memKey),
			observe.F("error", err.Error()))
		return
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		d.logger.Debug("disk mirror directory failed",
			observe.F("dir", d.dir),
			observe.F("error", err.Error()))
		return
	}

	path := filepath.Join(d.dir, fileName(memKey))
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		d.logger.Debug("disk mirror write failed",
			observe.F("path", path),
			observe.F("error", err.Error()))
	}
}

// load reads an entry back. Expired files are deleted on sight. Any read
// or decode problem degrades to a miss.
func (d *diskStore) load(memKey string, now time.Time) (json.RawMessage, time.Time, time.Duration, bool) {
	path := filepath.Join(d.dir, fileName(memKey))

	raw, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hex digest inside d.dir.
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Debug("disk mirror read failed",
				observe.F("path", path),
				observe.F("error", err.Error()))
		}
		return nil, time.Time{}, 0, false
	}

	var doc diskDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		d.logger.Debug("disk mirror decode failed",
			observe.F("path", path),
			observe.F("error", err.Error()))
		return nil, time.Time{}, 0, false
	}

	storedAt := time.UnixMilli(doc.Timestamp)
	ttl := time.Duration(doc.TTL) * time.Millisecond
	if now.Sub(storedAt) > ttl {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Debug("disk mirror cleanup failed",
				observe.F("path", path),
				observe.F("error", err.Error()))
		}
		return nil, time.Time{}, 0, false
	}

	return doc.Data, storedAt, ttl, true
}

// remove deletes an entry's file. Missing files are fine.
func (d *diskStore) remove(memKey string) {
	path := filepath.Join(d.dir, fileName(memKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		d.logger.Debug("disk mirror remove failed",
			observe.F("path", path),
			observe.F("error", err.Error()))
	}
}

// clear deletes every entry file in the directory. Only names shaped like
// this store's own files (hex digest + .json) are touched.
func (d *diskStore) clear() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Debug("disk mirror clear failed",
				observe.F("dir", d.dir),
				observe.F("error", err.Error()))
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isEntryFile(entry.Name()) {
			continue
		}
		path := filepath.Join(d.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Debug("disk mirror remove failed",
				observe.F("path", path),
				observe.F("error", err.Error()))
		}
	}
}

// isEntryFile reports whether name is a 64-hex-digit digest plus ".json".
func isEntryFile(name string) bool {
	const suffix = ".json"
	if len(name) != 64+len(suffix) || name[64:] != suffix {
		return false
	}
	for _, c := range name[:64] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
