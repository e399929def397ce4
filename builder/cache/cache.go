// Package cache keeps the run journal: a BoltDB log of generation runs plus a
// content-addressed store of the HTML each run wrote.
package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// ErrUnknownRun is returned when a run id has no record
	ErrUnknownRun = errors.New("unknown run")

	// ErrSchemaVersion is returned by Open for a journal written by a newer build
	ErrSchemaVersion = errors.New("unsupported journal schema version")
)

const journalFile = "journal.db"

// Journal records runs so a crash between the post write and the catalog save can be repaired
type Journal struct {
	db       *bolt.DB
	store    *Store
	basePath string
	now      func() time.Time
}

// Open opens or creates a journal at the given path
func Open(basePath string) (*Journal, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := &bolt.Options{
		Timeout:      10 * time.Second,
		FreelistType: bolt.FreelistArrayType,
	}

	dbPath := filepath.Join(basePath, journalFile)
	db, err := bolt.Open(dbPath, 0644, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	store, err := NewStore(filepath.Join(basePath, "store"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	j := &Journal{
		db:       db,
		store:    store,
		basePath: basePath,
		now:      time.Now,
	}

	if err := j.initSchema(); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	version, err := j.SchemaVersion()
	if err != nil {
		_ = j.Close()
		return nil, err
	}
	if version > SchemaVersion {
		_ = j.Close()
		return nil, fmt.Errorf("%w: %s has version %d, newest known is %d", ErrSchemaVersion, dbPath, version, SchemaVersion)
	}

	return j, nil
}

// Close closes the journal
func (j *Journal) Close() error {
	if j.store != nil {
		_ = j.store.Close()
	}
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Path returns the journal directory
func (j *Journal) Path() string {
	return j.basePath
}

// initSchema creates all buckets if they don't exist
func (j *Journal) initSchema() error {
	return j.db.Update(func(tx *bolt.Tx) error {
		for _, name := range AllBuckets() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		if meta.Get([]byte(KeySchemaVersion)) == nil {
			v := make([]byte, 4)
			binary.BigEndian.PutUint32(v, SchemaVersion)
			if err := meta.Put([]byte(KeySchemaVersion), v); err != nil {
				return err
			}
		}

		return nil
	})
}

// SchemaVersion returns the version stored in the meta bucket
func (j *Journal) SchemaVersion() (uint32, error) {
	var version uint32
	err := j.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(BucketMeta)).Get([]byte(KeySchemaVersion))
		if len(v) != 4 {
			return fmt.Errorf("schema version missing")
		}
		version = binary.BigEndian.Uint32(v)
		return nil
	})
	return version, err
}

// Begin snapshots html and records rec as pending. The assigned id is returned.
func (j *Journal) Begin(rec RunRecord, html []byte) (uint64, error) {
	hash, err := j.store.Put(CategoryPosts, html)
	if err != nil {
		return 0, fmt.Errorf("failed to snapshot %s: %w", rec.File, err)
	}

	rec.HTMLHash = hash
	rec.Status = StatusPending
	rec.FinishedAt = 0
	if rec.StartedAt == 0 {
		rec.StartedAt = j.now().Unix()
	}

	err = j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id

		data, err := Encode(&rec)
		if err != nil {
			return err
		}
		return b.Put(runKey(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record run for %s: %w", rec.File, err)
	}
	return rec.ID, nil
}

// Commit marks a run as committed
func (j *Journal) Commit(id uint64) error {
	return j.finish(id, StatusCommitted)
}

// Abort marks a run as aborted
func (j *Journal) Abort(id uint64) error {
	return j.finish(id, StatusAborted)
}

func (j *Journal) finish(id uint64, status RunStatus) error {
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		data := b.Get(runKey(id))
		if data == nil {
			return ErrUnknownRun
		}

		var rec RunRecord
		if err := Decode(data, &rec); err != nil {
			return err
		}
		rec.Status = status
		rec.FinishedAt = j.now().Unix()

		encoded, err := Encode(&rec)
		if err != nil {
			return err
		}
		return b.Put(runKey(id), encoded)
	})
	if err != nil {
		return fmt.Errorf("failed to mark run %d %s: %w", id, status, err)
	}
	return nil
}

// Get returns one run record
func (j *Journal) Get(id uint64) (*RunRecord, error) {
	var rec *RunRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketRuns)).Get(runKey(id))
		if data == nil {
			return ErrUnknownRun
		}
		var r RunRecord
		if err := Decode(data, &r); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read run %d: %w", id, err)
	}
	return rec, nil
}

// Runs returns every run in id order
func (j *Journal) Runs() ([]RunRecord, error) {
	return j.collect(func(RunRecord) bool { return true })
}

// Pending returns runs still waiting for their catalog save, in id order
func (j *Journal) Pending() ([]RunRecord, error) {
	return j.collect(func(r RunRecord) bool { return r.Status == StatusPending })
}

func (j *Journal) collect(keep func(RunRecord) bool) ([]RunRecord, error) {
	var runs []RunRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).ForEach(func(k, v []byte) error {
			var rec RunRecord
			if err := Decode(v, &rec); err != nil {
				return fmt.Errorf("run %x: %w", k, err)
			}
			if keep(rec) {
				runs = append(runs, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Snapshot returns the HTML stored under hash
func (j *Journal) Snapshot(hash string) ([]byte, error) {
	return j.store.Get(CategoryPosts, hash)
}

// Prune deletes the snapshots of finished runs that no pending run shares.
// It returns the number of snapshots removed.
func (j *Journal) Prune() (int, error) {
	runs, err := j.Runs()
	if err != nil {
		return 0, err
	}

	pending := make(map[string]bool)
	finished := make(map[string]bool)
	for _, r := range runs {
		if r.HTMLHash == "" {
			continue
		}
		if r.Status == StatusPending {
			pending[r.HTMLHash] = true
		} else {
			finished[r.HTMLHash] = true
		}
	}

	removed := 0
	for hash := range finished {
		if pending[hash] || !j.store.Exists(CategoryPosts, hash) {
			continue
		}
		if err := j.store.Delete(CategoryPosts, hash); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
