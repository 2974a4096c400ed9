package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the version recorded in the database, 0 when unset.
func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		data := b.Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

// migrate brings the database up to CurrentSchemaVersion. A database written
// by a newer version is refused rather than rewritten.
func (s *BoltStore) migrate() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
		}

		version := 0
		if data := meta.Get(keySchemaVersion); data != nil {
			if err := json.Unmarshal(data, &version); err != nil {
				return fmt.Errorf("corrupt schema version: %w", err)
			}
		}
		if version > CurrentSchemaVersion {
			return fmt.Errorf("history database created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
		}

		for v := version; v < CurrentSchemaVersion; v++ {
			if err := runMigration(tx, v, v+1); err != nil {
				return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
			}
		}

		data, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return meta.Put(keySchemaVersion, data)
	})
}

func runMigration(tx *bbolt.Tx, from, to int) error {
	switch {
	case from == 0 && to == 1:
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	default:
		return nil
	}
}

// Clear removes every recorded run and keeps the schema metadata.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketRuns); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(bucketRuns)
		return err
	})
}
