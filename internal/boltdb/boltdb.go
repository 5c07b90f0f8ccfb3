// Package boltdb keeps the outcome history of every session in a bbolt database file.
package boltdb

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/alanbriolat/media-archiver"
)

var Buckets = struct {
	Metadata []byte
	Outcomes []byte
}{
	Metadata: []byte("__metadata__"),
	Outcomes: []byte("outcomes"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

type Database interface {
	Close() error

	media_archiver.Archive
}

type database struct {
	*bbolt.DB
}

func New(path string) (_ Database, err error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) (err error) {
		// Ensure buckets exist
		var metadata *bbolt.Bucket
		if metadata, err = tx.CreateBucketIfNotExists(Buckets.Metadata); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(Buckets.Outcomes); err != nil {
			return err
		}

		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes == nil {
			version = 0
		} else if err = json.Unmarshal(versionBytes, &version); err != nil {
			return err
		}
		if version > currentVersion {
			return fmt.Errorf("database version %d is newer than supported version %d", version, currentVersion)
		}

		if versionBytes, err := json.Marshal(currentVersion); err != nil {
			return err
		} else if err = metadata.Put(MetadataKeys.Version, versionBytes); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &database{db}, nil
}

// ListOutcomes returns every archived outcome, oldest first.
func (d database) ListOutcomes() (outcomes []media_archiver.OutcomeRecord, err error) {
	err = d.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Buckets.Outcomes)
		return bucket.ForEach(func(k, v []byte) error {
			var record media_archiver.OutcomeRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("outcome %s: %w", k, err)
			}
			outcomes = append(outcomes, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].At.Before(outcomes[j].At)
	})
	return outcomes, nil
}

func (d database) WriteOutcome(record *media_archiver.OutcomeRecord) error {
	if record.ID == "" {
		return fmt.Errorf("outcome has no ID")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return d.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Outcomes).Put([]byte(record.ID), data)
	})
}
