// Package boltstore implements storage.Adapter on a single bbolt file.
// Records and terms are JSON encoded under big-endian id keys; metadata and
// relationships live in per-owner nested buckets.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gistpen/internal/filex"
	"github.com/dmitrijs2005/gistpen/internal/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketRecords      = []byte("records")
	bucketRecordMeta   = []byte("record_meta")
	bucketTerms        = []byte("terms")
	bucketTermIndex    = []byte("term_index")
	bucketTermMeta     = []byte("term_meta")
	bucketRecordTerms  = []byte("record_terms")
	bucketTermRecords  = []byte("term_records")
	rootBuckets        = [][]byte{bucketRecords, bucketRecordMeta, bucketTerms, bucketTermIndex, bucketTermMeta, bucketRecordTerms, bucketTermRecords}
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

var _ storage.Adapter = (*Store)(nil)

// Open opens or creates a bbolt database at path.
func Open(path string) (*Store, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range rootBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func getRecord(tx *bolt.Tx, id int64) (*storage.Record, error) {
	data := tx.Bucket(bucketRecords).Get(itob(id))
	if data == nil {
		return nil, storage.ErrNotFound
	}
	rec := &storage.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %d: %w", id, err)
	}
	return rec, nil
}

func putRecord(tx *bolt.Tx, rec *storage.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := tx.Bucket(bucketRecords).Put(itob(rec.ID), data); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

func (s *Store) InsertRecord(_ context.Context, rec *storage.Record) (int64, error) {
	now := s.now()

	err := s.db.Update(func(tx *bolt.Tx) error {
		seq, err := tx.Bucket(bucketRecords).NextSequence()
		if err != nil {
			return fmt.Errorf("next record id: %w", err)
		}

		stored := rec.Clone()
		stored.ID = int64(seq)
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		stored.UpdatedAt = now

		if err := putRecord(tx, stored); err != nil {
			return err
		}
		*rec = *stored
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (s *Store) UpdateRecord(_ context.Context, rec *storage.Record) error {
	now := s.now()

	return s.db.Update(func(tx *bolt.Tx) error {
		cur, err := getRecord(tx, rec.ID)
		if err != nil {
			return err
		}

		stored := rec.Clone()
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = cur.CreatedAt
		}
		stored.UpdatedAt = now

		if err := putRecord(tx, stored); err != nil {
			return err
		}
		rec.CreatedAt = stored.CreatedAt
		rec.UpdatedAt = now
		return nil
	})
}

func (s *Store) DeleteRecord(_ context.Context, id int64, permanent bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, err := getRecord(tx, id)
		if err != nil {
			return err
		}

		if permanent {
			return purgeRecord(tx, id)
		}

		if rec.Status == storage.StatusTrash {
			return nil
		}
		if err := setOwnedValue(tx, bucketRecordMeta, id, storage.TrashStatusMetaKey, rec.Status); err != nil {
			return err
		}
		rec.Status = storage.StatusTrash
		rec.UpdatedAt = s.now()
		return putRecord(tx, rec)
	})
}

func purgeRecord(tx *bolt.Tx, id int64) error {
	key := itob(id)

	if err := tx.Bucket(bucketRecords).Delete(key); err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	if err := deleteNested(tx.Bucket(bucketRecordMeta), key); err != nil {
		return fmt.Errorf("delete meta of record %d: %w", id, err)
	}

	if terms := tx.Bucket(bucketRecordTerms).Bucket(key); terms != nil {
		termRecords := tx.Bucket(bucketTermRecords)
		if err := terms.ForEach(func(tid, _ []byte) error {
			if b := termRecords.Bucket(tid); b != nil {
				return b.Delete(key)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("detach terms of record %d: %w", id, err)
		}
	}
	if err := deleteNested(tx.Bucket(bucketRecordTerms), key); err != nil {
		return fmt.Errorf("delete terms of record %d: %w", id, err)
	}
	return nil
}

func deleteNested(parent *bolt.Bucket, key []byte) error {
	if parent.Bucket(key) == nil {
		return nil
	}
	return parent.DeleteBucket(key)
}

func (s *Store) GetRecord(_ context.Context, id int64) (*storage.Record, error) {
	var rec *storage.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, err = getRecord(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) QueryRecords(_ context.Context, f storage.RecordFilter) ([]*storage.Record, error) {
	all := make([]*storage.Record, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(_, v []byte) error {
			rec := &storage.Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("unmarshal record: %w", err)
			}
			all = append(all, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return f.Apply(all), nil
}
