package boltstore

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// setOwnedValue stores key=value in the nested bucket of owner under root.
func setOwnedValue(tx *bolt.Tx, root []byte, owner int64, key, value string) error {
	b, err := tx.Bucket(root).CreateBucketIfNotExists(itob(owner))
	if err != nil {
		return fmt.Errorf("create %s bucket for %d: %w", root, owner, err)
	}
	if err := b.Put([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("store %s[%d/%s]: %w", root, owner, key, err)
	}
	return nil
}

func (s *Store) getOwnedValue(root []byte, owner int64, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(root).Bucket(itob(owner))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, err
}

func (s *Store) GetMeta(_ context.Context, id int64, key string) (string, bool, error) {
	return s.getOwnedValue(bucketRecordMeta, id, key)
}

func (s *Store) SetMeta(_ context.Context, id int64, key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return setOwnedValue(tx, bucketRecordMeta, id, key, value)
	})
}

func (s *Store) DeleteMeta(_ context.Context, id int64, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecordMeta).Bucket(itob(id))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) GetTermMeta(_ context.Context, termID int64, key string) (string, bool, error) {
	return s.getOwnedValue(bucketTermMeta, termID, key)
}

func (s *Store) SetTermMeta(_ context.Context, termID int64, key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return setOwnedValue(tx, bucketTermMeta, termID, key, value)
	})
}
