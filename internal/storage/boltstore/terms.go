package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gistpen/internal/storage"
	bolt "go.etcd.io/bbolt"
)

func termIndexKey(taxonomy, slug string) []byte {
	return []byte(taxonomy + "\x00" + slug)
}

func getTerm(tx *bolt.Tx, id int64) (*storage.Term, error) {
	data := tx.Bucket(bucketTerms).Get(itob(id))
	if data == nil {
		return nil, storage.ErrNotFound
	}
	t := &storage.Term{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("unmarshal term %d: %w", id, err)
	}
	t.Count = termCount(tx, id)
	return t, nil
}

func putTerm(tx *bolt.Tx, t *storage.Term) error {
	stored := t.Clone()
	stored.Count = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal term: %w", err)
	}
	if err := tx.Bucket(bucketTerms).Put(itob(t.ID), data); err != nil {
		return fmt.Errorf("store term: %w", err)
	}
	return nil
}

func termCount(tx *bolt.Tx, id int64) int {
	b := tx.Bucket(bucketTermRecords).Bucket(itob(id))
	if b == nil {
		return 0
	}
	n := 0
	_ = b.ForEach(func(_, _ []byte) error {
		n++
		return nil
	})
	return n
}

func lookupTerm(tx *bolt.Tx, slug, taxonomy string) (int64, bool) {
	v := tx.Bucket(bucketTermIndex).Get(termIndexKey(taxonomy, slug))
	if v == nil {
		return 0, false
	}
	return btoi(v), true
}

func insertTerm(tx *bolt.Tx, slug, taxonomy string) (*storage.Term, error) {
	if _, ok := lookupTerm(tx, slug, taxonomy); ok {
		return nil, storage.ErrTermExists
	}

	seq, err := tx.Bucket(bucketTerms).NextSequence()
	if err != nil {
		return nil, fmt.Errorf("next term id: %w", err)
	}

	t := &storage.Term{ID: int64(seq), Taxonomy: taxonomy, Slug: slug, Name: slug}
	if err := putTerm(tx, t); err != nil {
		return nil, err
	}
	if err := tx.Bucket(bucketTermIndex).Put(termIndexKey(taxonomy, slug), itob(t.ID)); err != nil {
		return nil, fmt.Errorf("index term: %w", err)
	}
	return t, nil
}

func (s *Store) InsertTerm(_ context.Context, slug, taxonomy string) (*storage.Term, error) {
	var t *storage.Term
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		t, err = insertTerm(tx, slug, taxonomy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) UpdateTerm(_ context.Context, t *storage.Term) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		cur, err := getTerm(tx, t.ID)
		if err != nil {
			return err
		}
		if cur.Taxonomy != t.Taxonomy {
			return storage.ErrNotFound
		}
		if other, ok := lookupTerm(tx, t.Slug, t.Taxonomy); ok && other != t.ID {
			return storage.ErrTermExists
		}

		index := tx.Bucket(bucketTermIndex)
		if err := index.Delete(termIndexKey(cur.Taxonomy, cur.Slug)); err != nil {
			return fmt.Errorf("unindex term: %w", err)
		}

		cur.Slug = t.Slug
		cur.Name = t.Name
		if cur.Name == "" {
			cur.Name = t.Slug
		}
		if err := putTerm(tx, cur); err != nil {
			return err
		}
		return index.Put(termIndexKey(cur.Taxonomy, cur.Slug), itob(cur.ID))
	})
}

func (s *Store) GetTerm(_ context.Context, id int64, taxonomy string) (*storage.Term, error) {
	var t *storage.Term
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		t, err = getTerm(tx, id)
		if err == nil && t.Taxonomy != taxonomy {
			err = storage.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) QueryTerms(_ context.Context, f storage.TermFilter) ([]*storage.Term, error) {
	out := make([]*storage.Term, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTerms).ForEach(func(k, _ []byte) error {
			t, err := getTerm(tx, btoi(k))
			if err != nil {
				return err
			}
			if f.Match(t) {
				out = append(out, t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	storage.SortTerms(out)
	return out, nil
}

func (s *Store) SetObjectTerms(_ context.Context, id int64, slug, taxonomy string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		termID, ok := lookupTerm(tx, slug, taxonomy)
		if !ok {
			t, err := insertTerm(tx, slug, taxonomy)
			if err != nil {
				return err
			}
			termID = t.ID
		}

		recKey := itob(id)
		attached, err := tx.Bucket(bucketRecordTerms).CreateBucketIfNotExists(recKey)
		if err != nil {
			return fmt.Errorf("create record terms bucket: %w", err)
		}

		if err := detachTaxonomy(tx, attached, recKey, taxonomy); err != nil {
			return err
		}

		order, err := attached.NextSequence()
		if err != nil {
			return fmt.Errorf("next term order: %w", err)
		}
		if err := attached.Put(itob(termID), itob(int64(order))); err != nil {
			return fmt.Errorf("attach term: %w", err)
		}

		back, err := tx.Bucket(bucketTermRecords).CreateBucketIfNotExists(itob(termID))
		if err != nil {
			return fmt.Errorf("create term records bucket: %w", err)
		}
		return back.Put(recKey, []byte{})
	})
}

func (s *Store) ClearObjectTerms(_ context.Context, id int64, taxonomy string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		recKey := itob(id)
		attached := tx.Bucket(bucketRecordTerms).Bucket(recKey)
		if attached == nil {
			return nil
		}
		return detachTaxonomy(tx, attached, recKey, taxonomy)
	})
}

// detachTaxonomy removes every term of taxonomy from the record's attached
// bucket and the matching back references.
func detachTaxonomy(tx *bolt.Tx, attached *bolt.Bucket, recKey []byte, taxonomy string) error {
	var stale [][]byte
	if err := attached.ForEach(func(k, _ []byte) error {
		t, err := getTerm(tx, btoi(k))
		if err != nil {
			return err
		}
		if t.Taxonomy == taxonomy {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	}); err != nil {
		return err
	}

	termRecords := tx.Bucket(bucketTermRecords)
	for _, k := range stale {
		if err := attached.Delete(k); err != nil {
			return err
		}
		if b := termRecords.Bucket(k); b != nil {
			if err := b.Delete(recKey); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) GetObjectTerms(_ context.Context, id int64, taxonomy string) ([]*storage.Term, error) {
	type attachedTerm struct {
		term  *storage.Term
		order int64
	}
	var found []attachedTerm

	err := s.db.View(func(tx *bolt.Tx) error {
		attached := tx.Bucket(bucketRecordTerms).Bucket(itob(id))
		if attached == nil {
			return nil
		}
		return attached.ForEach(func(k, v []byte) error {
			t, err := getTerm(tx, btoi(k))
			if err != nil {
				return err
			}
			if t.Taxonomy == taxonomy {
				found = append(found, attachedTerm{term: t, order: btoi(v)})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].order < found[j].order })

	out := make([]*storage.Term, 0, len(found))
	for _, a := range found {
		out = append(out, a.term)
	}
	return out, nil
}
