package memory

import (
	"context"

	"github.com/dmitrijs2005/gistpen/internal/storage"
)

func (s *Store) InsertTerm(ctx context.Context, slug, taxonomy string) (*storage.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.insertTermLocked(slug, taxonomy)
	if err != nil {
		return nil, err
	}
	return s.withCount(t), nil
}

func (s *Store) insertTermLocked(slug, taxonomy string) (*storage.Term, error) {
	if s.findTermLocked(slug, taxonomy) != nil {
		return nil, storage.ErrTermExists
	}

	s.lastTermID++
	t := &storage.Term{ID: s.lastTermID, Taxonomy: taxonomy, Slug: slug, Name: slug}
	s.terms[t.ID] = t
	return t, nil
}

func (s *Store) findTermLocked(slug, taxonomy string) *storage.Term {
	for _, t := range s.terms {
		if t.Taxonomy == taxonomy && t.Slug == slug {
			return t
		}
	}
	return nil
}

func (s *Store) UpdateTerm(ctx context.Context, t *storage.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.terms[t.ID]
	if !ok || cur.Taxonomy != t.Taxonomy {
		return storage.ErrNotFound
	}
	if other := s.findTermLocked(t.Slug, t.Taxonomy); other != nil && other.ID != t.ID {
		return storage.ErrTermExists
	}

	cur.Slug = t.Slug
	cur.Name = t.Name
	if cur.Name == "" {
		cur.Name = t.Slug
	}
	return nil
}

func (s *Store) GetTerm(ctx context.Context, id int64, taxonomy string) (*storage.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.terms[id]
	if !ok || t.Taxonomy != taxonomy {
		return nil, storage.ErrNotFound
	}
	return s.withCount(t), nil
}

func (s *Store) QueryTerms(ctx context.Context, f storage.TermFilter) ([]*storage.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Term, 0)
	for _, t := range s.terms {
		c := s.withCount(t)
		if f.Match(c) {
			out = append(out, c)
		}
	}
	storage.SortTerms(out)
	return out, nil
}

func (s *Store) GetTermMeta(ctx context.Context, termID int64, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.termMeta[termID][key]
	return v, ok, nil
}

func (s *Store) SetTermMeta(ctx context.Context, termID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.termMeta[termID]
	if !ok {
		m = make(map[string]string)
		s.termMeta[termID] = m
	}
	m[key] = value
	return nil
}

func (s *Store) SetObjectTerms(ctx context.Context, id int64, slug, taxonomy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findTermLocked(slug, taxonomy)
	if t == nil {
		var err error
		if t, err = s.insertTermLocked(slug, taxonomy); err != nil {
			return err
		}
	}

	s.relationships[id] = append(s.otherTaxonomiesLocked(id, taxonomy), t.ID)
	return nil
}

func (s *Store) ClearObjectTerms(ctx context.Context, id int64, taxonomy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.otherTaxonomiesLocked(id, taxonomy)
	if len(kept) == 0 {
		delete(s.relationships, id)
		return nil
	}
	s.relationships[id] = kept
	return nil
}

// otherTaxonomiesLocked returns the record's term ids outside taxonomy.
func (s *Store) otherTaxonomiesLocked(id int64, taxonomy string) []int64 {
	kept := make([]int64, 0, len(s.relationships[id])+1)
	for _, tid := range s.relationships[id] {
		if other, ok := s.terms[tid]; ok && other.Taxonomy != taxonomy {
			kept = append(kept, tid)
		}
	}
	return kept
}

func (s *Store) GetObjectTerms(ctx context.Context, id int64, taxonomy string) ([]*storage.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Term, 0)
	for _, tid := range s.relationships[id] {
		if t, ok := s.terms[tid]; ok && t.Taxonomy == taxonomy {
			out = append(out, s.withCount(t))
		}
	}
	return out, nil
}

// withCount returns a copy of t with Count filled in. Callers hold the lock.
func (s *Store) withCount(t *storage.Term) *storage.Term {
	c := t.Clone()
	c.Count = 0
	for _, tids := range s.relationships {
		for _, tid := range tids {
			if tid == t.ID {
				c.Count++
			}
		}
	}
	return c
}
