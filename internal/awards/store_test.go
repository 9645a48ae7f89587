package awards_test

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/awards"
	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// memoryStore is a Store kept in memory. Transactions are serialized and
// work on a copy that replaces the committed state only on success.
type memoryStore struct {
	mu     sync.Mutex
	awards map[uuid.UUID]*awards.Award
	txs    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{awards: make(map[uuid.UUID]*awards.Award)}
}

func (m *memoryStore) InTx(_ context.Context, fn func(tx awards.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := make(map[uuid.UUID]*awards.Award, len(m.awards))
	for id, a := range m.awards {
		work[id] = cloneAward(a)
	}

	if err := fn(&memoryTx{awards: work}); err != nil {
		return err
	}

	m.awards = work
	m.txs++
	return nil
}

func (m *memoryStore) Find(_ context.Context, id uuid.UUID) (*awards.Award, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.awards[id]
	if !ok {
		return nil, awards.ErrNotFound
	}
	return cloneAward(a), nil
}

func (m *memoryStore) List(_ context.Context, page pagination.PageRequest, filters awards.Filters) ([]awards.Award, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []awards.Award
	for _, a := range m.awards {
		if filters.CaseID != nil && a.CaseID != *filters.CaseID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		out = append(out, *cloneAward(a))
	}
	slices.SortFunc(out, func(x, y awards.Award) int { return x.Version - y.Version })
	return out, len(out), nil
}

func (m *memoryStore) get(id uuid.UUID) *awards.Award {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAward(m.awards[id])
}

func (m *memoryStore) put(a awards.Award) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awards[a.ID] = cloneAward(&a)
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.awards)
}

type memoryTx struct {
	awards map[uuid.UUID]*awards.Award
}

func (t *memoryTx) Lock(_ context.Context, id uuid.UUID) (*awards.Award, error) {
	a, ok := t.awards[id]
	if !ok {
		return nil, awards.ErrNotFound
	}
	return cloneAward(a), nil
}

func (t *memoryTx) NextVersion(_ context.Context, caseID uuid.UUID) (int, error) {
	version := 0
	for _, a := range t.awards {
		if a.CaseID == caseID && a.Version > version {
			version = a.Version
		}
	}
	return version + 1, nil
}

func (t *memoryTx) InsertAward(_ context.Context, a *awards.Award) error {
	stored := cloneAward(a)
	stored.Sections = nil
	stored.Reviews = nil
	t.awards[a.ID] = stored
	return nil
}

func (t *memoryTx) UpdateAward(_ context.Context, a *awards.Award) error {
	stored, ok := t.awards[a.ID]
	if !ok {
		return awards.ErrNotFound
	}
	stored.Status = a.Status
	stored.ApprovedBy = a.ApprovedBy
	stored.FinalizedAt = a.FinalizedAt
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (t *memoryTx) InsertSection(_ context.Context, s *awards.Section) error {
	a, ok := t.awards[s.AwardID]
	if !ok {
		return awards.ErrNotFound
	}
	sec := *s
	sec.DocumentIDs = slices.Clone(s.DocumentIDs)
	sec.Reviews = nil
	a.Sections = append(a.Sections, sec)
	return nil
}

func (t *memoryTx) UpdateSection(_ context.Context, s *awards.Section) error {
	stored := t.section(s.ID)
	if stored == nil {
		return awards.ErrSectionNotFound
	}
	stored.Content = s.Content
	stored.Status = s.Status
	stored.Version = s.Version
	stored.AIGenerated = s.AIGenerated
	stored.UpdatedAt = s.UpdatedAt
	return nil
}

func (t *memoryTx) SaveReview(_ context.Context, r *awards.Review) error {
	a, ok := t.awards[r.AwardID]
	if !ok {
		return awards.ErrNotFound
	}
	for i := range a.Reviews {
		if a.Reviews[i].ReviewerID == r.ReviewerID {
			a.Reviews[i].Status = r.Status
			a.Reviews[i].Comments = r.Comments
			a.Reviews[i].UpdatedAt = r.UpdatedAt
			return nil
		}
	}
	a.Reviews = append(a.Reviews, *r)
	return nil
}

func (t *memoryTx) InsertSectionReview(_ context.Context, sr *awards.SectionReview) error {
	s := t.section(sr.SectionID)
	if s == nil {
		return awards.ErrSectionNotFound
	}
	s.Reviews = append(s.Reviews, *sr)
	return nil
}

func (t *memoryTx) section(id uuid.UUID) *awards.Section {
	for _, a := range t.awards {
		for i := range a.Sections {
			if a.Sections[i].ID == id {
				return &a.Sections[i]
			}
		}
	}
	return nil
}

func cloneAward(a *awards.Award) *awards.Award {
	if a == nil {
		return nil
	}
	c := *a
	c.Reviews = slices.Clone(a.Reviews)
	c.Sections = make([]awards.Section, len(a.Sections))
	for i, s := range a.Sections {
		s.DocumentIDs = slices.Clone(s.DocumentIDs)
		s.Reviews = slices.Clone(s.Reviews)
		c.Sections[i] = s
	}
	return &c
}
