package fares

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewInMemoryRepository creates a repository holding the given entries.
func NewInMemoryRepository(entries ...Entry) *InMemoryRepository {
	repo := &InMemoryRepository{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		repo.entries[e.Tier] = e
	}
	return repo
}

// ListEntries returns the entries sorted by tier.
func (r *InMemoryRepository) ListEntries(ctx context.Context) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out, nil
}

// SetEntry creates or replaces the entry for e.Tier.
func (r *InMemoryRepository) SetEntry(ctx context.Context, e Entry) error {
	if err := ValidateEntries([]Entry{e}); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.UpdatedAt = time.Now()
	r.entries[e.Tier] = e
	return nil
}

// DeleteEntry removes a tier.
func (r *InMemoryRepository) DeleteEntry(ctx context.Context, tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, tier)
}

var _ Repository = (*InMemoryRepository)(nil)

// ReplaceEntries swaps the whole table for entries.
func (r *InMemoryRepository) ReplaceEntries(ctx context.Context, entries []Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}

	next := make(map[string]Entry, len(entries))
	for _, e := range entries {
		next[e.Tier] = e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = next
	return nil
}

var _ Writer = (*InMemoryRepository)(nil)
