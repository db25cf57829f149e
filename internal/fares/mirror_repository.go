package fares

import (
	"context"
	"fmt"
)

// MirrorRepository reads the table from a source and copies every successful
// read into a sink. The worker uses it to publish a fare file to Postgres,
// where the API instances pick it up on their next refresh.
type MirrorRepository struct {
	source Repository
	sink   Writer
}

// NewMirrorRepository creates a repository that mirrors source into sink.
func NewMirrorRepository(source Repository, sink Writer) *MirrorRepository {
	return &MirrorRepository{source: source, sink: sink}
}

// ListEntries reads the source and writes the result to the sink. Nothing is
// returned unless the sink accepted the table.
func (r *MirrorRepository) ListEntries(ctx context.Context) ([]Entry, error) {
	entries, err := r.source.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.sink.ReplaceEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("mirror fare table: %w", err)
	}
	return entries, nil
}

var _ Repository = (*MirrorRepository)(nil)
