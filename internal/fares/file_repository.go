package fares

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// fareFile is the layout of a YAML fare table:
//
//	fares:
//	  - tier: adult
//	    cents: 250
//	    symbol: "$"
//	  - tier: tram_note
//	    note: "Tram fares are collected at the lower terminal."
type fareFile struct {
	Fares []Entry `yaml:"fares"`
}

// FileRepository reads the fare table from a YAML or CSV file on every call,
// so edits are picked up by the next refresh. A file ending in .csv is read
// as CSV with a header row:
//
//	tier,cents,symbol,note
//	adult,250,$,
//	tram_note,,,Tram fares are collected at the lower terminal.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository backed by the file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// ListEntries reads, parses and validates the file.
func (r *FileRepository) ListEntries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read fare table: %w", err)
	}

	stat, err := os.Stat(r.path)
	if err != nil {
		return nil, fmt.Errorf("stat fare table: %w", err)
	}

	parse := ParseYAML
	if strings.EqualFold(filepath.Ext(r.path), ".csv") {
		parse = ParseCSV
	}

	entries, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	for i := range entries {
		entries[i].UpdatedAt = stat.ModTime()
	}
	return entries, nil
}

// ParseYAML decodes and validates a YAML fare table.
func ParseYAML(data []byte) ([]Entry, error) {
	var f fareFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fare table: %w", err)
	}
	if err := ValidateEntries(f.Fares); err != nil {
		return nil, err
	}
	return f.Fares, nil
}

// ParseCSV decodes and validates a CSV fare table.
func ParseCSV(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := gocsv.UnmarshalBytes(data, &entries); err != nil {
		return nil, fmt.Errorf("parse fare table: %w", err)
	}
	for i := range entries {
		entries[i].Tier = strings.TrimSpace(entries[i].Tier)
	}
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ Repository = (*FileRepository)(nil)
