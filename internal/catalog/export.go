// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the matching programs to <dir>/export.yaml. Without a
// MaxResults limit the whole selection is exported.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	return s.export(ctx, opts, "yaml", yaml.Marshal)
}

// ExportJSON writes the matching programs to <dir>/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	return s.export(ctx, opts, "json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	})
}

// ExportPath returns the path an export in format ("yaml" or "json") is
// written to.
func (s *Store) ExportPath(format string) string {
	return filepath.Join(s.dir, "export."+format)
}

func (s *Store) export(ctx context.Context, opts QueryOptions, format string, marshal func(any) ([]byte, error)) error {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	entries, err := s.Query(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	data, err := marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", format, err)
	}
	path := s.ExportPath(format)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
