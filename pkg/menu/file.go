package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource loads the catalog from a JSON file on disk.
type FileSource struct {
	Path string
}

// Load reads and validates the catalog file.
func (f FileSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read menu file %q: %w", f.Path, err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse menu file %q: %w", f.Path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
