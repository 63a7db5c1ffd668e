package clarification

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// exportDoc is the on-disk shape of an export/import file.
type exportDoc struct {
	Entries []Entry `yaml:"entries"`
}

// Export serialises every stored entry to YAML.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(exportDoc{Entries: entries})
	if err != nil {
		return nil, fmt.Errorf("marshal clarification export: %w", err)
	}
	return data, nil
}

// Import loads entries from a YAML export, recording each one (so
// occurrences accumulate against any existing entry with the same
// question, same as a live Record call would).
func (s *Store) Import(ctx context.Context, data []byte) (int, error) {
	var doc exportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse clarification import: %w", err)
	}
	for _, e := range doc.Entries {
		if _, err := s.Record(ctx, e.Question, e.Answer); err != nil {
			return 0, fmt.Errorf("import entry %q: %w", e.ID, err)
		}
	}
	return len(doc.Entries), nil
}
