package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Export writes one profile to path as {"name": profile}, the exchange
// format the tool has always used.
func (s *Store) Export(name, path string) error {
	p, ok := s.Profiles[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	data, err := json.MarshalIndent(map[string]*Profile{name: p}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("exporting profile: %w", err)
	}
	return nil
}

// Import reads profiles from an exchange file into the store and switches
// to the last imported one. Names that already exist are skipped unless
// overwrite is set; skipped names are returned alongside the imported ones.
func (s *Store) Import(path string, overwrite bool) (imported, skipped []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading import file: %w", err)
	}

	var incoming map[string]*Profile
	if err := json.Unmarshal(data, &incoming); err != nil {
		return nil, nil, fmt.Errorf("parsing import file: %w", err)
	}
	if len(incoming) == 0 {
		return nil, nil, fmt.Errorf("no profiles in %s", path)
	}

	names := make([]string, 0, len(incoming))
	for name := range incoming {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, exists := s.Profiles[name]; exists && !overwrite {
			skipped = append(skipped, name)
			continue
		}
		s.Profiles[name] = incoming[name]
		imported = append(imported, name)
	}
	if len(imported) > 0 {
		s.Current = imported[len(imported)-1]
	}
	return imported, skipped, nil
}
