package achievements

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// progress counters criteria may reference
var metrics = map[string]func(profiles.Progress) int{
	"modulesCompleted": func(p profiles.Progress) int { return p.ModulesCompleted },
	"lessonsCompleted": func(p profiles.Progress) int { return p.LessonsCompleted },
	"challengesSolved": func(p profiles.Progress) int { return p.ChallengesSolved },
	"streakDays":       func(p profiles.Progress) int { return p.StreakDays },
}

// returns the catalog bundled with the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// loads the catalog from a YAML file, or the bundled one when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read achievement catalog: %w", err)
	}

	return ParseCatalog(data)
}

// parses and validates a YAML catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse achievement catalog: %w", err)
	}

	return NewCatalog(file.Achievements)
}

// builds a catalog, rejecting duplicate ids and unknown metrics
func NewCatalog(entries []Entry) (*Catalog, error) {
	seen := make(map[string]bool, len(entries))

	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("achievement #%d has no id", i)
		}

		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate achievement id %q", entry.ID)
		}
		seen[entry.ID] = true

		if _, ok := metrics[entry.Criteria.Metric]; !ok {
			return nil, fmt.Errorf("achievement %q uses unknown metric %q", entry.ID, entry.Criteria.Metric)
		}
	}

	return &Catalog{entries: slices.Clone(entries)}, nil
}

// returns a copy of the entries in catalog order
func (c *Catalog) Entries() []Entry {
	return slices.Clone(c.entries)
}

// finds an entry by id
func (c *Catalog) Lookup(id string) (Entry, bool) {
	for _, entry := range c.entries {
		if entry.ID == id {
			return entry, true
		}
	}

	return Entry{}, false
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// reports whether progress satisfies the criteria
func (cr Criteria) Met(progress profiles.Progress) bool {
	value, ok := metrics[cr.Metric]
	if !ok {
		return false
	}

	return value(progress) >= cr.AtLeast
}
