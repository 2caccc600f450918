package hierarchy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "github.com/DieMov/PYTHOM/internal/errors"
)

//go:embed sucursales.yaml
var embeddedTable []byte

// Entry places one branch in its zone and region
type Entry struct {
	Region string
	Zone   string
	Branch string
}

// Conflict records a branch listed more than once. The first entry is kept.
type Conflict struct {
	Branch  string
	Kept    Entry
	Dropped Entry
}

// Table is an immutable branch lookup
type Table struct {
	entries   []Entry
	index     map[string]int
	conflicts []Conflict
}

type document struct {
	Regions []struct {
		Name  string `yaml:"name"`
		Zones []struct {
			Name     string   `yaml:"name"`
			Branches []string `yaml:"branches"`
		} `yaml:"zones"`
	} `yaml:"regions"`
}

// Default returns the branch table shipped with the binary
func Default() (*Table, error) {
	t, err := Parse(embeddedTable)
	if err != nil {
		return nil, fmt.Errorf("embedded branch table: %w", err)
	}
	return t, nil
}

// LoadFile reads a branch table from a YAML file of the embedded shape
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read hierarchy file", err).WithContext("path", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid hierarchy file", err).WithContext("path", path)
	}
	return t, nil
}

// Load returns the table at path, or the embedded one when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes a region -> zones -> branches YAML document
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode branch table: %w", err)
	}

	var entries []Entry
	for _, r := range doc.Regions {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("region without name")
		}
		for _, z := range r.Zones {
			if strings.TrimSpace(z.Name) == "" {
				return nil, fmt.Errorf("zone without name in region %q", r.Name)
			}
			for _, b := range z.Branches {
				if strings.TrimSpace(b) == "" {
					return nil, fmt.Errorf("empty branch in zone %q", z.Name)
				}
				entries = append(entries, Entry{Region: r.Name, Zone: z.Name, Branch: b})
			}
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("branch table is empty")
	}

	return NewTable(entries), nil
}

// NewTable indexes entries by branch name. Names are compared exactly.
func NewTable(entries []Entry) *Table {
	t := &Table{
		index: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, dup := t.index[e.Branch]; dup {
			t.conflicts = append(t.conflicts, Conflict{Branch: e.Branch, Kept: t.entries[i], Dropped: e})
			continue
		}
		t.index[e.Branch] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Lookup returns the entry for an exact branch name
func (t *Table) Lookup(branch string) (Entry, bool) {
	i, ok := t.index[branch]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of distinct branches
func (t *Table) Len() int {
	return len(t.entries)
}

// Conflicts returns the duplicate branch entries that were ignored
func (t *Table) Conflicts() []Conflict {
	out := make([]Conflict, len(t.conflicts))
	copy(out, t.conflicts)
	return out
}
