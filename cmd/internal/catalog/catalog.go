// Package catalog holds the fixed set of problem statements teams can reserve.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	maxIDLen    = 32
	maxTitleLen = 200
)

var (
	// ErrInvalidCatalog is returned when a catalog definition is empty or inconsistent.
	ErrInvalidCatalog = errors.New("catalog: invalid definition")
)

// ProblemStatement is an immutable catalog entry.
type ProblemStatement struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Summary string `yaml:"summary" json:"summary"`
}

// Catalog is an ordered, read-only set of problem statements.
type Catalog struct {
	items []ProblemStatement
	byID  map[string]int
}

type fileFormat struct {
	ProblemStatements []ProblemStatement `yaml:"problem_statements"`
}

// New validates items and builds a catalog that preserves their order.
func New(items []ProblemStatement) (*Catalog, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no problem statements", ErrInvalidCatalog)
	}

	c := &Catalog{
		items: make([]ProblemStatement, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for i, ps := range items {
		ps.ID = strings.TrimSpace(ps.ID)
		ps.Title = strings.TrimSpace(ps.Title)
		ps.Summary = strings.TrimSpace(ps.Summary)

		switch {
		case ps.ID == "":
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidCatalog, i)
		case len(ps.ID) > maxIDLen:
			return nil, fmt.Errorf("%w: id %q too long", ErrInvalidCatalog, ps.ID)
		case ps.Title == "":
			return nil, fmt.Errorf("%w: %s has no title", ErrInvalidCatalog, ps.ID)
		case len(ps.Title) > maxTitleLen:
			return nil, fmt.Errorf("%w: %s title too long", ErrInvalidCatalog, ps.ID)
		}
		if _, dup := c.byID[ps.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, ps.ID)
		}

		c.byID[ps.ID] = len(c.items)
		c.items = append(c.items, ps)
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.ProblemStatements)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id string) (ProblemStatement, bool) {
	if c == nil {
		return ProblemStatement{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return ProblemStatement{}, false
	}
	return c.items[i], true
}

// All returns a copy of the entries in catalog order.
func (c *Catalog) All() []ProblemStatement {
	if c == nil {
		return nil
	}
	out := make([]ProblemStatement, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Marshal renders the catalog in the same YAML shape LoadFile accepts.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(fileFormat{ProblemStatements: c.All()})
}
