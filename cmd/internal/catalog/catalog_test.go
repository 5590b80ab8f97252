package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()
	if c.Len() != 8 {
		t.Fatalf("expected 8 entries, got %d", c.Len())
	}
	all := c.All()
	if all[0].ID != "ps-01" || all[7].ID != "ps-08" {
		t.Fatalf("unexpected order: %s .. %s", all[0].ID, all[7].ID)
	}
	ps, ok := c.Lookup("ps-03")
	if !ok || ps.Title == "" {
		t.Fatalf("expected ps-03 in default catalog")
	}
	if _, ok := c.Lookup("ps-99"); ok {
		t.Fatalf("unexpected ps-99")
	}

	all[0].Title = "mutated"
	if again, _ := c.Lookup("ps-01"); again.Title == "mutated" {
		t.Fatalf("All must return a copy")
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		items []ProblemStatement
	}{
		{name: "empty", items: nil},
		{name: "missing id", items: []ProblemStatement{{Title: "x"}}},
		{name: "missing title", items: []ProblemStatement{{ID: "ps-01"}}},
		{name: "duplicate", items: []ProblemStatement{{ID: "a", Title: "x"}, {ID: " a ", Title: "y"}}},
		{name: "long id", items: []ProblemStatement{{ID: "0123456789012345678901234567890123", Title: "x"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.items); !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := []byte(`problem_statements:
  - id: ai-1
    title: "  Agents  "
    summary: Build an agent.
  - id: web-2
    title: Web
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	ps, ok := c.Lookup("ai-1")
	if !ok || ps.Title != "Agents" || ps.Summary != "Build an agent." {
		t.Fatalf("unexpected entry: %+v", ps)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("problem_statements: [")); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for bad yaml, got %v", err)
	}
	if _, err := Parse([]byte("other: 1\n")); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for empty doc, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != Default().Len() {
		t.Fatalf("expected %d entries, got %d", Default().Len(), c.Len())
	}
}
