// Package consttable loads the constant table of truth and resolves the value
// expressions in it into canonical hexadecimal literals.
package consttable

import (
	"crypto/sha256"
	"errors"
	"regexp"
	"sort"
)

// ErrInvalidEntry marks a table entry that cannot be used.
var ErrInvalidEntry = errors.New("invalid constant entry")

var identPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// IsIdent reports whether name has the uppercase-with-underscores shape
// required of constant names.
func IsIdent(name string) bool {
	return identPattern.MatchString(name)
}

// Definition is one named constant. Value is rewritten in place by Resolve.
type Definition struct {
	Name    string
	Type    string
	Value   string
	Comment string
}

// Table maps constant names to their definitions.
type Table struct {
	entries map[string]*Definition
	origin  string
}

// NewTable builds a table from definitions. Later duplicates replace earlier
// ones.
func NewTable(defs ...Definition) *Table {
	t := &Table{entries: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		t.Set(d)
	}
	return t
}

// Set stores a copy of d under d.Name.
func (t *Table) Set(d Definition) {
	cp := d
	t.entries[d.Name] = &cp
}

// Get returns the definition for name.
func (t *Table) Get(name string) (*Definition, bool) {
	if t == nil {
		return nil, false
	}
	d, ok := t.entries[name]
	return d, ok
}

// Has reports whether name is in the table.
func (t *Table) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Origin is the path (or label) the table was decoded from.
func (t *Table) Origin() string {
	if t == nil {
		return ""
	}
	return t.origin
}

// Names returns every constant name in lexicographic order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy, useful when the same raw table is resolved more
// than once.
func (t *Table) Clone() *Table {
	out := &Table{entries: make(map[string]*Definition, t.Len()), origin: t.Origin()}
	if t == nil {
		return out
	}
	for name, d := range t.entries {
		cp := *d
		out.entries[name] = &cp
	}
	return out
}

// Digest hashes the table contents in name order. Two tables with the same
// digest render identical constant blocks.
func (t *Table) Digest() [32]byte {
	h := sha256.New()
	for _, name := range t.Names() {
		d := t.entries[name]
		for _, part := range []string{d.Name, d.Type, d.Value, d.Comment} {
			_, _ = h.Write([]byte(part))
			_, _ = h.Write([]byte{0})
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
