// Package atom implements the interned string table of §3.3: property
// keys are handles ("atoms") into a table of immutable UTF-8 byte
// sequences, so that two keys can be compared by a cheap integer equality
// instead of a byte-by-byte string comparison.
package atom

import "golang.org/x/text/unicode/norm"

// Atom is a unique handle to an interned string. The zero Atom is reserved
// for the empty string: Intern("") returns it, and no other string is ever
// issued it.
type Atom uint32

// Table interns strings into Atoms. Two atoms compare equal iff their
// underlying strings are byte-equal (§3.3); interning first normalizes to
// NFC so that two UTF-8 encodings of the same grapheme intern to the same
// atom, which is the table's job regardless of the ASCII-only case-folding
// restriction §6.3 places on script-visible string operations (see
// DESIGN.md for why golang.org/x/text/unicode/norm lives here and not in
// a case-conversion routine).
type Table struct {
	strings []string
	index   map[string]Atom
}

// NewTable returns an empty intern table. Atom 0 is reserved.
func NewTable() *Table {
	return &Table{
		strings: []string{""},
		index:   map[string]Atom{"": 0},
	}
}

// Intern returns the Atom for s, allocating a new table slot on first use.
func (t *Table) Intern(s string) Atom {
	s = norm.NFC.String(s)
	if a, ok := t.index[s]; ok {
		return a
	}
	a := Atom(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = a
	return a
}

// String returns the string an Atom was interned from.
func (t *Table) String(a Atom) string {
	if int(a) >= len(t.strings) {
		return ""
	}
	return t.strings[a]
}

// Len returns the number of Unicode code points in the interned string,
// the cached length §3.3 requires strings to carry.
func (t *Table) Len(a Atom) int {
	s := t.String(a)
	n := 0
	for range s {
		n++
	}
	return n
}

// Lookup reports whether s has already been interned, without interning
// it. Used by property lookups that want to fail fast on an unknown key
// rather than growing the table on every miss.
func (t *Table) Lookup(s string) (Atom, bool) {
	s = norm.NFC.String(s)
	a, ok := t.index[s]
	return a, ok
}
