// Package catalog - Immutable catalog snapshots
// A snapshot is write-once: a new catalog version is a new snapshot value,
// swapped atomically. In-place mutation does not exist.
package catalog

import (
	"fmt"
	"sort"
	"sync/atomic"

	"panelquote/internal/errors"
)

// Snapshot is an immutable, versioned view of the product catalog
type Snapshot struct {
	entries map[string]Entry
	skus    []string // sorted, for deterministic iteration
	version string
}

// NewSnapshot builds a snapshot from entries, failing with an integrity
// error if any entry is structurally invalid or a SKU repeats. A bad entry
// is never silently skipped.
func NewSnapshot(version string, entries []Entry) (*Snapshot, error) {
	s := &Snapshot{
		entries: make(map[string]Entry, len(entries)),
		version: version,
	}

	for _, e := range entries {
		if err := checkEntry(e); err != nil {
			return nil, err
		}
		if _, dup := s.entries[e.SKU]; dup {
			return nil, errors.Integrity(fmt.Sprintf("duplicate sku %q", e.SKU)).
				WithContext("sku", e.SKU)
		}
		s.entries[e.SKU] = e
		s.skus = append(s.skus, e.SKU)
	}

	sort.Strings(s.skus)
	return s, nil
}

// checkEntry enforces per-entry structural invariants
func checkEntry(e Entry) error {
	if e.SKU == "" {
		return errors.Integrity("entry with empty sku").WithContext("name", e.Name)
	}
	if e.Name == "" {
		return errors.Integrity(fmt.Sprintf("entry %s missing name", e.SKU)).
			WithContext("sku", e.SKU)
	}
	if !e.Type.Valid() {
		return errors.Integrity(fmt.Sprintf("entry %s has unknown item type %q", e.SKU, e.Type)).
			WithContext("sku", e.SKU)
	}
	if e.ThicknessMM != nil && *e.ThicknessMM <= 0 {
		return errors.Integrity(fmt.Sprintf("entry %s has non-positive thickness", e.SKU)).
			WithContext("sku", e.SKU)
	}
	if e.UsefulWidthM.IsNegative() {
		return errors.Integrity(fmt.Sprintf("entry %s has negative useful width", e.SKU)).
			WithContext("sku", e.SKU)
	}
	// Panels are quoted by area: a panel entry without a thickness or a
	// usable width would fail mid-quotation, so it never enters a snapshot
	if e.Type == ItemPanel {
		if e.ThicknessMM == nil {
			return errors.Integrity(fmt.Sprintf("panel %s has no thickness", e.SKU)).
				WithContext("sku", e.SKU)
		}
		if !e.UsefulWidthM.IsPositive() {
			return errors.Integrity(fmt.Sprintf("panel %s has no useful width", e.SKU)).
				WithContext("sku", e.SKU)
		}
	}
	for ch, p := range e.Prices {
		if p.IsNegative() {
			return errors.Integrity(fmt.Sprintf("entry %s has negative %s price", e.SKU, ch)).
				WithContext("sku", e.SKU)
		}
	}
	return nil
}

// Version returns the snapshot version string
func (s *Snapshot) Version() string {
	return s.version
}

// Len returns the number of entries
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// BySKU returns the entry for a SKU, exact match only
func (s *Snapshot) BySKU(sku string) (Entry, bool) {
	e, ok := s.entries[sku]
	return e, ok
}

// ByFamilyThickness returns the panel entry matching family and thickness
// exactly. An empty insulationType matches any insulation; otherwise the
// insulation must match exactly too. Ties resolve by ascending SKU so the
// result is deterministic.
func (s *Snapshot) ByFamilyThickness(family string, thicknessMM int, insulationType string) (Entry, bool) {
	for _, sku := range s.skus {
		e := s.entries[sku]
		if e.Type != ItemPanel || e.Family != family {
			continue
		}
		if e.ThicknessMM == nil || *e.ThicknessMM != thicknessMM {
			continue
		}
		if insulationType != "" && e.InsulationType != insulationType {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// Entries returns a copy of all entries in ascending SKU order
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.skus))
	for _, sku := range s.skus {
		out = append(out, s.entries[sku])
	}
	return out
}

// FamilyThicknesses returns the sorted distinct thicknesses offered for a
// panel family, optionally restricted to an insulation type
func (s *Snapshot) FamilyThicknesses(family string, insulationType string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, sku := range s.skus {
		e := s.entries[sku]
		if e.Type != ItemPanel || e.Family != family || e.ThicknessMM == nil {
			continue
		}
		if insulationType != "" && e.InsulationType != insulationType {
			continue
		}
		if !seen[*e.ThicknessMM] {
			seen[*e.ThicknessMM] = true
			out = append(out, *e.ThicknessMM)
		}
	}
	sort.Ints(out)
	return out
}

// Store holds the current catalog snapshot and supports atomic hot reload.
// A calculation in flight always observes one consistent snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store seeded with an initial snapshot
func NewStore(s *Snapshot) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns the current snapshot
func (st *Store) Current() *Snapshot {
	return st.current.Load()
}

// Swap replaces the whole snapshot atomically
func (st *Store) Swap(s *Snapshot) {
	st.current.Store(s)
}
