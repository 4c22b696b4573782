package moe

import (
	"slices"
	"sort"
)

// ExpertClassMap maps expert keys to the class IDs each expert refines.
// It is built once and read-only afterwards, so it is safe to share.
type ExpertClassMap struct {
	keys    []string // sorted, defines selection order
	classes map[string][]int
}

// NewExpertClassMap parses every key with ParseClassIDs. Unparsable
// segments are reported to obs and dropped; the key is kept even if none
// of its segments parse.
func NewExpertClassMap(keys []string, obs Observer) *ExpertClassMap {
	m := &ExpertClassMap{
		keys:    make([]string, 0, len(keys)),
		classes: make(map[string][]int, len(keys)),
	}

	for _, key := range keys {
		if _, dup := m.classes[key]; dup {
			continue
		}
		m.classes[key] = ParseClassIDs(key, obs)
		m.keys = append(m.keys, key)
	}
	sort.Strings(m.keys)

	return m
}

// Len returns the number of experts.
func (m *ExpertClassMap) Len() int {
	return len(m.keys)
}

// Keys returns the expert keys in selection order.
func (m *ExpertClassMap) Keys() []string {
	return slices.Clone(m.keys)
}

// Classes returns the class IDs covered by key.
func (m *ExpertClassMap) Classes(key string) ([]int, bool) {
	ids, ok := m.classes[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// Select returns the first expert, in key order, whose classes contain
// both pred1 and pred2.
//
// A single matching class is not enough: both of the router's best
// guesses must fall inside the expert's specialty.
func (m *ExpertClassMap) Select(pred1, pred2 int) (string, bool) {
	for _, key := range m.keys {
		ids := m.classes[key]
		if slices.Contains(ids, pred1) && slices.Contains(ids, pred2) {
			return key, true
		}
	}
	return "", false
}
