package bertlv

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Map is an insertion-ordered mapping from tag to raw value bytes. Order is
// preserved on serialization because several PIV commands are order
// sensitive, e.g. a trailing LRC marker tag must come last.
type Map struct {
	entries []Tlv
	index   map[int]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[int]int)}
}

// Put sets the value for tag. Re-putting an existing tag replaces its value
// but keeps the original position.
func (m *Map) Put(tag int, value []byte) *Map {
	if i, ok := m.index[tag]; ok {
		m.entries[i].Value = value
		return m
	}
	m.index[tag] = len(m.entries)
	m.entries = append(m.entries, Tlv{Tag: tag, Value: value})
	return m
}

// Lookup returns the value stored for tag.
func (m *Map) Lookup(tag int) mo.Option[[]byte] {
	i, ok := m.index[tag]
	if !ok {
		return mo.None[[]byte]()
	}
	return mo.Some(m.entries[i].Value)
}

// Len reports the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Tags returns the tags in insertion order.
func (m *Map) Tags() []int {
	return lo.Map(m.entries, func(e Tlv, _ int) int {
		return e.Tag
	})
}

// Pack serializes all entries in insertion order.
func (m *Map) Pack() []byte {
	return lo.FlatMap(m.entries, func(e Tlv, _ int) []byte {
		return Encode(e.Tag, e.Value)
	})
}

// ParseMap decodes all top-level entries in data into a Map. A duplicated
// tag keeps the last value seen.
func ParseMap(data []byte) (*Map, error) {
	m := NewMap()
	for t, err := range Decode(data) {
		if err != nil {
			return nil, err
		}
		m.Put(t.Tag, t.Value)
	}
	return m, nil
}
