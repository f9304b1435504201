package metadata

import (
	"slices"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata holds the headers carried alongside a page view.
type Metadata map[string]string

// Clone returns a shallow copy. The result is never nil.
func (m Metadata) Clone() Metadata {
	cloned := make(Metadata, len(m))
	for k, v := range m {
		cloned[k] = v
	}
	return cloned
}

// With returns a copy containing the provided key/value pair.
func (m Metadata) With(key, value string) Metadata {
	cloned := m.Clone()
	cloned[key] = value
	return cloned
}

// Keys returns the header names in ascending order. Consumers log headers in
// this order so output is stable across runs.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// FromWatermill copies Watermill message metadata.
func FromWatermill(md message.Metadata) Metadata {
	return Metadata(md).Clone()
}

// ToWatermill copies the headers into a Watermill metadata map.
func ToWatermill(m Metadata) message.Metadata {
	return message.Metadata(m.Clone())
}
