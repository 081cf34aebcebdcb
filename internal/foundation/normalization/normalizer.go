// Package normalization maps loosely written configuration strings onto typed values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer maps case-insensitive, whitespace-trimmed strings to values of T.
type Normalizer[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// New creates a normalizer called name (used in error messages).
func New[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is blank or unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Parse is like Normalize but rejects unknown non-blank input.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[cleaned]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// Keys returns the accepted spellings in sorted order.
func (n *Normalizer[T]) Keys() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
