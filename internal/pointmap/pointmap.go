// Package pointmap provides a bidirectional one-to-one association between
// coordinates of two spaces, typically a parameter-plane point and the
// display coordinate it is drawn at.
package pointmap

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned when an operation references an item
	// that was never registered.
	ErrNotRegistered = errors.New("item not registered")
	// ErrNoPartner is returned by PairOf when the item has no partner.
	ErrNoPartner = errors.New("item has no partner")
)

// Kind tags which space an item belongs to.
type Kind string

const (
	// KindSource marks parameter-space items.
	KindSource Kind = "source"
	// KindPaired marks display-space items.
	KindPaired Kind = "paired"
)

type entry[T comparable] struct {
	kind    Kind
	partner T
	paired  bool
}

// Map associates registered items in pairs. Each item has at most one
// partner at a time. The zero value is not usable; call New.
type Map[T comparable] struct {
	entries map[T]*entry[T]
	order   []T
}

// New returns an empty map.
func New[T comparable]() *Map[T] {
	return &Map[T]{entries: make(map[T]*entry[T])}
}

// Register adds item with the given kind. Registering an item that is
// already present does nothing, and keeps its original kind.
func (m *Map[T]) Register(item T, kind Kind) {
	if _, ok := m.entries[item]; ok {
		return
	}
	m.entries[item] = &entry[T]{kind: kind}
	m.order = append(m.order, item)
}

// Associate links a and b symmetrically. Any previous partner of either
// item is unlinked first.
func (m *Map[T]) Associate(a, b T) error {
	ea, ok := m.entries[a]
	if !ok {
		return fmt.Errorf("associate %v: %w", a, ErrNotRegistered)
	}
	eb, ok := m.entries[b]
	if !ok {
		return fmt.Errorf("associate %v: %w", b, ErrNotRegistered)
	}
	m.unlink(ea)
	m.unlink(eb)
	ea.partner, ea.paired = b, true
	eb.partner, eb.paired = a, true
	return nil
}

func (m *Map[T]) unlink(e *entry[T]) {
	if !e.paired {
		return
	}
	if old, ok := m.entries[e.partner]; ok {
		var zero T
		old.partner, old.paired = zero, false
	}
	var zero T
	e.partner, e.paired = zero, false
}

// PairOf returns the partner of item.
func (m *Map[T]) PairOf(item T) (T, error) {
	var zero T
	e, ok := m.entries[item]
	if !ok {
		return zero, fmt.Errorf("pair of %v: %w", item, ErrNotRegistered)
	}
	if !e.paired {
		return zero, fmt.Errorf("pair of %v: %w", item, ErrNoPartner)
	}
	return e.partner, nil
}

// Contains reports whether item is registered.
func (m *Map[T]) Contains(item T) bool {
	_, ok := m.entries[item]
	return ok
}

// All returns the registered items in registration order. When kinds are
// given, only items of those kinds are returned.
func (m *Map[T]) All(kinds ...Kind) []T {
	out := make([]T, 0, len(m.order))
	for _, item := range m.order {
		if len(kinds) == 0 || hasKind(kinds, m.entries[item].kind) {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of registered items.
func (m *Map[T]) Len() int { return len(m.order) }

func hasKind(kinds []Kind, k Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
