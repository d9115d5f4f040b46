package state

import (
	"slices"
	"strings"
)

// Validator answers which properties changed in the current update cycle.
// It is only valid inside the Update call that received it.
type Validator struct {
	all   bool
	keys  map[Key]struct{}
	types Type
}

// NewValidator builds a validator over a concrete dirty set.
func NewValidator(keys []Key, types Type) *Validator {
	v := &Validator{types: types}
	if len(keys) > 0 {
		v.keys = make(map[Key]struct{}, len(keys))
		for _, key := range keys {
			v.keys[key] = struct{}{}
		}
	}
	return v
}

// UniversalValidator builds a validator that reports everything dirty.
func UniversalValidator() *Validator {
	return &Validator{all: true, types: All}
}

// IsAll reports whether the cycle is a full refresh.
func (v *Validator) IsAll() bool {
	return v != nil && v.all
}

// IsDirty reports whether any of keys changed. A full refresh matches every key.
func (v *Validator) IsDirty(keys ...Key) bool {
	if v == nil {
		return false
	}
	if v.all {
		return true
	}
	for _, key := range keys {
		if _, ok := v.keys[key]; ok {
			return true
		}
	}
	return false
}

// IsDirtyType reports whether any of types changed, using Type.Has.
func (v *Validator) IsDirtyType(types ...Type) bool {
	if v == nil {
		return false
	}
	return v.types.Has(types...)
}

// Types returns the dirty tag set.
func (v *Validator) Types() Type {
	if v == nil {
		return None
	}
	return v.types
}

// Keys returns the dirty keys sorted by name. A full refresh returns nil.
func (v *Validator) Keys() []Key {
	if v == nil || v.all || len(v.keys) == 0 {
		return nil
	}
	keys := make([]Key, 0, len(v.keys))
	for key := range v.keys {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return a.id.Compare(b.id)
	})
	return keys
}
