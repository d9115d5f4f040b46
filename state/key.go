package state

import "github.com/oklog/ulid/v2"

// Key identifies one tracked property. Keys with the same name are still
// distinct; only the Key value returned by NewKey matches itself.
type Key struct {
	id   ulid.ULID
	name string
}

// NewKey mints a fresh property identity.
func NewKey(name string) Key {
	return Key{id: ulid.Make(), name: name}
}

// Name returns the display name.
func (k Key) Name() string {
	return k.name
}

// ID returns the unique identity.
func (k Key) ID() ulid.ULID {
	return k.id
}

// IsZero reports whether k was never minted.
func (k Key) IsZero() bool {
	return k.id == ulid.ULID{}
}

func (k Key) String() string {
	if k.name == "" {
		return k.id.String()
	}
	return k.name
}
