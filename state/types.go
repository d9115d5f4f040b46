package state

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"sync"
)

// Type tags properties with overlapping semantic categories ("layout",
// "content", "style", ...). Each allocated Type owns a single bit.
type Type uint64

const (
	// None is the empty set.
	None Type = 0
	// All has every bit set and matches any tag, including unallocated ones.
	All Type = ^Type(0)
)

// MaxTypes is the number of tags a Registry can allocate.
// The top bit is never handed out so a union of tags can not equal All.
const MaxTypes = 63

var (
	// ErrTypeSpaceExhausted is reported once a registry has allocated MaxTypes tags.
	ErrTypeSpaceExhausted = errors.New("state type space exhausted")
	// ErrNilRegistry is reported when allocating from a nil *Registry.
	ErrNilRegistry = errors.New("state: nil registry")
)

// ExhaustedError describes a failed tag allocation.
type ExhaustedError struct {
	// Name is the tag that could not be allocated.
	Name string
	// Allocated is the number of tags already handed out.
	Allocated int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("state: cannot allocate type %q: %d of %d bits in use: %v",
		e.Name, e.Allocated, MaxTypes, ErrTypeSpaceExhausted)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrTypeSpaceExhausted
}

// Union returns the tags present in either set.
func (t Type) Union(other Type) Type {
	return t | other
}

// Intersect returns the tags present in both sets.
func (t Type) Intersect(other Type) Type {
	return t & other
}

// Intersects reports whether t and other share at least one tag.
func (t Type) Intersects(other Type) bool {
	return t&other != 0
}

// Contains reports whether every tag of other is also in t.
func (t Type) Contains(other Type) bool {
	return t&other == other
}

// IsEmpty reports whether the set has no tags.
func (t Type) IsEmpty() bool {
	return t == None
}

// Has reports whether t matches any of types.
//
// With no arguments it reports whether t is non-empty. An All argument only
// matches when t is exactly All, so Has(All) asks "is everything dirty"
// rather than "is anything dirty".
func (t Type) Has(types ...Type) bool {
	if len(types) == 0 {
		return t != None
	}
	for _, other := range types {
		if other == All {
			if t == All {
				return true
			}
			continue
		}
		if t.Intersects(other) {
			return true
		}
	}
	return false
}

// Count returns the number of tags in the set.
func (t Type) Count() int {
	return bits.OnesCount64(uint64(t))
}

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case All:
		return "all"
	}
	return fmt.Sprintf("%#x", uint64(t))
}

// Registry allocates Types. Each call to Next hands out the next unused bit.
//
// Build one registry at program start and share it with every package that
// declares tags.
type Registry struct {
	mu    sync.Mutex
	next  int
	names [MaxTypes]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Next allocates a new tag. It panics with *ExhaustedError once MaxTypes tags
// exist, since reusing a bit would alias two categories.
func (r *Registry) Next(name string) Type {
	t, err := r.TryNext(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TryNext allocates a new tag, returning an *ExhaustedError when none remain
// and ErrNilRegistry when r is nil.
func (r *Registry) TryNext(name string) (Type, error) {
	if r == nil {
		return None, ErrNilRegistry
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= MaxTypes {
		return None, &ExhaustedError{Name: name, Allocated: r.next}
	}
	bit := r.next
	r.next++
	r.names[bit] = name
	return Type(1) << bit, nil
}

// Len returns the number of allocated tags.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}

// Names returns the names of the allocated tags in t, in allocation order.
func (r *Registry) Names(t Type) []string {
	if r == nil || t == None {
		return nil
	}
	if t == All {
		return []string{"all"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for bit := 0; bit < r.next; bit++ {
		if t&(Type(1)<<bit) != 0 {
			names = append(names, r.names[bit])
		}
	}
	return names
}

// Name formats t using registered names.
func (r *Registry) Name(t Type) string {
	if r == nil {
		return t.String()
	}
	names := r.Names(t)
	if len(names) == 0 {
		return t.String()
	}
	return strings.Join(names, "|")
}
