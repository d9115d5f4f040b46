package state

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// MachineConfig configures a Machine.
type MachineConfig struct {
	// Name labels the machine in traces.
	Name string
	// Observer is told about each cycle before the delegate runs.
	Observer Observer
}

// Cycle describes one delivered notification.
type Cycle struct {
	MachineID ulid.ULID
	Machine   string
	// Seq counts cycles delivered by the machine, starting at 1.
	Seq uint64
	// Depth is 1 for a top-level cycle and grows for cycles triggered from
	// inside a delegate's Update.
	Depth int
	All   bool
	Keys  []string
	Types Type
	Time  time.Time
}

// Machine accumulates dirty keys and types and hands them to its delegate
// once per update cycle.
//
// A Machine starts stopped. Mutations while stopped are not delivered; the
// next Start delivers a full refresh instead. Machine is not safe for
// concurrent use; confine it to one goroutine (see runtime.Loop).
type Machine struct {
	delegate Delegate
	observer Observer
	name     string
	id       ulid.ULID

	running       bool
	inTransaction bool
	depth         int
	seq           uint64

	all   bool
	keys  map[Key]struct{}
	types Type
}

// NewMachine creates a stopped machine reporting to delegate.
func NewMachine(delegate Delegate) *Machine {
	return NewMachineWithConfig(delegate, MachineConfig{})
}

// NewMachineWithConfig creates a stopped machine with a name and observer.
func NewMachineWithConfig(delegate Delegate, cfg MachineConfig) *Machine {
	return &Machine{
		delegate: delegate,
		observer: cfg.Observer,
		name:     cfg.Name,
		id:       ulid.Make(),
		all:      true,
		types:    All,
	}
}

// ID returns the machine identity used in traces.
func (m *Machine) ID() ulid.ULID {
	if m == nil {
		return ulid.ULID{}
	}
	return m.id
}

// Name returns the configured name.
func (m *Machine) Name() string {
	if m == nil {
		return ""
	}
	return m.name
}

// Running reports whether the machine delivers notifications.
func (m *Machine) Running() bool {
	return m != nil && m.running
}

// InTransaction reports whether a batch is open.
func (m *Machine) InTransaction() bool {
	return m != nil && m.inTransaction
}

// Depth returns how many Update calls are currently on the stack.
func (m *Machine) Depth() int {
	if m == nil {
		return 0
	}
	return m.depth
}

// Start begins delivering notifications. Starting a stopped machine delivers
// one full-refresh cycle immediately; starting a running machine does nothing.
func (m *Machine) Start() {
	if m == nil || m.running {
		return
	}
	m.running = true
	m.notify(false)
}

// Stop halts delivery and discards any open transaction. Everything is
// considered dirty again, so the next Start delivers a full refresh.
func (m *Machine) Stop() {
	if m == nil {
		return
	}
	m.running = false
	m.inTransaction = false
	m.markAll()
}

// Begin opens a transaction. It returns true only if this call opened it;
// callers that get false must not Commit.
func (m *Machine) Begin() bool {
	if m == nil || m.inTransaction {
		return false
	}
	m.inTransaction = true
	return true
}

// Commit closes the open transaction and delivers one cycle covering
// everything marked since Begin. It does nothing without an open transaction.
func (m *Machine) Commit() {
	if m == nil || !m.inTransaction {
		return
	}
	m.inTransaction = false
	m.notify(false)
}

// Transaction runs fn inside a transaction. If fn is already running inside
// one, its marks join the enclosing batch. If fn panics the transaction is
// closed without delivering and the marks stay pending.
func (m *Machine) Transaction(fn func()) {
	if m == nil || fn == nil {
		return
	}
	if !m.Begin() {
		fn()
		return
	}
	done := false
	defer func() {
		if !done {
			m.inTransaction = false
		}
	}()
	fn()
	done = true
	m.Commit()
}

// Invalidate marks keys dirty and delivers unless a transaction is open.
func (m *Machine) Invalidate(keys ...Key) {
	if m == nil {
		return
	}
	if !m.all {
		if m.keys == nil && len(keys) > 0 {
			m.keys = make(map[Key]struct{}, len(keys))
		}
		for _, key := range keys {
			m.keys[key] = struct{}{}
		}
	}
	m.notify(false)
}

// InvalidateTypes marks types dirty and delivers unless a transaction is open.
func (m *Machine) InvalidateTypes(types ...Type) {
	if m == nil {
		return
	}
	for _, t := range types {
		m.types |= t
	}
	m.notify(false)
}

// InvalidateAll marks everything dirty and delivers immediately, even inside
// a transaction. The open transaction is suspended while the delegate runs,
// so mutations it makes are delivered depth-first like any other nested
// cycle, and resumes afterwards unless the delegate stopped the machine.
func (m *Machine) InvalidateAll() {
	if m == nil {
		return
	}
	m.markAll()
	m.notify(true)
}

func (m *Machine) markAll() {
	m.all = true
	m.keys = nil
	m.types = All
}

func (m *Machine) notify(force bool) {
	if !m.running {
		return
	}
	if m.inTransaction && !force {
		return
	}

	v := &Validator{all: m.all, keys: m.keys, types: m.types}
	// Reset before the callback so its own mutations start a fresh cycle.
	m.all = false
	m.keys = nil
	m.types = None

	m.seq++
	m.depth++
	defer func() { m.depth-- }()

	if force && m.inTransaction {
		m.inTransaction = false
		defer func() {
			if m.running {
				m.inTransaction = true
			}
		}()
	}

	if m.observer != nil {
		m.observer.ObserveCycle(m.cycle(v))
	}
	if m.delegate != nil {
		m.delegate.Update(v)
	}
}

func (m *Machine) cycle(v *Validator) Cycle {
	c := Cycle{
		MachineID: m.id,
		Machine:   m.name,
		Seq:       m.seq,
		Depth:     m.depth,
		All:       v.all,
		Types:     v.types,
		Time:      time.Now(),
	}
	for _, key := range v.Keys() {
		c.Keys = append(c.Keys, key.String())
	}
	return c
}
