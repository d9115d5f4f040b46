// Package trace records update cycles delivered by state machines and
// renders them for humans.
package trace

import (
	"sync"
	"time"

	"github.com/odvcencio/furry-state/state"
)

// Config configures a Recorder.
type Config struct {
	// Limit bounds the number of retained cycles. Defaults to 256.
	Limit int
	// Registry resolves type names when rendering. Optional.
	Registry *state.Registry
}

// Recorder keeps the most recent cycles reported to it.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	limit    int
	registry *state.Registry
	cycles   []state.Cycle
	start    int
}

// NewRecorder creates a recorder.
func NewRecorder(cfg Config) *Recorder {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 256
	}
	return &Recorder{limit: limit, registry: cfg.Registry}
}

// ObserveCycle records c, dropping the oldest cycle once the limit is reached.
func (r *Recorder) ObserveCycle(c state.Cycle) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.cycles) < r.limit {
		r.cycles = append(r.cycles, c)
		return
	}
	r.cycles[r.start] = c
	r.start = (r.start + 1) % r.limit
}

// Cycles returns the retained cycles, oldest first.
func (r *Recorder) Cycles() []state.Cycle {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]state.Cycle, 0, len(r.cycles))
	out = append(out, r.cycles[r.start:]...)
	out = append(out, r.cycles[:r.start]...)
	return out
}

// Last returns up to n of the most recent cycles, oldest first.
func (r *Recorder) Last(n int) []state.Cycle {
	cycles := r.Cycles()
	if n >= 0 && len(cycles) > n {
		cycles = cycles[len(cycles)-n:]
	}
	return cycles
}

// Len returns the number of retained cycles.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cycles)
}

// Reset drops every retained cycle.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cycles = nil
	r.start = 0
	r.mu.Unlock()
}

// Registry returns the registry used for type names.
func (r *Recorder) Registry() *state.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Multi fans a cycle out to several observers in order.
func Multi(observers ...state.Observer) state.Observer {
	return state.ObserverFunc(func(c state.Cycle) {
		for _, o := range observers {
			if o != nil {
				o.ObserveCycle(c)
			}
		}
	})
}

// Record is the rendered form of a cycle.
type Record struct {
	Machine   string    `yaml:"machine,omitempty"`
	MachineID string    `yaml:"machine_id"`
	Seq       uint64    `yaml:"seq"`
	Depth     int       `yaml:"depth"`
	All       bool      `yaml:"all"`
	Keys      []string  `yaml:"keys,omitempty"`
	Types     []string  `yaml:"types,omitempty"`
	Time      time.Time `yaml:"time"`
}

// Records converts cycles using reg for type names.
func Records(cycles []state.Cycle, reg *state.Registry) []Record {
	records := make([]Record, 0, len(cycles))
	for _, c := range cycles {
		records = append(records, Record{
			Machine:   c.Machine,
			MachineID: c.MachineID.String(),
			Seq:       c.Seq,
			Depth:     c.Depth,
			All:       c.All,
			Keys:      c.Keys,
			Types:     typeNames(c.Types, reg),
			Time:      c.Time,
		})
	}
	return records
}

func typeNames(t state.Type, reg *state.Registry) []string {
	if t == state.None {
		return nil
	}
	if names := reg.Names(t); len(names) > 0 {
		return names
	}
	return []string{t.String()}
}
