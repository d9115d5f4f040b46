package state

// Readable exposes a tracked value without write access.
type Readable[T any] interface {
	Get() T
}

// Writable exposes read/write tracked state.
type Writable[T any] interface {
	Readable[T]
	Set(value T) bool
	Update(fn func(T) T) bool
}

// Delegate receives one Update call per update cycle.
type Delegate interface {
	Update(v *Validator)
}

// Owner is implemented by types that own a Machine. Stateful fields can only
// be declared against an Owner.
type Owner interface {
	StateMachine() *Machine
}

// Observer is told about every delivered cycle, before the delegate runs.
type Observer interface {
	ObserveCycle(c Cycle)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(Cycle)

// ObserveCycle calls f.
func (f ObserverFunc) ObserveCycle(c Cycle) {
	if f == nil {
		return
	}
	f(c)
}
