package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/odvcencio/furry-state/state"
)

// ErrLoopRunning is returned when Run is called on a loop that is already running.
var ErrLoopRunning = errors.New("loop already running")

// Mutation is a change applied on the loop goroutine.
type Mutation func()

// PostFunc sends a mutation into the loop.
// It returns false when the mutation queue is full.
type PostFunc func(Mutation) bool

// LoopConfig configures a Loop.
type LoopConfig struct {
	// Machine wraps each drained batch in one transaction. Optional.
	Machine *state.Machine
	// Buffer is the mutation queue size. Defaults to 128.
	Buffer int
	// TickRate enables OnTick when positive.
	TickRate time.Duration
	// OnTick runs on the loop goroutine inside a transaction.
	OnTick func(now time.Time)
}

// Loop confines a Machine and its Stateful fields to one goroutine.
// Other goroutines Post mutations; Run applies them in batches, one
// transaction per batch, so a burst of posts produces one update cycle.
type Loop struct {
	machine   *state.Machine
	mutations chan Mutation
	tickRate  time.Duration
	onTick    func(time.Time)

	running        atomic.Bool
	taskMu         sync.Mutex
	taskCtx        context.Context
	pendingEffects []Effect
}

// NewLoop creates a loop from config.
func NewLoop(cfg LoopConfig) *Loop {
	bufferSize := cfg.Buffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	return &Loop{
		machine:   cfg.Machine,
		mutations: make(chan Mutation, bufferSize),
		tickRate:  cfg.TickRate,
		onTick:    cfg.OnTick,
	}
}

// Machine returns the machine the loop drives.
func (l *Loop) Machine() *state.Machine {
	if l == nil {
		return nil
	}
	return l.machine
}

// Post queues fn without blocking. Safe from any goroutine.
func (l *Loop) Post(fn Mutation) bool {
	if l == nil || l.mutations == nil || fn == nil {
		return false
	}
	select {
	case l.mutations <- fn:
		return true
	default:
		return false
	}
}

// Spawn starts an effect using the loop task context.
// If Run has not started, the effect is queued until start.
func (l *Loop) Spawn(effect Effect) {
	if l == nil || effect.Run == nil {
		return
	}
	l.taskMu.Lock()
	ctx := l.taskCtx
	if ctx == nil {
		l.pendingEffects = append(l.pendingEffects, effect)
		l.taskMu.Unlock()
		return
	}
	l.taskMu.Unlock()
	go effect.Run(ctx, l.Post)
}

// After posts fn after a delay.
func (l *Loop) After(delay time.Duration, fn Mutation) {
	l.Spawn(After(delay, fn))
}

// Every posts the mutation returned by fn on a fixed interval.
func (l *Loop) Every(interval time.Duration, fn func(time.Time) Mutation) {
	l.Spawn(Every(interval, fn))
}

// Run applies posted mutations until ctx is cancelled.
// Effects started through the loop stop when Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)
	if ctx == nil {
		ctx = context.Background()
	}

	taskCtx, taskCancel := context.WithCancel(ctx)
	defer taskCancel()
	l.startTasks(taskCtx)
	defer l.stopTasks()

	var ticks <-chan time.Time
	if l.tickRate > 0 && l.onTick != nil {
		ticker := time.NewTicker(l.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.mutations:
			l.drain(fn)
		case now := <-ticks:
			l.apply(func() { l.onTick(now) })
		}
	}
}

// Drain applies queued mutations on the calling goroutine and returns the
// count. Use it to drive a loop manually instead of calling Run.
func (l *Loop) Drain() int {
	if l == nil {
		return 0
	}
	select {
	case fn := <-l.mutations:
		return l.drain(fn)
	default:
		return 0
	}
}

// drain applies first and whatever was already queued behind it.
// Mutations posted while the batch runs wait for the next batch.
func (l *Loop) drain(first Mutation) int {
	applied := 0
	l.apply(func() {
		first()
		applied++
		for n := len(l.mutations); n > 0; n-- {
			fn := <-l.mutations
			fn()
			applied++
		}
	})
	return applied
}

func (l *Loop) apply(fn func()) {
	if l.machine == nil {
		fn()
		return
	}
	l.machine.Transaction(fn)
}

func (l *Loop) startTasks(ctx context.Context) {
	l.taskMu.Lock()
	l.taskCtx = ctx
	pending := l.pendingEffects
	l.pendingEffects = nil
	l.taskMu.Unlock()
	for _, effect := range pending {
		go effect.Run(ctx, l.Post)
	}
}

func (l *Loop) stopTasks() {
	l.taskMu.Lock()
	l.taskCtx = nil
	l.taskMu.Unlock()
}
