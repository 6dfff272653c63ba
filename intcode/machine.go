// Package intcode provides an implementation of the Intcode computer,
// called Machine, that can be used to execute Intcode programs.
package intcode

// Machine is an Intcode computer.
type Machine struct {
	Mem     Memory
	PC      int64   // instruction pointer
	RelBase int64   // relative base register
	Input   []int64 // queued input, consumed from the front
	Output  []int64 // every value output so far
	Halted  bool

	steps int64
	limit int64
}

// Option configures a Machine.
type Option func(*Machine)

// WithInput queues the given values as input.
func WithInput(v ...int64) Option {
	return func(m *Machine) { m.PushInput(v...) }
}

// WithStepLimit bounds the number of instructions the machine will
// execute. Once n instructions have run, executing another fails with
// StepLimit. Zero means no limit.
func WithStepLimit(n int64) Option {
	return func(m *Machine) { m.limit = n }
}

// New returns a Machine loaded with a copy of program, ready to run from
// address zero.
func New(program []int64, opts ...Option) *Machine {
	m := &Machine{Mem: NewMemory(program)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes program to completion with the given input and returns the
// final machine.
func Run(program, input []int64, opts ...Option) (*Machine, error) {
	m := New(program, append([]Option{WithInput(input...)}, opts...)...)
	return m, m.Run()
}

// Run steps the machine until it halts or fails.
func (m *Machine) Run() error {
	for !m.Halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Event is the reason Resume returned.
type Event int

const (
	EventHalt   Event = iota + 1 // the machine halted
	EventOutput                  // the machine output a value
	EventInput                   // the machine needs input that is not queued
)

func (e Event) String() string {
	switch e {
	case EventHalt:
		return "halt"
	case EventOutput:
		return "output"
	case EventInput:
		return "input"
	}
	return "unknown event"
}

// Resume executes instructions until the machine halts, outputs a value,
// or reaches an IN instruction with nothing queued. In the last case the
// IN instruction is not executed, so the caller may PushInput and call
// Resume again.
func (m *Machine) Resume() (Event, error) {
	for !m.Halted {
		in, err := m.Next()
		if err != nil {
			return 0, err
		}
		if in.Op == IN && len(m.Input) == 0 {
			return EventInput, nil
		}
		if err := m.Exec(in); err != nil {
			return 0, err
		}
		if in.Op == OUT {
			return EventOutput, nil
		}
	}
	return EventHalt, nil
}

// PushInput appends v to the input queue.
func (m *Machine) PushInput(v ...int64) {
	m.Input = append(m.Input, v...)
}

// NeedsInput reports whether the next instruction is IN and the input
// queue is empty.
func (m *Machine) NeedsInput() bool {
	if m.Halted || len(m.Input) > 0 {
		return false
	}
	in, err := m.Next()
	return err == nil && in.Op == IN
}

// LastOutput returns the most recent output value, and reports whether
// there was one.
func (m *Machine) LastOutput() (int64, bool) {
	if len(m.Output) == 0 {
		return 0, false
	}
	return m.Output[len(m.Output)-1], true
}

// Peek returns the value at addr.
func (m *Machine) Peek(addr int64) (int64, error) {
	if addr < 0 {
		return 0, &Error{Code: OutOfBounds, Addr: addr}
	}
	return m.Mem.Read(addr), nil
}

// Poke sets the value at addr. Callers use it to patch a program before
// running it.
func (m *Machine) Poke(addr, v int64) error {
	if addr < 0 {
		return &Error{Code: OutOfBounds, Addr: addr}
	}
	m.Mem.Write(addr, v)
	return nil
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int64 { return m.steps }

// Clone returns an independent copy of m.
func (m *Machine) Clone() *Machine {
	c := *m
	c.Mem = m.Mem.Clone()
	c.Input = append([]int64(nil), m.Input...)
	c.Output = append([]int64(nil), m.Output...)
	return &c
}
