// Package device implements peripherals that exchange values with an
// Intcode machine, and a Runner that drives a machine connected to them.
package device

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nf/intcode/intcode"
)

// Input supplies values to a machine's IN instructions.
// ReadValue blocks until a value is available or ctx is done.
type Input interface {
	ReadValue(ctx context.Context) (int64, error)
}

// Output receives the values of a machine's OUT instructions.
type Output interface {
	WriteValue(v int64) error
}

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // running again, or reset
	QuietState                  // machine changed but nothing to report
	StepState                   // executed a single step
	DebugState                  // reached the debug address
	BreakState                  // reached the break address and paused
	PauseState                  // paused on request
	HaltState                   // halted or failed
)

// StateFunc is called by a Runner when the machine's state is of
// interest to a debugger. It runs on the Runner's goroutine and must not
// retain m.
type StateFunc func(m *intcode.Machine, k StateKind)

// Runner executes a machine one instruction at a time, reading input from
// In when the machine needs a value that is not queued, and writing every
// output to Out.
type Runner struct {
	In  Input
	Out Output
	Log zerolog.Logger

	dev   bool
	state StateFunc

	debug     chan command
	reset     chan *intcode.Machine
	resetDone chan bool

	mu         sync.Mutex
	cancelRead context.CancelFunc
}

type command struct {
	name string
	arg  int64
}

// NewRunner returns a Runner connected to the given devices. In dev mode
// Run does not return when the machine halts or fails, but waits for
// Reset or an "exit" command. The StateFunc f may be nil.
func NewRunner(in Input, out Output, devMode bool, f StateFunc) *Runner {
	if f == nil {
		f = func(*intcode.Machine, StateKind) {}
	}
	return &Runner{
		In:        in,
		Out:       out,
		Log:       zerolog.Nop(),
		dev:       devMode,
		state:     f,
		debug:     make(chan command, 16),
		reset:     make(chan *intcode.Machine, 1),
		resetDone: make(chan bool),
	}
}

// Debug sends a debugger command to the running machine:
//
//	b, break ADDR   pause when PC reaches ADDR (negative clears)
//	d, debug ADDR   report state when PC reaches ADDR (negative clears)
//	p, pause        pause execution
//	c, cont         continue execution
//	s, step         execute one instruction and pause
//	i, in VALUE     queue VALUE as input
//	exit            stop running
func (r *Runner) Debug(cmd string, arg int64) {
	r.debug <- command{cmd, arg}
	r.interrupt()
}

// Reset replaces the running machine with m.
// It may only be called in dev mode.
func (r *Runner) Reset(m *intcode.Machine) {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	r.reset <- m
	r.interrupt()
	<-r.resetDone
}

// Run executes m until it halts or fails, returning the failure.
// In dev mode it keeps serving commands until "exit" is received or ctx
// is done.
func (r *Runner) Run(ctx context.Context, m *intcode.Machine) error {
	var (
		brk, dbg int64 = -1, -1
		paused   bool
		step     bool
		err      error
	)
	for {
		stopped := m.Halted || err != nil
		if stopped && !r.dev {
			return err
		}

		var (
			cmd   command
			reset *intcode.Machine
			got   bool
		)
		if stopped || (paused && !step) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd = <-r.debug:
				got = true
			case reset = <-r.reset:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd = <-r.debug:
				got = true
			case reset = <-r.reset:
			default:
			}
		}

		if reset != nil {
			m, err, paused, step = reset, nil, false, false
			r.Log.Info().Msg("reset")
			r.state(m, ClearState)
			r.resetDone <- true
			continue
		}
		if got {
			switch cmd.name {
			case "exit":
				return err
			case "b", "break":
				brk = cmd.arg
			case "d", "debug":
				dbg = cmd.arg
			case "p", "pause":
				paused = true
				r.state(m, PauseState)
			case "c", "cont":
				paused, step = false, false
				r.state(m, ClearState)
			case "s", "step":
				paused, step = true, true
			case "i", "in":
				m.PushInput(cmd.arg)
				r.state(m, QuietState)
			default:
				r.Log.Warn().Str("cmd", cmd.name).Msg("unknown debug command")
			}
			continue
		}

		if err = r.step(ctx, m); errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// Input was interrupted by a command; serve it and retry.
			err = nil
			continue
		}
		switch {
		case err != nil:
			r.Log.Error().Err(err).Msg("machine failed")
			r.state(m, HaltState)
		case m.Halted:
			r.Log.Info().Int64("steps", m.Steps()).Msg("halt")
			r.state(m, HaltState)
		case step:
			step = false
			r.state(m, StepState)
		case m.PC == brk:
			paused = true
			r.state(m, BreakState)
		case m.PC == dbg:
			r.state(m, DebugState)
		}
	}
}

// step executes one instruction, reading input first if the instruction
// needs it.
func (r *Runner) step(ctx context.Context, m *intcode.Machine) error {
	in, err := m.Next()
	if err != nil {
		return err
	}
	if in.Op == intcode.IN && len(m.Input) == 0 && r.In != nil {
		v, err := r.read(ctx)
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		m.PushInput(v)
	}
	if e := r.Log.Debug(); e.Enabled() {
		e.Int64("pc", in.Addr).Int64("rb", m.RelBase).Stringer("in", in).Msg("exec")
	}
	if err := m.Exec(in); err != nil {
		return err
	}
	if in.Op == intcode.OUT && r.Out != nil {
		v, _ := m.LastOutput()
		return errors.Wrap(r.Out.WriteValue(v), "write output")
	}
	return nil
}

func (r *Runner) read(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.mu.Lock()
	r.cancelRead = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancelRead = nil
		r.mu.Unlock()
	}()
	if len(r.debug) > 0 || len(r.reset) > 0 {
		cancel()
	}
	return r.In.ReadValue(ctx)
}

func (r *Runner) interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelRead != nil {
		r.cancelRead()
	}
}
