// Package amp runs chains of amplifiers: copies of one Intcode program
// wired output to input, each started with its own phase setting.
package amp

import (
	"github.com/pkg/errors"

	"github.com/nf/intcode/intcode"
)

// Chain runs one amplifier per phase. The first amplifier receives the
// signal 0 after its phase, and each following amplifier receives the
// previous one's output. With feedback, the last amplifier's output is
// fed back to the first until the last amplifier halts. Chain returns the
// last signal emitted by the last amplifier.
func Chain(program []int64, phases []int64, feedback bool) (int64, error) {
	if len(phases) == 0 {
		return 0, errors.New("no amplifiers")
	}
	amps := make([]*intcode.Machine, len(phases))
	for i, p := range phases {
		amps[i] = intcode.New(program, intcode.WithInput(p))
	}

	var (
		signal int64
		result int64 // last signal emitted by the last amplifier
		last   = len(amps) - 1
		sent   bool
	)
	for {
		for i, m := range amps {
			out, ok, err := pass(m, signal)
			if err != nil {
				return 0, errors.Wrapf(err, "amplifier %d", i)
			}
			if !ok {
				if feedback && sent {
					return result, nil
				}
				return 0, errors.Errorf("amplifier %d halted without output", i)
			}
			signal = out
			if i == last {
				result, sent = out, true
			}
		}
		if !feedback {
			return result, nil
		}
	}
}

// pass gives m the signal and runs it until it emits a value or halts.
func pass(m *intcode.Machine, signal int64) (out int64, ok bool, err error) {
	if m.Halted {
		return 0, false, nil
	}
	m.PushInput(signal)
	for {
		ev, err := m.Resume()
		if err != nil {
			return 0, false, err
		}
		switch ev {
		case intcode.EventOutput:
			out, _ := m.LastOutput()
			return out, true, nil
		case intcode.EventHalt:
			return 0, false, nil
		case intcode.EventInput:
			return 0, false, errors.Wrap(intcode.ExpectedInput, "waiting for a signal that never comes")
		}
	}
}

// MaxSignal tries every ordering of phases and returns the highest signal
// Chain produces along with the ordering that produced it.
func MaxSignal(program []int64, phases []int64, feedback bool) (best int64, order []int64, err error) {
	if len(phases) == 0 {
		return 0, nil, errors.New("no amplifiers")
	}
	first := true
	err = permute(append([]int64(nil), phases...), 0, func(p []int64) error {
		s, err := Chain(program, p, feedback)
		if err != nil {
			return errors.Wrapf(err, "phases %v", p)
		}
		if first || s > best {
			best, order, first = s, append([]int64(nil), p...), false
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return best, order, nil
}

// permute calls f with every permutation of p[k:], in place.
func permute(p []int64, k int, f func([]int64) error) error {
	if k == len(p) {
		return f(p)
	}
	for i := k; i < len(p); i++ {
		p[k], p[i] = p[i], p[k]
		if err := permute(p, k+1, f); err != nil {
			return err
		}
		p[k], p[i] = p[i], p[k]
	}
	return nil
}
