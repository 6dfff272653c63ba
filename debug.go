package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/nf/intcode/device"
	"github.com/nf/intcode/intcode"
)

type debugger struct {
	run *device.Runner
	log zerolog.Logger

	logView *tview.TextView
	watch   *tview.TextView
	state   *tview.TextView
	input   *tview.InputField
	cols    *tview.Flex
	rows    *tview.Flex
	app     *tview.Application

	mu       sync.Mutex
	syms     symbols
	dbg, brk *symbol
	watches  []symbol
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		logView: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.logView.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.logView, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "debug", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.command(cmd)
	})
	return d
}

// command interprets one line typed into the debugger.
func (d *debugger) command(line string) {
	if line == "exit" {
		d.app.Stop()
		return
	}
	if cmd, arg, ok := strings.Cut(line, " "); ok {
		switch cmd {
		case "b", "break", "d", "debug":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				d.log.Warn().Msgf("invalid address %q", arg)
				return
			}
			d.run.Debug(cmd, s.addr)
			d.mu.Lock()
			if cmd[0] == 'b' {
				d.brk = &s
			} else {
				d.dbg = &s
			}
			d.mu.Unlock()
			d.log.Info().Msgf("set %s %s", cmd, s)
			return
		case "w", "watch":
			s, ok := d.symbols().resolve(arg)
			if !ok {
				d.log.Warn().Msgf("invalid address %q", arg)
				return
			}
			d.mu.Lock()
			d.watches = append(d.watches, s)
			d.mu.Unlock()
			d.log.Info().Msgf("watching %s", s)
			return
		case "i", "in":
			vs, err := intcode.Parse(arg)
			if err != nil {
				d.log.Warn().Err(err).Msg("invalid input")
				return
			}
			for _, v := range vs {
				d.run.Debug(cmd, v)
			}
			return
		}
	}
	d.run.Debug(line, -1)
	d.mu.Lock()
	defer d.mu.Unlock()
	switch line {
	case "b", "break":
		d.brk = nil
		d.log.Info().Msg("cleared break")
	case "d", "debug":
		d.dbg = nil
		d.log.Info().Msg("cleared debug")
	}
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(m *intcode.Machine, k device.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != device.ClearState && k != device.QuietState {
		state = stateMsg(d.symbols(), m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case device.DebugState, device.ClearState, device.StepState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case device.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case device.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case device.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != device.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *intcode.Machine, k device.StateKind) string {
	var (
		text  string
		pcSym string
		sym   string
	)
	if in, err := m.Next(); err != nil {
		text = err.Error()
	} else {
		text = in.String()
		var refs []string
		for _, p := range in.Args() {
			addr, ok := paramAddr(m, p)
			if !ok {
				continue
			}
			for _, s := range syms.forAddr(addr) {
				refs = append(refs, s.String())
			}
		}
		sym = strings.Join(refs, " ")
	}
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	kind := "       "
	switch k {
	case device.BreakState:
		kind = "[break]"
	case device.DebugState:
		kind = "[debug]"
	case device.PauseState:
		kind = "[pause]"
	case device.StepState:
		kind = "[step] "
	case device.HaltState:
		kind = "[HALT!]"
		if m.Halted {
			text = "HLT"
		}
	}
	return fmt.Sprintf("%6d %-24s %s %s%s\nrb: %d  steps: %d\nin: %v\nout: %v\n",
		m.PC, text, kind, pcSym, sym, m.RelBase, m.Steps(), m.Input, tail(m.Output, 8))
}

// paramAddr returns the address p refers to, if it refers to one.
func paramAddr(m *intcode.Machine, p intcode.Param) (int64, bool) {
	switch p.Mode {
	case intcode.Position:
		return p.Value, true
	case intcode.Relative:
		return m.RelBase + p.Value, true
	}
	return 0, false
}

func tail(v []int64, n int) []int64 {
	if len(v) > n {
		return v[len(v)-n:]
	}
	return v
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s brk!\n", s)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s dbg?\n", s)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		v, err := m.Peek(w.addr)
		if err != nil {
			fmt.Fprintf(&b, "%s %v", w, err)
			continue
		}
		fmt.Fprintf(&b, "%s %s", w, strconv.FormatInt(v, 10))
	}
	return b.String()
}
