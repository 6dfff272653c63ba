package intcode

import (
	"fmt"
	"strings"
)

// Param is an instruction parameter and its addressing mode.
type Param struct {
	Mode  Mode
	Value int64
}

func (p Param) String() string {
	switch p.Mode {
	case Position:
		return fmt.Sprintf("[%d]", p.Value)
	case Relative:
		if p.Value < 0 {
			return fmt.Sprintf("[rb%d]", p.Value)
		}
		return fmt.Sprintf("[rb+%d]", p.Value)
	}
	return fmt.Sprint(p.Value)
}

// Instruction is a decoded instruction, ready to be executed by the
// machine it was decoded from.
type Instruction struct {
	Op     Op
	Addr   int64 // address of the instruction word
	Params [3]Param
}

// Args returns the parameters used by the instruction's operation.
func (in Instruction) Args() []Param { return in.Params[:in.Op.Arity()] }

func (in Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	for _, p := range in.Args() {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// Next decodes the instruction at m.PC without executing it.
//
// The whole instruction must lie within m.Mem.Len(); an instruction that
// runs off the end of the program fails with Missing rather than reading
// phantom zero parameters.
func (m *Machine) Next() (Instruction, error) {
	return decode(&m.Mem, m.PC)
}

func decode(mem *Memory, addr int64) (Instruction, error) {
	if addr < 0 {
		return Instruction{}, &Error{Code: OutOfBounds, Addr: addr}
	}
	if addr >= mem.Len() {
		return Instruction{}, &Error{Code: Missing, Addr: addr}
	}
	w := mem.Read(addr)
	oc, err := DecodeOpcode(w)
	if err != nil {
		return Instruction{}, &Error{Code: err.(Code), Op: Op(w % 100), Addr: addr, Word: w}
	}
	in := Instruction{Op: oc.Op, Addr: addr}
	if oc.Op.Width() > mem.Len()-addr {
		return in, &Error{Code: Missing, Op: oc.Op, Addr: addr, Word: w}
	}
	for i := range in.Args() {
		in.Params[i] = Param{Mode: oc.Modes[i], Value: mem.Read(addr + 1 + int64(i))}
	}
	if t := oc.Op.Target(); t >= 0 && in.Params[t].Mode == Immediate {
		return in, &Error{Code: NeverImmediate, Op: oc.Op, Addr: addr, Word: w}
	}
	return in, nil
}

// Step decodes and executes the instruction at m.PC.
// It does nothing if the machine has halted.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	in, err := m.Next()
	if err != nil {
		return err
	}
	return m.Exec(in)
}

// Exec executes in, which must have been decoded from the instruction at
// m.PC; otherwise it fails with OpcodeMismatch. It does nothing if the
// machine has halted. A failed instruction leaves the machine unchanged.
func (m *Machine) Exec(in Instruction) (err error) {
	if m.Halted {
		return nil
	}
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(Code); ok {
				xe := &Error{Code: code, Op: in.Op, Addr: in.Addr}
				if in.Addr >= 0 {
					xe.Word = m.Mem.Read(in.Addr)
				}
				err = xe
			} else {
				panic(e)
			}
		}
	}()

	if in.Addr != m.PC || Op(m.Mem.Read(m.PC)%100) != in.Op {
		panic(OpcodeMismatch)
	}
	if m.limit > 0 && m.steps >= m.limit {
		panic(StepLimit)
	}

	p := in.Params
	switch in.Op {
	case ADD:
		m.Mem.Write(m.addr(p[2]), m.val(p[0])+m.val(p[1]))
	case MUL:
		m.Mem.Write(m.addr(p[2]), m.val(p[0])*m.val(p[1]))
	case IN:
		if len(m.Input) == 0 {
			panic(ExpectedInput)
		}
		m.Mem.Write(m.addr(p[0]), m.Input[0])
		m.Input = m.Input[1:]
	case OUT:
		m.Output = append(m.Output, m.val(p[0]))
	case JNZ, JZ:
		if c := m.val(p[0]); (c != 0) == (in.Op == JNZ) {
			m.PC = m.val(p[1])
			m.steps++
			return nil
		}
	case LT:
		m.Mem.Write(m.addr(p[2]), boolInt(m.val(p[0]) < m.val(p[1])))
	case EQ:
		m.Mem.Write(m.addr(p[2]), boolInt(m.val(p[0]) == m.val(p[1])))
	case ARB:
		m.RelBase += m.val(p[0])
	case HLT:
		m.Halted = true
		m.steps++
		return nil
	default:
		panic(InvalidInstruction)
	}
	m.PC += in.Op.Width()
	m.steps++
	return nil
}

// val resolves p to the value it refers to.
func (m *Machine) val(p Param) int64 {
	switch p.Mode {
	case Position:
		return m.Mem.Read(p.Value)
	case Immediate:
		return p.Value
	case Relative:
		return m.Mem.Read(m.RelBase + p.Value)
	}
	panic(InvalidMode)
}

// addr resolves p, a write target, to the address it refers to.
func (m *Machine) addr(p Param) int64 {
	var a int64
	switch p.Mode {
	case Position:
		a = p.Value
	case Relative:
		a = m.RelBase + p.Value
	case Immediate:
		panic(NeverImmediate)
	default:
		panic(InvalidMode)
	}
	if a < 0 {
		panic(OutOfBounds)
	}
	return a
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Error is returned by the machine when an instruction cannot be decoded
// or executed. It wraps its Code, so callers may test for a kind of
// failure with errors.Is(err, intcode.ExpectedInput).
type Error struct {
	Code Code
	Op   Op
	Addr int64 // address of the failing instruction
	Word int64 // instruction word at Addr
}

func (e *Error) Error() string {
	switch {
	case e.Code == InvalidMode, e.Code == InvalidInstruction:
		return fmt.Sprintf("%s %d at %d", e.Code, e.Word, e.Addr)
	case e.Op != 0:
		return fmt.Sprintf("%s executing %s at %d", e.Code, e.Op, e.Addr)
	}
	return fmt.Sprintf("%s at %d", e.Code, e.Addr)
}

func (e *Error) Unwrap() error { return e.Code }

// Code identifies the kind of condition that stopped execution.
type Code byte

const (
	InvalidMode        Code = iota + 1 // mode digit other than 0, 1 or 2
	InvalidInstruction                 // unknown operation
	OpcodeMismatch                     // instruction executed against a different word
	NeverImmediate                     // write target in immediate mode
	ExpectedInput                      // IN with an empty input queue
	Missing                            // instruction runs past the end of memory
	OutOfBounds                        // negative address
	StepLimit                          // step limit reached
)

func (c Code) Error() string {
	if s, ok := map[Code]string{
		InvalidMode:        "invalid mode",
		InvalidInstruction: "invalid instruction",
		OpcodeMismatch:     "opcode mismatch",
		NeverImmediate:     "immediate mode write target",
		ExpectedInput:      "expected input",
		Missing:            "truncated program",
		OutOfBounds:        "address out of bounds",
		StepLimit:          "step limit reached",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown error (%d)", byte(c))
}
