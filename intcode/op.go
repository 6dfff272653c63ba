package intcode

import "fmt"

// Op represents an Intcode operation code, the two low decimal digits of
// an instruction word.
type Op int64

const (
	ADD Op = 1  // a + b -> c
	MUL Op = 2  // a * b -> c
	IN  Op = 3  // input -> a
	OUT Op = 4  // a -> output
	JNZ Op = 5  // jump to b if a != 0
	JZ  Op = 6  // jump to b if a == 0
	LT  Op = 7  // a < b -> c
	EQ  Op = 8  // a == b -> c
	ARB Op = 9  // relative base += a
	HLT Op = 99 // halt
)

var opNames = map[Op]string{
	ADD: "ADD",
	MUL: "MUL",
	IN:  "IN",
	OUT: "OUT",
	JNZ: "JNZ",
	JZ:  "JZ",
	LT:  "LT",
	EQ:  "EQ",
	ARB: "ARB",
	HLT: "HLT",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

// Valid reports whether op is a known operation.
func (op Op) Valid() bool {
	_, ok := opNames[op]
	return ok
}

// Arity returns the number of parameters that follow the instruction word.
func (op Op) Arity() int {
	switch op {
	case ADD, MUL, LT, EQ:
		return 3
	case JNZ, JZ:
		return 2
	case IN, OUT, ARB:
		return 1
	}
	return 0
}

// Width returns the number of memory cells the instruction occupies.
func (op Op) Width() int64 { return int64(op.Arity()) + 1 }

// Target returns the index of the parameter the operation writes to,
// or -1 if it writes to none.
func (op Op) Target() int {
	switch op {
	case ADD, MUL, LT, EQ:
		return 2
	case IN:
		return 0
	}
	return -1
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0 // parameter is an address
	Immediate Mode = 1 // parameter is the value
	Relative  Mode = 2 // parameter is an offset from the relative base
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Opcode is a decoded instruction word.
type Opcode struct {
	Op    Op
	Modes [3]Mode
}

// DecodeOpcode splits the instruction word w into its operation and the
// addressing modes of its three parameters:
//
//	ABCDE
//	  |++- operation
//	  +--- mode of parameter 1
//	 +---- mode of parameter 2
//	+----- mode of parameter 3
//
// It returns InvalidMode if any mode digit is not 0, 1 or 2, and
// InvalidInstruction if the operation is unknown.
func DecodeOpcode(w int64) (Opcode, error) {
	var oc Opcode
	for i, div := 0, int64(100); i < len(oc.Modes); i, div = i+1, div*10 {
		d := (w / div) % 10
		if d < 0 || d > 2 {
			return Opcode{}, InvalidMode
		}
		oc.Modes[i] = Mode(d)
	}
	oc.Op = Op(w % 100)
	if !oc.Op.Valid() {
		return Opcode{}, InvalidInstruction
	}
	return oc, nil
}

// Encode returns the instruction word for oc.
func (oc Opcode) Encode() int64 {
	return int64(oc.Op) +
		int64(oc.Modes[0])*100 +
		int64(oc.Modes[1])*1000 +
		int64(oc.Modes[2])*10000
}
