package intcode

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestRunMemory(t *testing.T) {
	for _, c := range []struct {
		prog, want []int64
	}{
		{[]int64{1, 0, 0, 0, 99}, []int64{2, 0, 0, 0, 99}},
		{[]int64{2, 3, 0, 3, 99}, []int64{2, 3, 0, 6, 99}},
		{[]int64{2, 4, 4, 5, 99, 0}, []int64{2, 4, 4, 5, 99, 9801}},
		{[]int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{[]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}, []int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50}},
	} {
		t.Run(Format(c.prog), func(t *testing.T) {
			m, err := Run(c.prog, nil)
			if err != nil {
				t.Fatal(err)
			}
			if g := m.Mem.Window(0, int64(len(c.want))); !intsEq(g, c.want) {
				t.Errorf("memory is %v, want %v", g, c.want)
			}
			if !m.Halted {
				t.Error("machine did not halt")
			}
		})
	}
}

const compareTo8 = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31,1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

func TestRunOutput(t *testing.T) {
	quine := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	for _, c := range []struct {
		prog  string
		input []int64
		want  []int64
	}{
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{8}, []int64{1}},
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{7}, []int64{0}},
		{"3,9,7,9,10,9,4,9,99,-1,8", []int64{5}, []int64{1}},
		{"3,3,1108,-1,8,3,4,3,99", []int64{8}, []int64{1}},
		{"3,3,1107,-1,8,3,4,3,99", []int64{9}, []int64{0}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{999}, []int64{1}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{0}, []int64{0}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{999}, []int64{1}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{0}, []int64{0}},
		{compareTo8, []int64{5}, []int64{999}},
		{compareTo8, []int64{8}, []int64{1000}},
		{compareTo8, []int64{10}, []int64{1001}},
		{quine, nil, mustParse(quine)},
		{"1102,34915192,34915192,7,4,7,99,0", nil, []int64{1219070632396864}},
		{"104,1125899906842624,99", nil, []int64{1125899906842624}},
		{"3,0,4,0,99", []int64{-17}, []int64{-17}},
	} {
		t.Run(fmt.Sprintf("%s/%v", c.prog, c.input), func(t *testing.T) {
			m, err := Run(mustParse(c.prog), c.input)
			if err != nil {
				t.Fatal(err)
			}
			if g := m.Output; !intsEq(g, c.want) {
				t.Errorf("output is %v, want %v", g, c.want)
			}
		})
	}
}

func mustParse(s string) []int64 {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestRunDoesNotAliasProgram(t *testing.T) {
	prog := []int64{1, 0, 0, 0, 99}
	if _, err := Run(prog, nil); err != nil {
		t.Fatal(err)
	}
	if prog[0] != 1 {
		t.Errorf("Run modified its program: %v", prog)
	}
}

func TestHaltIsIdempotent(t *testing.T) {
	m, err := Run(mustParse("3,0,4,0,99"), []int64{5, 6})
	if err != nil {
		t.Fatal(err)
	}
	before := m.Clone()
	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step after halt returned %v", err)
		}
	}
	if !reflect.DeepEqual(m, before) {
		t.Errorf("Step after halt changed machine:\n\t%+v\nwant\n\t%+v", m, before)
	}
	if g, w := m.Input, []int64{6}; !intsEq(g, w) {
		t.Errorf("remaining input is %v, want %v", g, w)
	}
}

func TestRunErrors(t *testing.T) {
	for _, c := range []struct {
		prog  string
		input []int64
		err   Code
		addr  int64
	}{
		{"3,0,3,0,99", []int64{1}, ExpectedInput, 2},
		{"1101,1,1,0,1", nil, Missing, 4},
		{"1,0,0,0", nil, Missing, 4},
		{"1101,2,3,0,55", nil, InvalidInstruction, 4},
		{"1105,1,-3", nil, OutOfBounds, -3},
		{"10001,0,0,0,99", nil, NeverImmediate, 0},
	} {
		t.Run(c.prog, func(t *testing.T) {
			_, err := Run(mustParse(c.prog), c.input)
			if !errors.Is(err, c.err) {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			var xe *Error
			if !errors.As(err, &xe) {
				t.Fatalf("error %v is not an *Error", err)
			}
			if xe.Addr != c.addr {
				t.Errorf("error address is %d, want %d", xe.Addr, c.addr)
			}
		})
	}
}

func TestStepLimit(t *testing.T) {
	m := New([]int64{1105, 1, 0}, WithStepLimit(10))
	err := m.Run()
	if !errors.Is(err, StepLimit) {
		t.Fatalf("got error %v, want %v", err, StepLimit)
	}
	if g, w := m.Steps(), int64(10); g != w {
		t.Errorf("Steps() = %d, want %d", g, w)
	}
}

func TestResume(t *testing.T) {
	m := New(mustParse("3,0,4,0,3,0,4,0,99"))
	for i, w := range []struct {
		push  []int64
		event Event
		out   int64
	}{
		{nil, EventInput, 0},
		{[]int64{5}, EventOutput, 5},
		{nil, EventInput, 0},
		{[]int64{-8}, EventOutput, -8},
		{nil, EventHalt, -8},
		{nil, EventHalt, -8},
	} {
		m.PushInput(w.push...)
		ev, err := m.Resume()
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		if ev != w.event {
			t.Errorf("%d: Resume returned %v, want %v", i, ev, w.event)
		}
		if out, _ := m.LastOutput(); ev != EventInput && out != w.out {
			t.Errorf("%d: last output is %d, want %d", i, out, w.out)
		}
		if ev == EventInput && !m.NeedsInput() {
			t.Errorf("%d: NeedsInput() = false after %v", i, ev)
		}
	}
}

func TestPeekPoke(t *testing.T) {
	m := New(mustParse("1,0,0,0,99"))
	if err := m.Poke(1, 4); err != nil {
		t.Fatal(err)
	}
	if err := m.Poke(2, 4); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if v, err := m.Peek(0); err != nil || v != 198 {
		t.Errorf("Peek(0) = %d, %v, want 198, nil", v, err)
	}
	if _, err := m.Peek(-1); !errors.Is(err, OutOfBounds) {
		t.Errorf("Peek(-1) returned %v, want %v", err, OutOfBounds)
	}
	if err := m.Poke(-1, 0); !errors.Is(err, OutOfBounds) {
		t.Errorf("Poke(-1) returned %v, want %v", err, OutOfBounds)
	}
}

func TestPokeFarAddress(t *testing.T) {
	m := New(mustParse("1101,2,3,0,99"))
	if err := m.Poke(math.MaxInt64, 7); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Peek(0); v != 5 {
		t.Errorf("Peek(0) = %d, want 5", v)
	}
	if v, _ := m.Peek(math.MaxInt64); v != 7 {
		t.Errorf("Peek(MaxInt64) = %d, want 7", v)
	}
}

func TestClone(t *testing.T) {
	m := New(mustParse("3,0,99"), WithInput(1, 2))
	c := m.Clone()
	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	if m.Mem.Read(0) != 3 || m.PC != 0 || len(m.Input) != 2 {
		t.Errorf("running a clone changed the original: %+v", m)
	}
}

// Programs made only of ADD and MUL behave as a fold over their
// three-address instructions.
func TestAddMulFold(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 50; n++ {
		var (
			count = 1 + r.Intn(10)
			data  = int64(4*count + 1) // first data cell, after HLT
			prog  []int64
		)
		for i := 0; i < count; i++ {
			op := int64(ADD)
			if r.Intn(2) == 1 {
				op = int64(MUL)
			}
			prog = append(prog, op, data+r.Int63n(4), data+r.Int63n(4), data+r.Int63n(4))
		}
		prog = append(prog, int64(HLT))
		for i := 0; i < 4; i++ {
			prog = append(prog, r.Int63n(20)-10)
		}

		want := append([]int64(nil), prog...)
		for i := 0; i < count; i++ {
			ins := want[4*i : 4*i+4]
			a, b := want[ins[1]], want[ins[2]]
			if Op(ins[0]) == ADD {
				want[ins[3]] = a + b
			} else {
				want[ins[3]] = a * b
			}
		}

		m, err := Run(prog, nil)
		if err != nil {
			t.Fatalf("%v: %v", prog, err)
		}
		if g := m.Mem.Window(0, int64(len(want))); !intsEq(g, want) {
			t.Errorf("%v:\nmemory is %v\nwant      %v", prog, g, want)
		}
	}
}
