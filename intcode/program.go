package intcode

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Parse parses a program written as comma separated integers. Whitespace
// around values, including a trailing newline, is ignored. Every malformed
// value is reported in the returned error.
func Parse(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty program")
	}
	var (
		fields = strings.Split(s, ",")
		prog   = make([]int64, len(fields))
		merr   *multierror.Error
	)
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			merr = multierror.Append(merr, errors.Errorf("value %d: invalid integer %q", i, strings.TrimSpace(f)))
			continue
		}
		prog[i] = v
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Format returns prog in the form read by Parse.
func Format(prog []int64) string {
	var b strings.Builder
	for i, v := range prog {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// Load reads and parses a program from r.
func Load(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	prog, err := Parse(string(b))
	return prog, errors.Wrap(err, "parse program")
}

// LoadFile reads and parses the program in the named file.
func LoadFile(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	defer f.Close()
	prog, err := Load(f)
	return prog, errors.Wrap(err, name)
}

// Disassemble decodes up to n instructions starting at addr. Cells that
// do not decode as an instruction are listed as data, one per line.
func Disassemble(mem *Memory, addr int64, n int) []Line {
	var lines []Line
	for len(lines) < n && addr >= 0 && addr < mem.Len() {
		in, err := decode(mem, addr)
		if err != nil {
			lines = append(lines, Line{Addr: addr, Words: []int64{mem.Read(addr)}})
			addr++
			continue
		}
		w := in.Op.Width()
		lines = append(lines, Line{
			Addr:  addr,
			Words: mem.Window(addr, w),
			Inst:  &in,
		})
		addr += w
	}
	return lines
}

// Line is one line of a disassembly listing.
type Line struct {
	Addr  int64
	Words []int64
	Inst  *Instruction // nil for data
}

func (l Line) String() string {
	var words []string
	for _, w := range l.Words {
		words = append(words, strconv.FormatInt(w, 10))
	}
	text := "DATA"
	if l.Inst != nil {
		text = l.Inst.String()
	}
	return strconv.FormatInt(l.Addr, 10) + "\t" + strings.Join(words, ",") + "\t" + text
}
