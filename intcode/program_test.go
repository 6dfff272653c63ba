package intcode

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{
		"99",
		"1,0,0,0,99",
		"109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99",
		"104,1125899906842624,99",
		"-9223372036854775808,9223372036854775807",
	} {
		p, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q): %v", s, err)
			continue
		}
		if g := Format(p); g != s {
			t.Errorf("Format(Parse(%q)) = %q", s, g)
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	p, err := Parse(" 1, 2 ,3,\t4,99\n")
	if err != nil {
		t.Fatal(err)
	}
	if g, w := p, []int64{1, 2, 3, 4, 99}; !intsEq(g, w) {
		t.Errorf("Parse = %v, want %v", g, w)
	}
}

func TestParseErrors(t *testing.T) {
	for s, n := range map[string]int{
		"":                     0,
		"1,x,3,y":              2,
		"1,,99":                1,
		"99999999999999999999": 1,
	} {
		_, err := Parse(s)
		if err == nil {
			t.Errorf("Parse(%q) succeeded", s)
			continue
		}
		var merr *multierror.Error
		if n == 0 {
			continue
		}
		if !errors.As(err, &merr) {
			t.Errorf("Parse(%q) error %T is not a multierror", s, err)
			continue
		}
		if len(merr.Errors) != n {
			t.Errorf("Parse(%q) reported %d errors, want %d: %v", s, len(merr.Errors), n, err)
		}
	}
}

func TestLoad(t *testing.T) {
	p, err := Load(strings.NewReader("1,0,0,0,99\n"))
	if err != nil {
		t.Fatal(err)
	}
	if g, w := p, []int64{1, 0, 0, 0, 99}; !intsEq(g, w) {
		t.Errorf("Load = %v, want %v", g, w)
	}
	if _, err := Load(strings.NewReader("1,a")); err == nil || !strings.Contains(err.Error(), "parse program") {
		t.Errorf("Load of bad program returned %v", err)
	}
	if _, err := LoadFile("testdata/does-not-exist"); err == nil {
		t.Error("LoadFile of missing file succeeded")
	}
}

func TestDisassemble(t *testing.T) {
	m := NewMemory(mustParse("1101,1,-2,3,204,-1,1105,1,0,99,7"))
	var got []string
	for _, l := range Disassemble(&m, 0, 10) {
		got = append(got, l.String())
	}
	want := []string{
		"0\t1101,1,-2,3\tADD 1 -2 [3]",
		"4\t204,-1\tOUT [rb-1]",
		"6\t1105,1,0\tJNZ 1 0",
		"9\t99\tHLT",
		"10\t7\tDATA",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Disassemble =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}
