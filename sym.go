package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// symbols is a list of labelled addresses, sorted by address.
type symbols []symbol

func (s symbols) forAddr(addr int64) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol named by arg, which is either a label or a
// decimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: arg}, true
}

type symbol struct {
	addr  int64
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%d)", s.label, s.addr) }

// parseSymbols reads lines of the form "ADDR LABEL". Blank lines and lines
// starting with '#' are ignored.
func parseSymbols(r io.Reader) (symbols, error) {
	var (
		ss   symbols
		merr *multierror.Error
		sc   = bufio.NewScanner(r)
		n    = 0
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			merr = multierror.Append(merr, errors.Errorf("line %d: want address and label, got %q", n, line))
			continue
		}
		addr, err := strconv.ParseInt(f[0], 10, 64)
		if err != nil || addr < 0 {
			merr = multierror.Append(merr, errors.Errorf("line %d: invalid address %q", n, f[0]))
			continue
		}
		ss = append(ss, symbol{addr: addr, label: f[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

// loadSymbols reads the symbols for the named program from name+".sym".
// A missing file yields no symbols.
func loadSymbols(name string) (symbols, error) {
	f, err := os.Open(name + ".sym")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss, err := parseSymbols(f)
	return ss, errors.Wrap(err, f.Name())
}
