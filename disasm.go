package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nf/intcode/intcode"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm PROGRAM",
	Short: "Print a disassembly listing of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMachine(args[0])
		if err != nil {
			return err
		}
		syms, err := loadSymbols(args[0])
		if err != nil {
			return err
		}
		disasm(cmd.OutOrStdout(), m, syms)
		return nil
	},
}

// disasm writes a listing of the whole of m's memory to w, preceding each
// labelled address with its labels.
func disasm(w io.Writer, m *intcode.Machine, syms symbols) {
	for _, l := range intcode.Disassemble(&m.Mem, 0, int(m.Mem.Len())) {
		for _, s := range syms.forAddr(l.Addr) {
			fmt.Fprintf(w, "%s:\n", s.label)
		}
		line := l.String()
		if l.Inst != nil {
			var refs []string
			for _, p := range l.Inst.Args() {
				if p.Mode != intcode.Position {
					continue
				}
				for _, s := range syms.forAddr(p.Value) {
					refs = append(refs, s.label)
				}
			}
			if len(refs) > 0 {
				line += "\t; " + strings.Join(refs, " ")
			}
		}
		fmt.Fprintln(w, line)
	}
}
