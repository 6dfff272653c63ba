package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nf/intcode/amp"
	"github.com/nf/intcode/intcode"
)

var chainCmd = &cobra.Command{
	Use:   "chain PROGRAM",
	Short: "Run copies of a program as a chain of amplifiers",
	Long: `Chain runs one copy of the program per phase setting, passing each
copy's output to the next, and prints the signal leaving the last one.
With --max, it tries every ordering of the phases and prints the best
signal followed by the ordering that produced it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := intcode.LoadFile(args[0])
		if err != nil {
			return err
		}
		phases, err := intcode.Parse(viper.GetString("phases"))
		if err != nil {
			return errors.Wrap(err, "phases")
		}
		feedback := viper.GetBool("feedback")
		out := cmd.OutOrStdout()
		if viper.GetBool("max") {
			best, order, err := amp.MaxSignal(prog, phases, feedback)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\t%s\n", best, intcode.Format(order))
			return nil
		}
		signal, err := amp.Chain(prog, phases, feedback)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, signal)
		return nil
	},
}

func init() {
	f := chainCmd.Flags()
	f.String("phases", "0,1,2,3,4", "comma separated phase `settings`, one per amplifier")
	f.Bool("feedback", false, "feed the last amplifier's output back to the first")
	f.Bool("max", false, "try every ordering of the phases")
	for _, name := range []string{"phases", "feedback", "max"} {
		viper.BindPFlag(name, f.Lookup(name))
	}
}
