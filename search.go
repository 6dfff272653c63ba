package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nf/intcode/intcode"
)

var searchCmd = &cobra.Command{
	Use:   "search PROGRAM",
	Short: "Find the noun and verb that make a program leave a target value at address 0",
	Long: `Search tries every noun and verb from 0 to 99, storing them at
addresses 1 and 2 before running the program, and prints 100*noun+verb
for the first pair that leaves the target value at address 0.

Each run is bounded by --max-steps, or by one million steps when that is
not set; runs that exceed it are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMachine(args[0])
		if err != nil {
			return err
		}
		limit := viper.GetInt64("max-steps")
		if limit <= 0 {
			limit = defaultSearchSteps
		}
		noun, verb, err := search(m, viper.GetInt64("target"), limit, newLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), 100*noun+verb)
		return nil
	},
}

func init() {
	searchCmd.Flags().Int64("target", 19690720, "the `value` wanted at address 0")
	viper.BindPFlag("target", searchCmd.Flags().Lookup("target"))
}

const defaultSearchSteps = 1000000

// search runs a copy of base for each noun and verb, returning the first
// pair whose run leaves target at address 0. Runs that fail, or that
// execute more than limit instructions, are skipped.
func search(base *intcode.Machine, target, limit int64, log zerolog.Logger) (noun, verb int64, err error) {
	for noun = 0; noun <= 99; noun++ {
		for verb = 0; verb <= 99; verb++ {
			m := base.Clone()
			intcode.WithStepLimit(limit)(m)
			if err := m.Poke(1, noun); err != nil {
				return 0, 0, err
			}
			if err := m.Poke(2, verb); err != nil {
				return 0, 0, err
			}
			if err := m.Run(); err != nil {
				log.Debug().Int64("noun", noun).Int64("verb", verb).Err(err).Msg("skip")
				continue
			}
			if v, _ := m.Peek(0); v == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, errors.Errorf("no noun and verb leave %d at address 0", target)
}
