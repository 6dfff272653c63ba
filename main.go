// Command intcode runs Intcode programs.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nf/intcode/intcode"
)

var rootCmd = &cobra.Command{
	Use:           "intcode",
	Short:         "Run Intcode programs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "read configuration from `file`")
	pf.Bool("trace", false, "log every executed instruction")
	pf.Int64("max-steps", 0, "stop after `n` instructions (0 means no limit)")
	pf.StringArray("set", nil, "store a value before running, as `addr=value` (repeatable)")
	for _, name := range []string{"config", "trace", "max-steps", "set"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(runCmd, chainCmd, searchCmd, disasmCmd)
}

func initConfig() {
	viper.SetEnvPrefix("intcode")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if f := viper.GetString("config"); f != "" {
		viper.SetConfigFile(f)
		if err := viper.ReadInConfig(); err != nil {
			fatal(errors.Wrap(err, "config"))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "intcode: %s\n", red(s))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdin := os.Stdin.Fd()
	stdout := os.Stdout.Fd()
	inTerm := isatty.IsTerminal(stdin) || isatty.IsCygwinTerminal(stdin)
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	return inTerm && outTerm
}

// newLogger returns a logger writing human readable lines to w. It logs
// warnings and errors, or every executed instruction with --trace.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("trace") {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      w != os.Stderr || !isatty.IsTerminal(os.Stderr.Fd()),
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(cw).Level(level)
}

// machineOptions returns the machine options selected by flags and
// configuration.
func machineOptions() ([]intcode.Option, error) {
	opts := []intcode.Option{intcode.WithStepLimit(viper.GetInt64("max-steps"))}
	if s := viper.GetString("input"); s != "" {
		in, err := intcode.Parse(s)
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
		opts = append(opts, intcode.WithInput(in...))
	}
	return opts, nil
}

// loadMachine loads the named program and applies the --set patches.
func loadMachine(name string) (*intcode.Machine, error) {
	prog, err := intcode.LoadFile(name)
	if err != nil {
		return nil, err
	}
	opts, err := machineOptions()
	if err != nil {
		return nil, err
	}
	m := intcode.New(prog, opts...)
	if err := applyPatches(m, viper.GetStringSlice("set")); err != nil {
		return nil, err
	}
	return m, nil
}

func applyPatches(m *intcode.Machine, patches []string) error {
	for _, p := range patches {
		addr, v, err := parsePatch(p)
		if err != nil {
			return err
		}
		if err := m.Poke(addr, v); err != nil {
			return errors.Wrapf(err, "set %s", p)
		}
	}
	return nil
}

func parsePatch(s string) (addr, v int64, err error) {
	a, b, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, errors.Errorf("set %q: want addr=value", s)
	}
	if addr, err = strconv.ParseInt(strings.TrimSpace(a), 10, 64); err != nil {
		return 0, 0, errors.Errorf("set %q: invalid address", s)
	}
	if v, err = strconv.ParseInt(strings.TrimSpace(b), 10, 64); err != nil {
		return 0, 0, errors.Errorf("set %q: invalid value", s)
	}
	return addr, v, nil
}
