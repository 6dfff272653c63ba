package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nf/intcode/device"
)

var runCmd = &cobra.Command{
	Use:   "run PROGRAM",
	Short: "Run a program with its input and output connected to the terminal",
	Long: `Run a program. Input is read from standard input when the program
asks for a value that was not given with --input, and every output value
is written to standard output.

With --screen, output is drawn as a tile screen in a window and input is
read from a joystick driven by the arrow keys, or by --autopilot.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	f := runCmd.Flags()
	f.String("input", "", "queue comma separated input `values` before running")
	f.Bool("ascii", false, "exchange ASCII text instead of decimal numbers")
	f.Bool("screen", false, "draw output as a tile screen")
	f.Bool("autopilot", false, "move the joystick towards the ball (implies --screen)")
	f.Bool("cli", false, "disable the window; print the screen when the program halts")
	f.Duration("delay", 10*time.Millisecond, "pause before each joystick read when showing a window")
	f.Bool("watch", false, "re-run the program when its file changes")
	f.Bool("debug", false, "run under the debugger (implies --watch)")
	f.String("cpu-profile", "", "write CPU profile to `file`")
	for _, name := range []string{"input", "ascii", "screen", "autopilot", "cli", "delay", "watch", "debug", "cpu-profile"} {
		viper.BindPFlag(name, f.Lookup(name))
	}
}

func runProgram(cmd *cobra.Command, args []string) error {
	name := args[0]
	log := newLogger(os.Stderr)

	if viper.GetBool("debug") || viper.GetBool("watch") {
		return devMode(name, viper.GetBool("debug"), log)
	}

	m, err := loadMachine(name)
	if err != nil {
		return err
	}

	if prof := viper.GetString("cpu-profile"); prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			return errors.Wrap(err, "creating CPU profile file")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !viper.GetBool("screen") && !viper.GetBool("autopilot") {
		con := device.NewConsole(os.Stdin, os.Stdout, viper.GetBool("ascii"))
		defer con.Close()
		r := device.NewRunner(con, con, false, nil)
		r.Log = log
		return r.Run(ctx, m)
	}

	var (
		scr = device.NewScreen()
		joy = &device.Joystick{}
		r   = device.NewRunner(joy, scr, false, nil)
	)
	r.Log = log
	if viper.GetBool("autopilot") {
		joy.Auto = scr
	}
	if viper.GetBool("cli") {
		err := r.Run(ctx, m)
		fmt.Print(scr)
		return err
	}

	joy.Delay = viper.GetDuration("delay")
	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(ctx, m)
	}()
	gui := device.NewGUI(scr, joy)
	gui.Title = "intcode: " + name
	gui.Log = log
	guiErr := gui.Run(ctx.Done())
	cancel()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if guiErr != nil {
		return guiErr
	}
	fmt.Printf("score: %d\n", scr.Score())
	return nil
}
