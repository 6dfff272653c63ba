package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nf/intcode/device"
	"github.com/nf/intcode/intcode"
)

// devMode runs the named program, and runs it again from the start each
// time its file or symbol file changes. With debug it runs the program
// under the debugger, with input typed into the debugger and output shown
// in its log pane.
func devMode(name string, debug bool, log zerolog.Logger) error {
	name = filepath.Clean(name)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(name)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		runner *device.Runner
		dbg    *debugger
	)
	if debug {
		if !isTerminalIO() {
			return errors.New("the debugger needs a terminal")
		}
		dbg = newDebugger()
		log = newLogger(dbg.logView)
		if !viper.GetBool("trace") {
			log = log.Level(zerolog.InfoLevel)
		}
		dbg.log = log
		out := device.NewConsole(nil, dbg.logView, viper.GetBool("ascii"))
		runner = device.NewRunner(make(device.Feed), out, true, dbg.StateFunc)
		dbg.run = runner
		go func() {
			if err := dbg.Run(); err != nil {
				log.Error().Err(err).Msg("debugger")
			}
			runner.Debug("exit", 0)
			cancel()
		}()
	} else {
		con := device.NewConsole(os.Stdin, os.Stdout, viper.GetBool("ascii"))
		defer con.Close()
		runner = device.NewRunner(con, con, true, nil)
	}
	runner.Log = log

	load := func() (*intcode.Machine, error) {
		m, err := loadMachine(name)
		if err != nil {
			return nil, err
		}
		if dbg != nil {
			syms, err := loadSymbols(name)
			if err != nil {
				return nil, err
			}
			dbg.setSymbols(syms)
		}
		return m, nil
	}

	mc := make(chan *intcode.Machine)
	go func() {
		started := false
		reload := time.After(time.Millisecond)
		for {
			select {
			case <-reload:
				log.Info().Str("program", filepath.Base(name)).Msg("load")
				m, err := load()
				if err != nil {
					log.Error().Err(err).Msg("load")
					break
				}
				if !started {
					log.Info().Msg("start")
					mc <- m
					started = true
				} else {
					runner.Reset(m)
				}
			case ev := <-watcher.Event:
				if (ev.Name == name || ev.Name == name+".sym") && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Error().Err(err).Msg("watcher")
			case <-ctx.Done():
				return
			}
		}
	}()

	var m *intcode.Machine
	select {
	case m = <-mc:
	case <-ctx.Done():
		return nil
	}
	if err := runner.Run(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
