package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Console connects a machine to a text stream. In numeric mode each value
// is a decimal integer; input values are separated by whitespace or
// commas, and each output value is written on its own line. In ASCII
// mode input is read byte by byte, and output values in the range 0-127
// are written as bytes while anything larger is written as a number.
type Console struct {
	ASCII bool

	r io.Reader
	w io.Writer

	once  sync.Once
	input chan consoleValue

	closeOnce sync.Once
	done      chan struct{}
}

type consoleValue struct {
	v   int64
	err error
}

// NewConsole returns a Console that reads from r and writes to w.
func NewConsole(r io.Reader, w io.Writer, ascii bool) *Console {
	return &Console{ASCII: ascii, r: r, w: w, done: make(chan struct{})}
}

// Close stops the console's input reader once it has a value to deliver.
// A reader blocked in a Read of r stays blocked until that Read returns.
// ReadValue fails with os.ErrClosed after Close.
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// ReadValue returns the next input value. It returns io.EOF once the
// reader is exhausted.
func (c *Console) ReadValue(ctx context.Context) (int64, error) {
	c.once.Do(func() {
		c.input = make(chan consoleValue)
		go c.readInput()
	})
	select {
	case <-c.done:
		return 0, os.ErrClosed
	default:
	}
	select {
	case in, ok := <-c.input:
		if !ok {
			return 0, io.EOF
		}
		return in.v, in.err
	case <-c.done:
		return 0, os.ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// send delivers v to ReadValue, reporting false if the console was closed.
func (c *Console) send(v consoleValue) bool {
	select {
	case c.input <- v:
		return true
	case <-c.done:
		return false
	}
}

func (c *Console) readInput() {
	defer close(c.input)
	br := bufio.NewReader(c.r)
	if c.ASCII {
		for {
			b, err := br.ReadByte()
			if err != nil {
				if err != io.EOF {
					c.send(consoleValue{err: err})
				}
				return
			}
			if !c.send(consoleValue{v: int64(b)}) {
				return
			}
		}
	}
	s := bufio.NewScanner(br)
	for s.Scan() {
		fields := strings.FieldsFunc(s.Text(), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				err = errors.Errorf("invalid input value %q", f)
			}
			if !c.send(consoleValue{v, err}) {
				return
			}
		}
	}
	if err := s.Err(); err != nil {
		c.send(consoleValue{err: err})
	}
}

// WriteValue writes v to the console.
func (c *Console) WriteValue(v int64) error {
	if c.ASCII && v >= 0 && v < 128 {
		_, err := c.w.Write([]byte{byte(v)})
		return err
	}
	_, err := fmt.Fprintln(c.w, v)
	return err
}

// Feed is an Input that reads values sent on a channel. A closed Feed
// reports io.EOF.
type Feed chan int64

func (f Feed) ReadValue(ctx context.Context) (int64, error) {
	select {
	case v, ok := <-f:
		if !ok {
			return 0, io.EOF
		}
		return v, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Recorder is an Output that keeps every value written to it.
type Recorder struct {
	mu     sync.Mutex
	values []int64
}

func (r *Recorder) WriteValue(v int64) error {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	return nil
}

// Values returns a copy of the values written so far.
func (r *Recorder) Values() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.values...)
}
