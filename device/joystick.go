package device

import (
	"context"
	"sync"
	"time"
)

// Joystick is an Input reporting a tilt of -1 (left), 0 (neutral) or 1
// (right). The tilt is set by Set, or, when Auto is non-nil, follows the
// ball on the Auto screen.
type Joystick struct {
	Auto  *Screen
	Delay time.Duration // wait before each read, to pace a displayed game

	mu    sync.Mutex
	tilt  int64
	reads int
}

// Set sets the tilt, clamped to the range -1 to 1.
func (j *Joystick) Set(tilt int64) {
	switch {
	case tilt < 0:
		tilt = -1
	case tilt > 0:
		tilt = 1
	}
	j.mu.Lock()
	j.tilt = tilt
	j.mu.Unlock()
}

func (j *Joystick) ReadValue(ctx context.Context) (int64, error) {
	if j.Delay > 0 {
		t := time.NewTimer(j.Delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return 0, ctx.Err()
		}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reads++
	if j.Auto != nil {
		b, p := j.Auto.Ball(), j.Auto.Paddle()
		switch {
		case b.X < p.X:
			return -1, nil
		case b.X > p.X:
			return 1, nil
		}
		return 0, nil
	}
	return j.tilt, nil
}

// Reads returns the number of values read from the joystick.
func (j *Joystick) Reads() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.reads
}
