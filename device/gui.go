package device

import (
	"image"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// GUI displays a Screen in a window and drives a Joystick from the arrow
// keys. Escape or q closes the window.
type GUI struct {
	Title string
	Log   zerolog.Logger

	scr *Screen
	joy *Joystick

	size image.Point
	buf  screen.Buffer
	tex  screen.Texture
	ops  int // updated to match scr.Ops() after copying into buf
}

// NewGUI returns a GUI showing scr. The joystick may be nil.
func NewGUI(scr *Screen, joy *Joystick) *GUI {
	return &GUI{Title: "intcode", Log: zerolog.Nop(), scr: scr, joy: joy, ops: -1}
}

// Run shows the window until it is closed or exit is closed. It must be
// called from the main goroutine.
func (g *GUI) Run(exit <-chan struct{}) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{Title: g.Title})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				}
			}
		}()

		defer g.release()

		var (
			sz    size.Event
			dirty bool
		)
		for {
			switch e := w.NextEvent().(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape || e.Rune == 'q' {
					return
				}
				g.keyEvent(e)

			case paint.Event:
				dirty = true

			case update:
				changed, err := g.update(s)
				if err != nil {
					runErr = err
					return
				}
				if (changed || dirty) && g.tex != nil {
					g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					dirty = false
				}

			case error:
				g.Log.Error().Err(e).Msg("gui")
			}
		}
	})
	return runErr
}

func (g *GUI) keyEvent(e key.Event) {
	if g.joy == nil || e.Direction == key.DirNone {
		return
	}
	var tilt int64
	switch e.Code {
	case key.CodeLeftArrow:
		tilt = -1
	case key.CodeRightArrow:
		tilt = 1
	default:
		return
	}
	if e.Direction == key.DirRelease {
		tilt = 0
	}
	g.joy.Set(tilt)
}

// update copies the screen into the buffer if it has been drawn since the
// last update, reporting whether it did so.
func (g *GUI) update(s screen.Screen) (changed bool, err error) {
	o := g.scr.Ops()
	if o == g.ops {
		return false, nil
	}
	m := g.scr.Image()
	if sz := m.Bounds().Size(); g.tex == nil || g.size != sz {
		g.release()
		g.size = sz
		if g.buf, err = s.NewBuffer(sz); err != nil {
			return false, err
		}
		if g.tex, err = s.NewTexture(sz); err != nil {
			return false, err
		}
	}
	draw.Copy(g.buf.RGBA(), image.Point{}, m, m.Bounds(), draw.Src, nil)
	g.ops = o
	return true, nil
}

func (g *GUI) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
