package device

import (
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Tile is the content of one screen cell.
type Tile byte

const (
	Empty Tile = iota
	Wall
	Block
	Paddle
	Ball
)

var tileRunes = [...]byte{' ', '#', '=', '-', 'o'}

func (t Tile) String() string {
	if int(t) < len(tileRunes) {
		return string(tileRunes[t])
	}
	return "Tile(" + strconv.Itoa(int(t)) + ")"
}

// MaxCoord is the largest x or y a tile may be drawn at.
const MaxCoord = 4095

// Screen is an Output that draws tiles. Values are consumed in triples
// x, y, id: the triple -1, 0, n sets the score to n, and any other
// triple draws tile id at x, y.
type Screen struct {
	mu      sync.Mutex
	tiles   map[image.Point]Tile
	size    image.Point // one past the largest x and y drawn
	score   int64
	pending []int64
	ball    image.Point
	paddle  image.Point
	ops     int // total count of draw operations
}

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{tiles: make(map[image.Point]Tile)}
}

func (s *Screen) WriteValue(v int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, v)
	if len(s.pending) < 3 {
		return nil
	}
	x, y, id := s.pending[0], s.pending[1], s.pending[2]
	s.pending = s.pending[:0]
	if x == -1 && y == 0 {
		s.score = id
		s.ops++
		return nil
	}
	if x < 0 || y < 0 || x > MaxCoord || y > MaxCoord {
		return errors.Errorf("tile %d drawn at %d,%d", id, x, y)
	}
	if id < 0 || id > int64(Ball) {
		return errors.Errorf("invalid tile %d at %d,%d", id, x, y)
	}
	p, t := image.Pt(int(x), int(y)), Tile(id)
	if t == Empty {
		delete(s.tiles, p)
	} else {
		s.tiles[p] = t
	}
	switch t {
	case Ball:
		s.ball = p
	case Paddle:
		s.paddle = p
	}
	if p.X >= s.size.X {
		s.size.X = p.X + 1
	}
	if p.Y >= s.size.Y {
		s.size.Y = p.Y + 1
	}
	s.ops++
	return nil
}

func (s *Screen) Score() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Count returns the number of cells showing t. It returns 0 for Empty.
func (s *Screen) Count(t Tile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.tiles {
		if u == t {
			n++
		}
	}
	return n
}

// Ball and Paddle return the position last drawn with that tile.
func (s *Screen) Ball() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ball
}

func (s *Screen) Paddle() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paddle
}

// Ops returns the number of draw operations performed so far, so that a
// display can tell whether it needs to redraw.
func (s *Screen) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

// String renders the screen as text, one line per row, followed by the
// score.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for y := 0; y < s.size.Y; y++ {
		row := make([]byte, s.size.X)
		for x := range row {
			row[x] = tileRunes[s.tiles[image.Pt(x, y)]]
		}
		b.Write([]byte(strings.TrimRight(string(row), " ")))
		b.WriteByte('\n')
	}
	b.WriteString("score: ")
	b.WriteString(strconv.FormatInt(s.score, 10))
	b.WriteByte('\n')
	return b.String()
}

const (
	TileSize    = 8
	scoreHeight = 16
)

var palette = [...]color.RGBA{
	Empty:  {0x10, 0x10, 0x18, 0xff},
	Wall:   {0x70, 0x70, 0x80, 0xff},
	Block:  {0x40, 0xa0, 0xe0, 0xff},
	Paddle: {0xf0, 0xf0, 0xf0, 0xff},
	Ball:   {0xf0, 0xc0, 0x30, 0xff},
}

// 1-bit 8x8 sprites, one byte per row, most significant bit leftmost.
var sprites = [...][TileSize]byte{
	Wall:   {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	Block:  {0x00, 0x7e, 0x7e, 0x7e, 0x7e, 0x7e, 0x7e, 0x00},
	Paddle: {0x00, 0x00, 0x00, 0xff, 0xff, 0x00, 0x00, 0x00},
	Ball:   {0x00, 0x3c, 0x7e, 0x7e, 0x7e, 0x7e, 0x3c, 0x00},
}

// Image renders the screen at TileSize pixels per cell, with the score
// drawn beneath the tiles.
func (s *Screen) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.size.X*TileSize, s.size.Y*TileSize
	if w < 12*TileSize {
		w = 12 * TileSize
	}
	m := newImage(w, h+scoreHeight, palette[Empty])
	for p, t := range s.tiles {
		drawSprite(m, p.Mul(TileSize), sprites[t], palette[t])
	}
	d := font.Drawer{
		Dst:  m,
		Src:  image.NewUniform(palette[Paddle]),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, h+scoreHeight-3),
	}
	d.DrawString("SCORE " + strconv.FormatInt(s.score, 10))
	return m
}

func newImage(w, h int, c color.RGBA) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for b := m.Pix; len(b) >= 4; b = b[4:] {
		b[0] = c.R
		b[1] = c.G
		b[2] = c.B
		b[3] = c.A
	}
	return m
}

func drawSprite(m *image.RGBA, at image.Point, sprite [TileSize]byte, c color.RGBA) {
	for y, row := range sprite {
		for x := 0; x < TileSize; x++ {
			if row&(0x80>>x) != 0 {
				m.SetRGBA(at.X+x, at.Y+y, c)
			}
		}
	}
}
