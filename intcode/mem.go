package intcode

import "math"

// maxDense is how far past the end of the dense store a write may land
// before it is kept in the sparse map instead.
const maxDense = 1 << 16

// Memory implements Intcode memory: a logically infinite tape of int64
// cells addressed from zero. Cells that were never written read as zero.
//
// Reading or writing a negative address panics with OutOfBounds.
type Memory struct {
	cells []int64
	far   map[int64]int64
	n     int64 // one past the highest written address
}

// NewMemory returns a Memory holding a copy of image at address zero.
func NewMemory(image []int64) Memory {
	cells := make([]int64, len(image))
	copy(cells, image)
	return Memory{cells: cells, n: int64(len(image))}
}

// Len returns one past the highest address ever written, counting the
// initial image. It saturates at math.MaxInt64.
func (m *Memory) Len() int64 { return m.n }

// Read returns the value at addr.
func (m *Memory) Read(addr int64) int64 {
	if addr < 0 {
		panic(OutOfBounds)
	}
	if addr < int64(len(m.cells)) {
		return m.cells[addr]
	}
	return m.far[addr]
}

// Write sets the value at addr, growing the memory as needed.
func (m *Memory) Write(addr, v int64) {
	if addr < 0 {
		panic(OutOfBounds)
	}
	if addr >= m.n {
		m.n = addr + 1
		if addr == math.MaxInt64 {
			m.n = addr
		}
	}
	switch n := int64(len(m.cells)); {
	case addr < n:
		m.cells[addr] = v
		return
	case addr < n+maxDense:
		m.grow(addr + 1)
		m.cells[addr] = v
		return
	}
	if m.far == nil {
		m.far = make(map[int64]int64)
	}
	m.far[addr] = v
}

// grow extends the dense store to n cells, pulling in any cells that were
// held in the sparse map.
func (m *Memory) grow(n int64) {
	old := int64(len(m.cells))
	if n <= int64(cap(m.cells)) {
		m.cells = m.cells[:n]
	} else {
		c := 2 * int64(cap(m.cells))
		if c < n {
			c = n
		}
		cells := make([]int64, n, c)
		copy(cells, m.cells)
		m.cells = cells
	}
	for a := old; a < n; a++ {
		m.cells[a] = 0
		if v, ok := m.far[a]; ok {
			m.cells[a] = v
			delete(m.far, a)
		}
	}
}

// Window returns a copy of the n cells starting at start.
func (m *Memory) Window(start, n int64) []int64 {
	if start < 0 {
		panic(OutOfBounds)
	}
	w := make([]int64, n)
	for i := range w {
		w[i] = m.Read(start + int64(i))
	}
	return w
}

// Clone returns an independent copy of m.
func (m *Memory) Clone() Memory {
	c := Memory{
		cells: make([]int64, len(m.cells)),
		n:     m.n,
	}
	copy(c.cells, m.cells)
	if len(m.far) > 0 {
		c.far = make(map[int64]int64, len(m.far))
		for a, v := range m.far {
			c.far[a] = v
		}
	}
	return c
}
