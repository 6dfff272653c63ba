package amp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/intcode/intcode"
)

const (
	series1 = "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0"
	series2 = "3,23,3,24,1002,24,10,24,1002,23,-1,23,101,5,23,23,1,24,23,23,4,23,99,0,0"
	series3 = "3,31,3,32,1002,32,10,32,1001,31,-2,31,1007,31,0,33,1002,33,7,33,1,33,31,31,1,32,31,31,4,31,99,0,0,0"

	loop1 = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"
	loop2 = "3,52,1001,52,-5,52,3,53,1,52,56,54,1007,54,5,55,1005,55,26,1001,54,-5,54,1105,1,12,1,53,54,53,1008,54,0,55,1001,55,1,55,2,53,55,53,4,53,1001,56,-1,56,1005,56,6,99,0,0,0,0,10"
)

func parse(t *testing.T, s string) []int64 {
	t.Helper()
	p, err := intcode.Parse(s)
	require.NoError(t, err)
	return p
}

func TestChain(t *testing.T) {
	for _, c := range []struct {
		prog     string
		phases   []int64
		feedback bool
		want     int64
	}{
		{series1, []int64{4, 3, 2, 1, 0}, false, 43210},
		{series2, []int64{0, 1, 2, 3, 4}, false, 54321},
		{series3, []int64{1, 0, 4, 3, 2}, false, 65210},
		{loop1, []int64{9, 8, 7, 6, 5}, true, 139629729},
		{loop2, []int64{9, 7, 8, 5, 6}, true, 18216},
	} {
		got, err := Chain(parse(t, c.prog), c.phases, c.feedback)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "phases %v", c.phases)
	}
}

func TestMaxSignal(t *testing.T) {
	for _, c := range []struct {
		prog     string
		phases   []int64
		feedback bool
		want     int64
		order    []int64
	}{
		{series1, []int64{0, 1, 2, 3, 4}, false, 43210, []int64{4, 3, 2, 1, 0}},
		{series2, []int64{0, 1, 2, 3, 4}, false, 54321, []int64{0, 1, 2, 3, 4}},
		{series3, []int64{0, 1, 2, 3, 4}, false, 65210, []int64{1, 0, 4, 3, 2}},
		{loop1, []int64{5, 6, 7, 8, 9}, true, 139629729, []int64{9, 8, 7, 6, 5}},
		{loop2, []int64{5, 6, 7, 8, 9}, true, 18216, []int64{9, 7, 8, 5, 6}},
	} {
		got, order, err := MaxSignal(parse(t, c.prog), c.phases, c.feedback)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.order, order)
	}
}

func TestChainErrors(t *testing.T) {
	_, err := Chain(parse(t, "99"), []int64{0}, false)
	assert.EqualError(t, err, "amplifier 0 halted without output")

	_, err = Chain(parse(t, "3,0,3,0,3,0,99"), []int64{0}, false)
	assert.ErrorIs(t, err, intcode.ExpectedInput)

	_, err = Chain(parse(t, "99"), nil, false)
	assert.Error(t, err)

	_, _, err = MaxSignal(parse(t, "1,0,0"), []int64{0, 1}, false)
	assert.ErrorIs(t, err, intcode.Missing)
}

func TestPermute(t *testing.T) {
	seen := map[[3]int64]bool{}
	err := permute([]int64{1, 2, 3}, 0, func(p []int64) error {
		seen[[3]int64{p[0], p[1], p[2]}] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 6)
}
