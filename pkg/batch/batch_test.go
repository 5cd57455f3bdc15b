package batch

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(groups iter.Seq[iter.Seq[int]]) [][]int {
	var out [][]int
	for group := range groups {
		var g []int
		for v := range group {
			g = append(g, v)
		}
		out = append(out, g)
	}
	return out
}

func TestSeqGroups(t *testing.T) {
	src := slices.Values([]int{1, 2, 3, 4, 5})

	got := collect(Seq(src, 2))

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
}

func TestSeqExactMultiple(t *testing.T) {
	src := slices.Values([]int{1, 2, 3, 4})

	got := collect(Seq(src, 2))

	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, got)
}

func TestSeqEmptySource(t *testing.T) {
	src := slices.Values([]int(nil))

	got := collect(Seq(src, 3))

	assert.Empty(t, got)
}

func TestSeqGroupLargerThanSource(t *testing.T) {
	src := slices.Values([]int{1, 2})

	got := collect(Seq(src, 10))

	assert.Equal(t, [][]int{{1, 2}}, got)
}

func TestSeqSharedCursor(t *testing.T) {
	src := slices.Values([]int{1, 2, 3, 4, 5})

	var got [][]int
	for group := range Seq(src, 2) {
		var g []int
		for v := range group {
			g = append(g, v)
			// Abandon each group after one element. Unconsumed elements
			// stay on the shared cursor and open the next group.
			break
		}
		got = append(got, g)
	}

	assert.Equal(t, [][]int{{1}, {2}, {3}, {4}, {5}}, got)
}

func TestSeqPanicsOnNonPositiveSize(t *testing.T) {
	assert.Panics(t, func() {
		Seq(slices.Values([]int{1}), 0)
	})
}

func TestFromChan(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	var got []int
	for v := range FromChan(ch) {
		got = append(got, v)
	}

	require.Equal(t, []int{1, 2, 3}, got)
}

func TestFromChanThroughSeq(t *testing.T) {
	ch := make(chan string, 4)
	for _, s := range []string{"a", "b", "c", "d"} {
		ch <- s
	}
	close(ch)

	var got [][]string
	for group := range Seq(FromChan(ch), 3) {
		var g []string
		for v := range group {
			g = append(g, v)
		}
		got = append(got, g)
	}

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}}, got)
}
