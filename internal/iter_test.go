package internal

import (
	"maps"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat(t *testing.T) {
	assert := assert.New(t)

	seq := Concat(slices.Values([]int{1, 2}), slices.Values([]int{}), slices.Values([]int{3}))
	assert.Equal([]int{1, 2, 3}, slices.Collect(seq))

	var first []int
	for val := range seq {
		first = append(first, val)
		if val == 2 {
			break
		}
	}
	assert.Equal([]int{1, 2}, first)
}

func TestConcat2(t *testing.T) {
	assert := assert.New(t)

	seq := Concat2(maps.All(map[string]int{"a": 1}), maps.All(map[string]int{"a": 2}))

	var vals []int
	for key, val := range seq {
		assert.Equal("a", key)
		vals = append(vals, val)
	}
	assert.Equal([]int{1, 2}, vals)

	// Later sequences override earlier ones when collected.
	assert.Equal(map[string]int{"a": 2}, maps.Collect(seq))
}

func TestMap(t *testing.T) {
	assert := assert.New(t)

	seq := Map(slices.Values([]int{1, 10}), strconv.Itoa)
	assert.Equal([]string{"1", "10"}, slices.Collect(seq))
}
