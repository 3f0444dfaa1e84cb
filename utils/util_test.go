package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/odrmap/utils"
)

type item int32

func (i item) ID() int32 { return int32(i) }

func TestInsertSorted(t *testing.T) {
	var data []item
	assert.Equal(t, int32(1), utils.NextID(data))
	for _, v := range []item{5, 1, 3, 7, 2} {
		data = utils.InsertSorted(data, v)
	}
	assert.Equal(t, []item{1, 2, 3, 5, 7}, data)
	assert.Equal(t, int32(8), utils.NextID(data))
}

func TestFind(t *testing.T) {
	data := []item{1, 2, 3}
	m := map[int32]item{1: 1, 2: 2, 3: 3}
	all, failed := utils.Find(m, data, nil)
	assert.Equal(t, data, all)
	assert.Nil(t, failed)
	ok, failed := utils.Find(m, data, []int32{3, 9})
	assert.Equal(t, []item{3}, ok)
	assert.Equal(t, []int32{9}, failed)
}
