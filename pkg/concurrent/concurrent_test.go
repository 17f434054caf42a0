package concurrent

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEach_RunsEveryElement(t *testing.T) {
	var sum atomic.Int64
	err := Each([]int{1, 2, 3, 4}, func(v int) error {
		sum.Add(int64(v))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), sum.Load())
}

func TestEach_ReturnsErrorAfterAllRan(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int64
	err := Each([]int{1, 2, 3}, func(v int) error {
		ran.Add(1)
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), ran.Load())
}

func TestEach_Empty(t *testing.T) {
	assert.NoError(t, Each[int](nil, func(int) error { return errors.New("never") }))
}
