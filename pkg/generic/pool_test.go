package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_GeneratesOnEmpty(t *testing.T) {
	calls := 0
	p := NewPool(func() *bytes.Buffer {
		calls++
		return new(bytes.Buffer)
	})
	b := p.Get()
	assert.NotNil(t, b)
	assert.Equal(t, 1, calls)
}

func TestHotPool_Prefills(t *testing.T) {
	calls := 0
	NewHotPool(func() []byte {
		calls++
		return make([]byte, 0, 16)
	}, 4)
	assert.Equal(t, 4, calls)
}

func TestHotPool_ServesWarmValuesFirst(t *testing.T) {
	calls := 0
	p := NewHotPool(func() *bytes.Buffer {
		calls++
		return new(bytes.Buffer)
	}, 1)
	require.Equal(t, 1, calls)

	b := p.Get()
	require.NotNil(t, b)
	p.Put(b)
	assert.LessOrEqual(t, calls, 2)
}
