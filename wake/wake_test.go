package wake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingLock struct {
	acquires int
	releases int
}

func (c *countingLock) Acquire() error { c.acquires++; return nil }
func (c *countingLock) Release() error { c.releases++; return nil }

func TestCountedAcquiresOnceForManyHolders(t *testing.T) {
	inner := &countingLock{}
	l := NewCounted(inner)

	l.Acquire()
	l.Acquire()
	assert.Equal(t, 1, inner.acquires)

	l.Release()
	assert.Equal(t, 0, inner.releases)
	l.Release()
	assert.Equal(t, 1, inner.releases)
}

func TestCountedReleaseWithoutAcquireIsSafe(t *testing.T) {
	inner := &countingLock{}
	l := NewCounted(inner)

	assert.NoError(t, l.Release())
	assert.Equal(t, 0, inner.releases)
}
