package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransientStringReleaseOnce(t *testing.T) {
	s := NewTransientString("a red square")
	assert.Equal(t, "a red square", s.String())
	assert.False(t, s.Released())

	assert.True(t, s.Release())
	assert.True(t, s.Released())
	assert.Empty(t, s.String(), "reads after release yield the empty string")

	assert.False(t, s.Release(), "second release is absorbed")
}

func TestFreeStringNilSafe(t *testing.T) {
	assert.NotPanics(t, func() { FreeString(nil) })

	s := NewTransientString("err")
	FreeString(s)
	assert.True(t, s.Released())
	assert.NotPanics(t, func() { FreeString(s) })
}
