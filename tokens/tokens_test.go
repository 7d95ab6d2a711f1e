package tokens

import (
	"errors"
	"testing"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("a"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 1, Estimate("chào"))
}

func TestCount_FallsBackWhenEncodingUnavailable(t *testing.T) {
	loads := 0
	c := NewWithLoader(func() (*tiktoken.Tiktoken, error) {
		loads++
		return nil, errors.New("offline")
	})

	n, exact := c.Count("Hello, world")
	assert.Equal(t, 3, n)
	assert.False(t, exact)

	c.Count("again")
	assert.Equal(t, 1, loads, "the loader runs once")
	assert.Error(t, c.Warm())
}

func TestCount_EmptyIsExactZero(t *testing.T) {
	c := NewWithLoader(func() (*tiktoken.Tiktoken, error) {
		t.Fatal("loader should not run for empty text")
		return nil, nil
	})
	n, exact := c.Count("")
	assert.Equal(t, 0, n)
	assert.True(t, exact)
}
