// Package tokens estimates the token count of assistant replies for the
// status bar.
package tokens

import (
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Encoding is the BPE used for counts.
const Encoding = "cl100k_base"

// Counter counts tokens with tiktoken once the encoding is loaded, and
// falls back to Estimate when it cannot be.
type Counter struct {
	once sync.Once
	load func() (*tiktoken.Tiktoken, error)
	enc  *tiktoken.Tiktoken
	err  error
}

func New() *Counter {
	return &Counter{load: func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(Encoding)
	}}
}

// NewWithLoader is New with a custom encoding loader.
func NewWithLoader(load func() (*tiktoken.Tiktoken, error)) *Counter {
	return &Counter{load: load}
}

// Warm loads the encoding. The first load may fetch the BPE file, so call it
// off the UI thread.
func (c *Counter) Warm() error {
	c.once.Do(func() {
		c.enc, c.err = c.load()
	})
	return c.err
}

// Count returns the token count of text and whether it is exact.
func (c *Counter) Count(text string) (int, bool) {
	if text == "" {
		return 0, true
	}
	if c.Warm() != nil || c.enc == nil {
		return Estimate(text), false
	}
	return len(c.enc.Encode(text, nil, nil)), true
}

// Estimate approximates a token count at four characters per token.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
