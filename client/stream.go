package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FrameType discriminates the records of a streamed reply.
type FrameType string

const (
	FrameChunk    FrameType = "chunk"
	FrameComplete FrameType = "complete"
	FrameError    FrameType = "error"
)

// Frame is one decoded "data:" record of a streamed reply.
type Frame struct {
	Type      FrameType    `json:"type"`
	Content   string       `json:"content,omitempty"`
	AIMessage *MessageInfo `json:"ai_message,omitempty"`
}

// ParseWarning describes a data line that was skipped because it could not
// be decoded. The reader keeps going after one.
type ParseWarning struct {
	Line string
	Err  error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("[stream] skip frame: %v", w.Err)
}

const (
	dataPrefix    = "data:"
	maxFrameBytes = 1024 * 1024 // 1 MB
)

// FrameReader reads frames off a streamed reply body, line by line.
// Only lines that start with "data:" carry payload; blank lines, SSE
// comments and "event:" lines are ignored.
type FrameReader struct {
	scanner *bufio.Scanner
	started bool

	// OnFirstLine is called once, when the first line arrives.
	OnFirstLine func()
	// OnWarning is called for each skipped data line.
	OnWarning func(ParseWarning)
}

func NewFrameReader(r io.Reader) *FrameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)
	return &FrameReader{scanner: scanner}
}

// Next returns the next well-formed frame. It returns io.EOF when the body
// ends cleanly, or the underlying read error.
func (r *FrameReader) Next() (Frame, error) {
	for r.scanner.Scan() {
		if !r.started {
			r.started = true
			if r.OnFirstLine != nil {
				r.OnFirstLine()
			}
		}
		line := r.scanner.Text()
		frame, isData, err := ParseFrame(line)
		if !isData {
			continue
		}
		if err != nil {
			if r.OnWarning != nil {
				r.OnWarning(ParseWarning{Line: line, Err: err})
			}
			continue
		}
		return frame, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// ParseFrame decodes a single line. isData reports whether the line carried
// the data marker at all; err is set when it did but the payload was not a
// known frame.
func ParseFrame(line string) (frame Frame, isData bool, err error) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return Frame{}, false, nil
	}
	payload := strings.TrimPrefix(strings.TrimPrefix(line, dataPrefix), " ")
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return Frame{}, true, fmt.Errorf("decode: %w", err)
	}
	switch frame.Type {
	case FrameChunk, FrameComplete, FrameError:
		return frame, true, nil
	default:
		return Frame{}, true, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}
