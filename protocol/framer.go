package protocol

import (
	"bytes"
)

// Framer turns arbitrary socket reads into blocks of whole lines.
//
// A read can stop in the middle of a line. Feed keeps the unterminated tail
// and prepends it to the next read so no consumer ever sees half a line.
type Framer struct {
	pending []byte

	// MaxPending bounds the unterminated tail. When exceeded the tail is
	// flushed as a block of its own. Zero means DefaultMaxPending.
	MaxPending int
}

// DefaultMaxPending is generous, chat lines are short.
const DefaultMaxPending = 64 * 1024

// Feed appends data and returns every complete line received so far as a
// single CRLF joined block. ok is false when no line is complete yet.
func (f *Framer) Feed(data []byte) (block string, ok bool) {
	f.pending = append(f.pending, data...)

	end := bytes.LastIndexByte(f.pending, '\n')
	if end < 0 {
		limit := f.MaxPending
		if limit == 0 {
			limit = DefaultMaxPending
		}

		if len(f.pending) > limit {
			block = string(RemoveTrailingCR(f.pending))
			f.pending = f.pending[:0]
			return block, true
		}

		return "", false
	}

	complete := f.pending[:end+1]
	block = normalize(complete)

	rest := f.pending[end+1:]
	f.pending = append(make([]byte, 0, len(rest)), rest...)

	return block, true
}

// Flush returns whatever unterminated tail is left, e.g. on EOF.
func (f *Framer) Flush() (string, bool) {
	if len(f.pending) == 0 {
		return "", false
	}

	block := string(RemoveTrailingCR(f.pending))
	f.pending = f.pending[:0]

	return block, true
}

// normalize rewrites bare LF terminators as CRLF and drops the final
// terminator, so the result splits cleanly with SplitBlock.
func normalize(data []byte) string {
	lines := bytes.Split(data, []byte{'\n'})
	out := make([][]byte, 0, len(lines))

	for _, line := range lines {
		if len(line) == 0 {
			continue
		}

		out = append(out, RemoveTrailingCR(line))
	}

	return string(bytes.Join(out, []byte(Terminal)))
}

// RemoveTrailingCR strips an optional trailing '\r'.
func RemoveTrailingCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}

	return data
}
