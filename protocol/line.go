package protocol

import "strings"

// FeedStatus is the result of feeding one byte to a LineAssembler
type FeedStatus uint8

const (
	FeedPending  FeedStatus = iota // no complete line yet
	FeedLine                       // a non-empty line completed
	FeedOverflow                   // the line exceeded MaxLineLength and was discarded
)

func (s FeedStatus) String() string {
	switch s {
	case FeedPending:
		return "pending"
	case FeedLine:
		return "line"
	case FeedOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// LineAssembler accumulates bytes into newline-terminated lines.
//
// Only '\n' terminates a line; '\r' is kept and trimmed with the rest of
// the surrounding whitespace. After an overflow the remainder of that
// physical line is dropped up to the next '\n'.
type LineAssembler struct {
	buf        [LineBufferSize]byte
	n          int
	discarding bool
}

// Feed appends b. It returns the trimmed line with FeedLine when b completes
// a non-empty line, and FeedOverflow once when the line grows too long.
func (a *LineAssembler) Feed(b byte) (string, FeedStatus) {
	if b == LineTerminator {
		if a.discarding {
			a.discarding = false
			return "", FeedPending
		}
		line := strings.TrimSpace(string(a.buf[:a.n]))
		a.n = 0
		if line == "" {
			return "", FeedPending
		}
		return line, FeedLine
	}

	if a.discarding {
		return "", FeedPending
	}
	if a.n >= MaxLineLength {
		a.n = 0
		a.discarding = true
		return "", FeedOverflow
	}
	a.buf[a.n] = b
	a.n++
	return "", FeedPending
}

// Len returns the number of buffered bytes
func (a *LineAssembler) Len() int {
	return a.n
}

// Reset clears the buffer and any pending discard
func (a *LineAssembler) Reset() {
	a.n = 0
	a.discarding = false
}
