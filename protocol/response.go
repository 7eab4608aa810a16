package protocol

import (
	"errors"
	"strings"
)

// Response framing
const (
	AcceptedPrefix = "ACCEPTED,"
	RejectPrefix   = "REJECT,"
	OverflowToken  = "BUFFER_OVERFLOW"
	OverflowReason = "command too long"
	LineEnd        = "\r\n"
)

var (
	// ErrBufferOverflow is reported for a line longer than MaxLineLength
	ErrBufferOverflow = errors.New("buffer overflow: " + OverflowReason)

	// ErrMalformedResponse is returned by ParseResponse for lines that are
	// neither ACCEPTED nor REJECT.
	ErrMalformedResponse = errors.New("malformed response")
)

// EncodeAccepted writes ACCEPTED,<command>
func EncodeAccepted(out OutputBuffer, command []byte) {
	out.OutputString(AcceptedPrefix)
	out.Output(command)
	out.OutputString(LineEnd)
}

// EncodeReject writes REJECT,<line>,<reason>
func EncodeReject(out OutputBuffer, line, reason string) {
	out.OutputString(RejectPrefix)
	out.OutputString(line)
	out.OutputString(",")
	out.OutputString(reason)
	out.OutputString(LineEnd)
}

// EncodeOverflow writes REJECT,BUFFER_OVERFLOW,command too long
func EncodeOverflow(out OutputBuffer) {
	EncodeReject(out, OverflowToken, OverflowReason)
}

// Response is a decoded firmware response line
type Response struct {
	Accepted bool
	Overflow bool

	// Body is the echoed command: canonical when accepted, verbatim when
	// rejected.
	Body   string
	Reason string
}

// ParseResponse decodes one response line. Surrounding whitespace,
// including the CR LF terminator, is ignored.
func ParseResponse(line string) (Response, error) {
	line = strings.TrimSpace(line)

	if body, ok := strings.CutPrefix(line, AcceptedPrefix); ok {
		return Response{Accepted: true, Body: body}, nil
	}

	rest, ok := strings.CutPrefix(line, RejectPrefix)
	if !ok {
		return Response{}, ErrMalformedResponse
	}
	// The rejected line may itself contain commas; the reason never does.
	i := strings.LastIndexByte(rest, ',')
	if i < 0 {
		return Response{}, ErrMalformedResponse
	}
	resp := Response{Body: rest[:i], Reason: rest[i+1:]}
	resp.Overflow = resp.Body == OverflowToken && resp.Reason == OverflowReason
	return resp, nil
}

// String returns the response line without its terminator
func (r Response) String() string {
	if r.Accepted {
		return AcceptedPrefix + r.Body
	}
	return RejectPrefix + r.Body + "," + r.Reason
}

// Err returns nil for an accepted response, ErrBufferOverflow for an
// overflow and a *RejectedError otherwise.
func (r Response) Err() error {
	switch {
	case r.Accepted:
		return nil
	case r.Overflow:
		return ErrBufferOverflow
	default:
		return &RejectedError{Line: r.Body, Reason: r.Reason}
	}
}

// RejectedError is a REJECT response as seen by the host
type RejectedError struct {
	Line   string
	Reason string
}

func (e *RejectedError) Error() string {
	return "rejected " + e.Line + ": " + e.Reason
}
