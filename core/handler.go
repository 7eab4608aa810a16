package core

import (
	"context"
	"sync/atomic"
	"time"

	"uniled/protocol"
)

// PollInterval is how long Run yields between polls
const PollInterval = 10 * time.Microsecond

// Transport is the byte-oriented serial link. TinyGo's machine.Serial
// satisfies it directly. Implementations that also provide Flush() error are
// flushed after every response.
type Transport interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

type flusher interface {
	Flush() error
}

// Stats counts the lines handled so far
type Stats struct {
	Accepted    uint32
	Rejected    uint32
	Overflows   uint32
	ReadErrors  uint32
	WriteErrors uint32
}

// counters may be read from another goroutine while the loop runs
type counters struct {
	accepted    atomic.Uint32
	rejected    atomic.Uint32
	overflows   atomic.Uint32
	readErrors  atomic.Uint32
	writeErrors atomic.Uint32
}

// Handler ties a transport to one LED backend. Each Poll handles at most one
// command line and then advances the running animation.
type Handler struct {
	transport Transport
	led       Backend
	debug     DebugWriter

	lines    protocol.LineAssembler
	out      *protocol.ScratchOutput
	cmdText  []byte
	stats    counters
	interval time.Duration
}

// NewHandler creates a handler reading commands from t and driving led.
// led must already be initialized.
func NewHandler(t Transport, led Backend) *Handler {
	return &Handler{
		transport: t,
		led:       led,
		debug:     nopDebug,
		out:       protocol.NewScratchOutput(),
		cmdText:   make([]byte, 0, protocol.LineBufferSize),
		interval:  PollInterval,
	}
}

// SetPollInterval changes how long Run yields between polls
func (h *Handler) SetPollInterval(d time.Duration) {
	if d > 0 {
		h.interval = d
	}
}

// SetDebugWriter routes diagnostics to w
func (h *Handler) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = nopDebug
	}
	h.debug = w
}

// Poll runs one loop iteration
func (h *Handler) Poll() {
	line, status := h.readLine()
	switch status {
	case protocol.FeedLine:
		h.process(line)
	case protocol.FeedOverflow:
		h.stats.overflows.Add(1)
		h.debug(protocol.ErrBufferOverflow.Error())
		h.out.Reset()
		protocol.EncodeOverflow(h.out)
		h.send()
	}

	h.led.Update()
}

// Run polls until ctx is cancelled
func (h *Handler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		h.Poll()

		// Yield to other goroutines
		time.Sleep(h.interval)
	}
}

// Reset drops any partially received line
func (h *Handler) Reset() {
	h.lines.Reset()
	h.out.Reset()
}

// Stats returns a snapshot of the counters. It is safe to call while Run
// is active.
func (h *Handler) Stats() Stats {
	return Stats{
		Accepted:    h.stats.accepted.Load(),
		Rejected:    h.stats.rejected.Load(),
		Overflows:   h.stats.overflows.Load(),
		ReadErrors:  h.stats.readErrors.Load(),
		WriteErrors: h.stats.writeErrors.Load(),
	}
}

// Backend returns the LED backend the handler drives
func (h *Handler) Backend() Backend {
	return h.led
}

// readLine feeds buffered bytes to the assembler until a line completes or
// overflows. Bytes after that stay in the transport for the next Poll.
func (h *Handler) readLine() (string, protocol.FeedStatus) {
	for h.transport.Buffered() > 0 {
		b, err := h.transport.ReadByte()
		if err != nil {
			h.stats.readErrors.Add(1)
			h.debug("handler: read failed: " + err.Error())
			break
		}
		line, status := h.lines.Feed(b)
		if status != protocol.FeedPending {
			return line, status
		}
	}
	return "", protocol.FeedPending
}

func (h *Handler) process(line string) {
	h.out.Reset()

	cmd, err := ParseCommand(line)
	if err != nil {
		h.stats.rejected.Add(1)
		reason := ReasonUnknownCommand
		if rej, ok := err.(*RejectError); ok {
			reason = rej.Reason
		}
		h.debug("handler: " + err.Error())
		protocol.EncodeReject(h.out, line, reason)
		h.send()
		return
	}

	cmd.Apply(h.led)
	h.stats.accepted.Add(1)
	h.cmdText = cmd.AppendText(h.cmdText[:0])
	protocol.EncodeAccepted(h.out, h.cmdText)
	h.send()
}

// send writes the scratch buffer, handling partial writes
func (h *Handler) send() {
	result := h.out.Result()
	written := 0
	for written < len(result) {
		n, err := h.transport.Write(result[written:])
		if err != nil || n == 0 {
			h.stats.writeErrors.Add(1)
			if err != nil {
				h.debug("handler: write failed: " + err.Error())
			}
			break
		}
		written += n
	}
	h.out.Reset()

	if f, ok := h.transport.(flusher); ok {
		if err := f.Flush(); err != nil {
			h.stats.writeErrors.Add(1)
		}
	}
}
