// Package sim runs the firmware command loop on the host. Commands come from
// an io.Reader, responses go to an io.Writer and the LED is drawn by a
// Renderer.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"uniled/boards"
	"uniled/core"
	"uniled/host/logging"
	"uniled/protocol"
)

// PollInterval is how often the simulated loop runs
const PollInterval = time.Millisecond

// inputSize matches the USB buffer on the boards
const inputSize = 256

// NewBackend builds the backend a board profile describes, driving r
func NewBackend(p boards.Profile, r *Renderer, clock core.Clock) (core.Backend, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.IsRGB() {
		return core.NewRGB(r, clock, p.Brightness), nil
	}
	return core.NewDigital(r, clock), nil
}

// WallClock returns a millisecond clock that starts at zero now
func WallClock() core.Clock {
	start := time.Now()
	return core.ClockFunc(func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	})
}

// Options configures a Simulator
type Options struct {
	Profile  boards.Profile
	Output   io.Writer // responses
	Renderer *Renderer
	Clock    core.Clock // defaults to WallClock

	// Linger keeps the loop running after the input is exhausted so
	// animations stay visible.
	Linger time.Duration
}

// Simulator is one simulated board
type Simulator struct {
	opts    Options
	led     core.Backend
	handler *core.Handler
	input   *protocol.SharedFifo
	logger  *slog.Logger
	eof     atomic.Bool
}

// New builds and initializes a simulated board
func New(opts Options) (*Simulator, error) {
	if opts.Output == nil || opts.Renderer == nil {
		return nil, errors.New("sim: output and renderer are required")
	}
	if opts.Clock == nil {
		opts.Clock = WallClock()
	}

	led, err := NewBackend(opts.Profile, opts.Renderer, opts.Clock)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("sim").With("board", opts.Profile.Name)
	debug := func(msg string) { logger.Debug(msg) }

	switch b := led.(type) {
	case *core.Digital:
		b.SetDebugWriter(debug)
	case *core.RGB:
		b.SetDebugWriter(debug)
	}
	if err := led.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", led.Type(), err)
	}

	input := protocol.NewSharedFifo(inputSize)
	handler := core.NewHandler(protocol.SplitTransport{In: input, Out: opts.Output}, led)
	handler.SetDebugWriter(debug)
	handler.SetPollInterval(PollInterval)

	return &Simulator{
		opts:    opts,
		led:     led,
		handler: handler,
		input:   input,
		logger:  logger,
	}, nil
}

// Handler returns the command loop, for metrics
func (s *Simulator) Handler() *core.Handler {
	return s.handler
}

// Backend returns the simulated LED backend
func (s *Simulator) Backend() core.Backend {
	return s.led
}

// Run feeds in to the command loop until in is exhausted and every byte has
// been handled (plus Linger), or until ctx is cancelled. A read blocked on
// in is abandoned when ctx is cancelled.
func (s *Simulator) Run(parent context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.logger.Info("Simulator started", "led", s.led.Type())

	go s.feed(ctx, in)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.stopWhenDrained(ctx, cancel)
	}()

	err := s.handler.Run(ctx)
	cancel()
	wg.Wait()

	st := s.handler.Stats()
	s.logger.Info("Simulator stopped", "accepted", st.Accepted, "rejected", st.Rejected, "overflows", st.Overflows)

	if parent.Err() == nil {
		// Stopped because the input ran out
		return nil
	}
	return err
}

// feed copies in to the input FIFO, waiting whenever it is full
func (s *Simulator) feed(ctx context.Context, in io.Reader) {
	defer s.eof.Store(true)

	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		data := buf[:n]
		for len(data) > 0 {
			written := s.input.Write(data)
			data = data[written:]
			if len(data) == 0 {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(PollInterval):
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("Input read failed", "error", err)
			}
			return
		}
	}
}

// stopWhenDrained cancels the loop once input has ended and been consumed
func (s *Simulator) stopWhenDrained(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(5 * PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.eof.Load() && s.input.Buffered() == 0 {
			break
		}
	}

	if s.opts.Linger > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.Linger):
		}
	}
	cancel()
}
