package core

import "bytes"

// fakePin records writes to a digital output
type fakePin struct {
	configured int
	level      bool
	writes     int
}

func (p *fakePin) Configure() error {
	p.configured++
	return nil
}

func (p *fakePin) Set(high bool) {
	p.level = high
	p.writes++
}

// fakeStrip records every color shown
type fakeStrip struct {
	configured int
	shows      []Color
	err        error
}

func (s *fakeStrip) Configure() error {
	s.configured++
	return nil
}

func (s *fakeStrip) Show(c Color) error {
	if s.err != nil {
		return s.err
	}
	s.shows = append(s.shows, c)
	return nil
}

func (s *fakeStrip) last() Color {
	if len(s.shows) == 0 {
		return Black
	}
	return s.shows[len(s.shows)-1]
}

// fakeTransport serves queued input bytes and captures output
type fakeTransport struct {
	in      []byte
	out     bytes.Buffer
	flushes int
}

func (t *fakeTransport) send(s string) {
	t.in = append(t.in, s...)
}

func (t *fakeTransport) Buffered() int {
	return len(t.in)
}

func (t *fakeTransport) ReadByte() (byte, error) {
	b := t.in[0]
	t.in = t.in[1:]
	return b, nil
}

func (t *fakeTransport) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

func (t *fakeTransport) Flush() error {
	t.flushes++
	return nil
}

// take returns and clears everything written so far
func (t *fakeTransport) take() string {
	s := t.out.String()
	t.out.Reset()
	return s
}

func newTestDigital(start uint32) (*Digital, *fakePin, *TickClock) {
	pin := &fakePin{}
	clock := NewTickClock(start)
	d := NewDigital(pin, clock)
	if err := d.Initialize(); err != nil {
		panic(err)
	}
	return d, pin, clock
}

func newTestRGB(start uint32, brightness uint8) (*RGB, *fakeStrip, *TickClock) {
	strip := &fakeStrip{}
	clock := NewTickClock(start)
	r := NewRGB(strip, clock, brightness)
	if err := r.Initialize(); err != nil {
		panic(err)
	}
	return r, strip, clock
}
