package core

import (
	"context"
	"strings"
	"testing"
	"time"
)

func newTestHandler(led Backend) (*Handler, *fakeTransport) {
	tr := &fakeTransport{}
	return NewHandler(tr, led), tr
}

func TestHandlerScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"on", "ON\n", "ACCEPTED,ON\r\n"},
		{"color out of range", "COLOR,256,0,0\n", "REJECT,COLOR,256,0,0,invalid format\r\n"},
		{"blink1", "BLINK1,255,255,255,500\n", "ACCEPTED,BLINK1,255,255,255,interval=500\r\n"},
		{"rainbow zero", "RAINBOW,0\n", "REJECT,RAINBOW,0,invalid interval\r\n"},
		{"overflow", strings.Repeat("X", 70), "REJECT,BUFFER_OVERFLOW,command too long\r\n"},
		{"unknown", "FOO\n", "REJECT,FOO,unknown command\r\n"},
		{"crlf", "COLOR,1,2,3\r\n", "ACCEPTED,COLOR,1,2,3\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRGB(0, 255)
			h, tr := newTestHandler(r)

			tr.send(tt.input)
			h.Poll()

			if got := tr.take(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHandlerOnSetsWhite(t *testing.T) {
	r, strip, _ := newTestRGB(0, 255)
	h, tr := newTestHandler(r)

	tr.send("ON\n")
	h.Poll()

	if strip.last() != White {
		t.Errorf("Expected white, got %v", strip.last())
	}
	if tr.flushes != 1 {
		t.Errorf("Expected one flush, got %d", tr.flushes)
	}
}

func TestHandlerBlinkToggles(t *testing.T) {
	d, pin, clock := newTestDigital(0)
	h, tr := newTestHandler(d)

	tr.send("BLINK1,255,255,255,500\n")
	h.Poll()
	if pin.level {
		t.Fatal("Expected LED dark after BLINK1")
	}

	clock.Advance(500)
	h.Poll()
	if !pin.level {
		t.Fatal("Expected LED toggled after 500ms")
	}
}

func TestHandlerOneLinePerPoll(t *testing.T) {
	d, _, _ := newTestDigital(0)
	h, tr := newTestHandler(d)

	tr.send("ON\nOFF\n")
	h.Poll()
	if got := tr.take(); got != "ACCEPTED,ON\r\n" {
		t.Fatalf("Expected only the first response, got %q", got)
	}
	if tr.Buffered() != 4 {
		t.Fatalf("Expected OFF left in the transport, %d bytes left", tr.Buffered())
	}

	h.Poll()
	if got := tr.take(); got != "ACCEPTED,OFF\r\n" {
		t.Fatalf("Expected OFF response, got %q", got)
	}
}

func TestHandlerOverflowResync(t *testing.T) {
	d, pin, _ := newTestDigital(0)
	h, tr := newTestHandler(d)

	tr.send(strings.Repeat("A", 70) + "ON\nON\n")
	for i := 0; i < 3; i++ {
		h.Poll()
	}

	want := "REJECT,BUFFER_OVERFLOW,command too long\r\nACCEPTED,ON\r\n"
	if got := tr.take(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if !pin.level {
		t.Error("Expected the command after the overflowed line to run")
	}

	st := h.Stats()
	if st.Overflows != 1 || st.Accepted != 1 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestHandlerRejectLeavesStateAlone(t *testing.T) {
	r, strip, _ := newTestRGB(0, 255)
	h, tr := newTestHandler(r)

	tr.send("BLINK2,255,0,0,0,0,255,100\n")
	h.Poll()
	before := r.State()
	shows := len(strip.shows)

	tr.send("COLOR,1,2\n")
	h.Poll()

	if r.State() != before || len(strip.shows) != shows {
		t.Errorf("Rejected command changed backend state")
	}
	if h.Stats().Rejected != 1 {
		t.Errorf("Expected one rejection, got %+v", h.Stats())
	}
}

func TestHandlerDegradedCommandsAccepted(t *testing.T) {
	d, pin, _ := newTestDigital(0)
	h, tr := newTestHandler(d)

	tr.send("RAINBOW,20\n")
	h.Poll()

	if got := tr.take(); got != "ACCEPTED,RAINBOW,interval=20\r\n" {
		t.Errorf("Expected accepted rainbow, got %q", got)
	}
	if !pin.level {
		t.Error("Expected solid on for rainbow on a digital LED")
	}
}

func TestHandlerRunStops(t *testing.T) {
	d, _, _ := newTestDigital(0)
	h, tr := newTestHandler(d)
	tr.send("ON\n")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := h.Run(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
	if got := tr.take(); got != "ACCEPTED,ON\r\n" {
		t.Errorf("Expected ON handled while running, got %q", got)
	}
}
