package core

import (
	"strconv"
	"strings"
)

// CommandKind identifies a serial command
type CommandKind uint8

const (
	CmdOn CommandKind = iota + 1
	CmdOff
	CmdColor
	CmdBlink1
	CmdBlink2
	CmdRainbow
)

// Command is one fully validated serial instruction.
// Only the fields meaningful for Kind are set.
type Command struct {
	Kind     CommandKind
	Color1   Color
	Color2   Color
	Interval uint32 // milliseconds, > 0 for blinks and rainbow
}

// Rejection reasons, as they appear on the wire
const (
	ReasonInvalidFormat     = "invalid format"
	ReasonInvalidParameters = "invalid parameters"
	ReasonInvalidInterval   = "invalid interval"
	ReasonUnknownCommand    = "unknown command"
)

// MaxInterval is the largest accepted interval (a signed 32-bit long)
const MaxInterval = 1<<31 - 1

// RejectError is returned by ParseCommand for any line that is not a
// complete, valid command.
type RejectError struct {
	Line   string
	Reason string
}

func (e *RejectError) Error() string {
	return "rejected " + strconv.Quote(e.Line) + ": " + e.Reason
}

// family describes a comma-separated command: its prefix, how many color
// triples it carries, whether an interval follows them, and the reason
// reported when its fields do not validate.
type family struct {
	prefix   string
	kind     CommandKind
	colors   int
	interval bool
	reason   string
}

var families = [...]family{
	{prefix: "COLOR,", kind: CmdColor, colors: 1, reason: ReasonInvalidFormat},
	{prefix: "BLINK1,", kind: CmdBlink1, colors: 1, interval: true, reason: ReasonInvalidParameters},
	{prefix: "BLINK2,", kind: CmdBlink2, colors: 2, interval: true, reason: ReasonInvalidParameters},
	{prefix: "RAINBOW,", kind: CmdRainbow, interval: true, reason: ReasonInvalidInterval},
}

func (f *family) arity() int {
	n := f.colors * 3
	if f.interval {
		n++
	}
	return n
}

// ParseCommand validates one trimmed command line. It has no side effects.
//
// Every family enforces strict arity: the number of fields must match
// exactly and every field must be a complete decimal integer in range.
func ParseCommand(line string) (Command, error) {
	switch line {
	case "ON":
		return Command{Kind: CmdOn}, nil
	case "OFF":
		return Command{Kind: CmdOff}, nil
	}

	for i := range families {
		f := &families[i]
		if !strings.HasPrefix(line, f.prefix) {
			continue
		}
		cmd, ok := f.parse(line[len(f.prefix):])
		if !ok {
			return Command{}, &RejectError{Line: line, Reason: f.reason}
		}
		return cmd, nil
	}

	return Command{}, &RejectError{Line: line, Reason: ReasonUnknownCommand}
}

func (f *family) parse(params string) (Command, bool) {
	fields := strings.Split(params, ",")
	if len(fields) != f.arity() {
		return Command{}, false
	}

	cmd := Command{Kind: f.kind}
	colors := [2]*Color{&cmd.Color1, &cmd.Color2}
	for i := 0; i < f.colors; i++ {
		c, ok := parseColor(fields[i*3 : i*3+3])
		if !ok {
			return Command{}, false
		}
		*colors[i] = c
	}

	if f.interval {
		interval, ok := parseInterval(fields[len(fields)-1])
		if !ok {
			return Command{}, false
		}
		cmd.Interval = interval
	}
	return cmd, true
}

func parseColor(fields []string) (Color, bool) {
	var ch [3]uint8
	for i, s := range fields {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil || v < 0 || v > 255 {
			return Color{}, false
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

func parseInterval(s string) (uint32, bool) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint32(v), true
}

// AppendText appends the canonical wire form of cmd to dst. Timed commands
// render their interval as interval=<n>.
func (cmd Command) AppendText(dst []byte) []byte {
	switch cmd.Kind {
	case CmdOn:
		return append(dst, "ON"...)
	case CmdOff:
		return append(dst, "OFF"...)
	case CmdColor:
		dst = append(dst, "COLOR"...)
		return appendColor(dst, cmd.Color1)
	case CmdBlink1:
		dst = append(dst, "BLINK1"...)
		dst = appendColor(dst, cmd.Color1)
		return appendInterval(dst, cmd.Interval)
	case CmdBlink2:
		dst = append(dst, "BLINK2"...)
		dst = appendColor(dst, cmd.Color1)
		dst = appendColor(dst, cmd.Color2)
		return appendInterval(dst, cmd.Interval)
	case CmdRainbow:
		dst = append(dst, "RAINBOW"...)
		return appendInterval(dst, cmd.Interval)
	}
	return dst
}

func (cmd Command) String() string {
	return string(cmd.AppendText(nil))
}

func appendColor(dst []byte, c Color) []byte {
	for _, v := range [3]uint8{c.R, c.G, c.B} {
		dst = append(dst, ',')
		dst = strconv.AppendUint(dst, uint64(v), 10)
	}
	return dst
}

func appendInterval(dst []byte, interval uint32) []byte {
	dst = append(dst, ",interval="...)
	return strconv.AppendUint(dst, uint64(interval), 10)
}

// Apply dispatches cmd to the matching backend operation
func (cmd Command) Apply(led Backend) {
	switch cmd.Kind {
	case CmdOn:
		led.TurnOn()
	case CmdOff:
		led.TurnOff()
	case CmdColor:
		led.SetColor(cmd.Color1)
	case CmdBlink1:
		led.StartBlink(cmd.Color1, cmd.Interval)
	case CmdBlink2:
		led.StartBlink2(cmd.Color1, cmd.Color2, cmd.Interval)
	case CmdRainbow:
		led.StartRainbow(cmd.Interval)
	}
}
