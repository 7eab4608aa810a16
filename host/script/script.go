// Package script runs files of LED commands against a board.
//
// One command per line. Blank lines and lines starting with '#' are
// skipped. A line "sleep <duration>" (e.g. "sleep 1.5s") pauses the run.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"uniled/protocol"
)

// Step is one script line: either a command or a pause
type Step struct {
	Line    int
	Command string
	Sleep   time.Duration
}

// Sender sends one command and returns the board's response.
// *client.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, line string) (protocol.Response, error)
}

// Parse reads a script
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if arg, ok := strings.CutPrefix(text, "sleep "); ok {
			d, err := time.ParseDuration(strings.TrimSpace(arg))
			if err != nil || d < 0 {
				return nil, fmt.Errorf("line %d: bad sleep %q", n, arg)
			}
			steps = append(steps, Step{Line: n, Sleep: d})
			continue
		}

		if len(text) > protocol.MaxLineLength {
			return nil, fmt.Errorf("line %d: command longer than %d bytes", n, protocol.MaxLineLength)
		}
		steps = append(steps, Step{Line: n, Command: text})
	}
	return steps, scanner.Err()
}

// ParseFile reads the script at path
func ParseFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Result is the outcome of one command step
type Result struct {
	Step     Step
	Response protocol.Response
	Err      error
}

// Options tunes Run
type Options struct {
	// Delay is added after every command
	Delay time.Duration

	// StopOnError ends the run at the first failed command
	StopOnError bool

	// Report is called after every command
	Report func(Result)
}

// ErrFailed is returned by Run when any command failed
var ErrFailed = errors.New("script had failed commands")

// Run sends every step in order
func Run(ctx context.Context, s Sender, steps []Step, opts Options) error {
	failed := 0
	for _, step := range steps {
		if step.Command == "" {
			if err := sleep(ctx, step.Sleep); err != nil {
				return err
			}
			continue
		}

		resp, err := s.Send(ctx, step.Command)
		if opts.Report != nil {
			opts.Report(Result{Step: step, Response: resp, Err: err})
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			failed++
			if opts.StopOnError {
				return fmt.Errorf("line %d: %w", step.Line, err)
			}
		}

		if err := sleep(ctx, opts.Delay); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFailed, failed, countCommands(steps))
	}
	return nil
}

func countCommands(steps []Step) int {
	n := 0
	for _, s := range steps {
		if s.Command != "" {
			n++
		}
	}
	return n
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
