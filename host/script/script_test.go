package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniled/protocol"
)

// recorder answers like a board that rejects anything starting with "BAD"
type recorder struct {
	sent []string
}

func (r *recorder) Send(_ context.Context, line string) (protocol.Response, error) {
	r.sent = append(r.sent, line)
	if strings.HasPrefix(line, "BAD") {
		resp := protocol.Response{Body: line, Reason: "unknown command"}
		return resp, resp.Err()
	}
	return protocol.Response{Accepted: true, Body: line}, nil
}

func TestParse(t *testing.T) {
	src := `# warm up
ON

sleep 10ms
  COLOR,1,2,3  
# done
OFF
`
	steps, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, steps, 4)

	assert.Equal(t, Step{Line: 2, Command: "ON"}, steps[0])
	assert.Equal(t, Step{Line: 4, Sleep: 10 * time.Millisecond}, steps[1])
	assert.Equal(t, Step{Line: 5, Command: "COLOR,1,2,3"}, steps[2])
	assert.Equal(t, Step{Line: 7, Command: "OFF"}, steps[3])
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("sleep soon\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(strings.Repeat("A", protocol.MaxLineLength+1)))
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	steps := []Step{{Line: 1, Command: "ON"}, {Line: 2, Sleep: time.Millisecond}, {Line: 3, Command: "OFF"}}
	rec := &recorder{}

	var results []Result
	err := Run(context.Background(), rec, steps, Options{Report: func(r Result) { results = append(results, r) }})
	require.NoError(t, err)
	assert.Equal(t, []string{"ON", "OFF"}, rec.sent)
	assert.Len(t, results, 2)
}

func TestRunCountsFailures(t *testing.T) {
	steps := []Step{{Line: 1, Command: "BAD1"}, {Line: 2, Command: "ON"}, {Line: 3, Command: "BAD2"}}

	rec := &recorder{}
	err := Run(context.Background(), rec, steps, Options{})
	assert.True(t, errors.Is(err, ErrFailed))
	assert.Len(t, rec.sent, 3)

	rec = &recorder{}
	err = Run(context.Background(), rec, steps, Options{StopOnError: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
	assert.Len(t, rec.sent, 1)
}

func TestRunCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Run(ctx, &recorder{}, []Step{{Line: 1, Sleep: time.Hour}}, Options{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.led")
	require.NoError(t, os.WriteFile(path, []byte("ON\nOFF\n"), 0o644))

	steps, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}

func TestWatchReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.led")
	require.NoError(t, os.WriteFile(path, []byte("ON\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Keep writing until the watcher is up and reports a change
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for waiting := true; waiting; {
		select {
		case <-changed:
			waiting = false
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte("OFF\n"), 0o644))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
}
