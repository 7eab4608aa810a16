package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSendCheck(t *testing.T) {
	out, _, err := execute(t, "", "send", "--check", "ON", "BLINK1,255,0,0,500", " OFF ")
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED,ON\nACCEPTED,BLINK1,255,0,0,interval=500\nACCEPTED,OFF\n", out)
}

func TestSendCheckReportsInvalid(t *testing.T) {
	long := strings.Repeat("X", 61)
	out, _, err := execute(t, "", "send", "--check", "COLOR,1,2", "FOO", "RAINBOW,0", long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 of 4")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"REJECT,COLOR,1,2,invalid format",
		"REJECT,FOO,unknown command",
		"REJECT,RAINBOW,0,invalid interval",
		"REJECT,BUFFER_OVERFLOW,command too long",
	}, lines)
}

func TestSendNeedsArgs(t *testing.T) {
	_, _, err := execute(t, "", "send")
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "send", "--check", "ON")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestBoards(t *testing.T) {
	out, _, err := execute(t, "", "boards")
	require.NoError(t, err)
	for _, name := range []string{"arduino-uno-r4", "raspberry-pi-pico", "xiao-rp2040", "pico2-ws2812"} {
		assert.Contains(t, out, name)
	}
}

func TestBoardsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.json")
	data := `[{"name": "bench-strip", "led": "rgb", "data_pin": 2, "pixel_count": 30}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	out, _, err := execute(t, "", "boards", "--boards-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "bench-strip")
	assert.NotContains(t, out, "xiao-rp2040")
}

func TestSimDigital(t *testing.T) {
	out, drawn, err := execute(t, "ON\nFOO\nOFF\n", "sim", "--board", "raspberry-pi-pico")
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED,ON\r\nREJECT,FOO,unknown command\r\nACCEPTED,OFF\r\n", out)
	assert.Contains(t, drawn, "[raspberry-pi-pico] on  #ffffff")
	assert.Contains(t, drawn, "[raspberry-pi-pico] off #000000")
}

func TestSimInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmds.txt")
	require.NoError(t, os.WriteFile(path, []byte("COLOR,0,255,0\n"), 0o644))

	out, drawn, err := execute(t, "", "sim", "--board", "xiao-rp2040", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED,COLOR,0,255,0\r\n", out)
	// Brightness 128 scales the green channel
	assert.Contains(t, drawn, "#008000")
}

func TestSimUnknownBoard(t *testing.T) {
	_, _, err := execute(t, "", "sim", "--board", "nope")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "uniled protocol "))
}

func TestRepl(t *testing.T) {
	var sent []string
	var out bytes.Buffer

	in := "help\n\nON\ncheck COLOR,1,2,3\nCOLOR,9,9,9\nquit\nOFF\n"
	err := repl(strings.NewReader(in), &out, func(line string) { sent = append(sent, line) })
	require.NoError(t, err)

	assert.Equal(t, []string{"ON", "COLOR,9,9,9"}, sent)
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "ACCEPTED,COLOR,1,2,3")
}
