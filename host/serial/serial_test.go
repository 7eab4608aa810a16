package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 9600, cfg.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
}

func TestOpenRejectsMissingConfig(t *testing.T) {
	_, err := Open(nil)
	require.Error(t, err)

	_, err = Open(&Config{Baud: 9600})
	require.Error(t, err)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/dev/does-not-exist-uniled"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/does-not-exist-uniled")
}
