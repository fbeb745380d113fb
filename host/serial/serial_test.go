package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 250000, cfg.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
}

func TestOpenRequiresDevice(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, ErrNoDevice)

	_, err = Open(&Config{})
	assert.ErrorIs(t, err, ErrNoDevice)
}
