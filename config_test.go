package pixelclick

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3840*time.Millisecond, cfg.SweepDuration())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
strip_length = 3
initial_hue = 254
step_interval = "20ms"
strip_retries = 0
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.StripLength)
	assert.Equal(t, uint8(254), cfg.InitialHue)
	assert.Equal(t, TOMLDuration(20*time.Millisecond), cfg.StepInterval)
	assert.Equal(t, 0, cfg.StripRetries)

	// Untouched keys keep the board defaults.
	assert.Equal(t, TOMLDuration(DefaultBlinkPeriod), cfg.BlinkPeriod)
	assert.Equal(t, uint8(DefaultBrightness), cfg.Brightness)
	assert.Equal(t, DefaultButtonPool, cfg.ButtonPool)
}

func TestParseConfigInvalid(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`blink_period = "soon"`))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no leds", func(c *Config) { c.StripLength = 0 }},
		{"dark", func(c *Config) { c.Brightness = 0 }},
		{"blink period", func(c *Config) { c.BlinkPeriod = 0 }},
		{"step interval", func(c *Config) { c.StepInterval = -1 }},
		{"too many buttons", func(c *Config) { c.ButtonPool = 5 }},
		{"negative retries", func(c *Config) { c.StripRetries = -1 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
