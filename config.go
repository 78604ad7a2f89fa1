package pixelclick

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Board constants. The firmware uses these as-is; the host runner may
// override them from a configuration file.
const (
	// DefaultStripLength is the number of LEDs on the front panel.
	DefaultStripLength = 36
	// DefaultBlinkPeriod is how long the front LEDs hold each level.
	DefaultBlinkPeriod = time.Second
	// DefaultStepInterval is the time between two hues of the rainbow.
	DefaultStepInterval = 15 * time.Millisecond
	// DefaultPollInterval is the time between two samples of a button.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultBrightness is the highest value any channel of the strip is
	// driven to, out of 255.
	DefaultBrightness = 15
	// DefaultButtonPool is the number of button tasks that may run at once.
	DefaultButtonPool = gpio.MaxButtons
	// DefaultStripRetries is the number of consecutive failed strip writes
	// tolerated before the panel task gives up.
	DefaultStripRetries = 3
)

// Config is the configuration of the tasks.
type Config struct {
	// StripLength is the number of LEDs on the strip.
	StripLength int `toml:"strip_length"`
	// InitialHue is the hue the rainbow starts at.
	InitialHue uint8 `toml:"initial_hue"`
	// Brightness caps every channel of the strip after gamma correction.
	Brightness uint8 `toml:"brightness"`
	// BlinkPeriod is the period of the front LED blinker.
	BlinkPeriod TOMLDuration `toml:"blink_period"`
	// StepInterval is the time between two animation steps.
	StepInterval TOMLDuration `toml:"step_interval"`
	// PollInterval is the time between two button samples.
	PollInterval TOMLDuration `toml:"poll_interval"`
	// ButtonPool is the capacity of the button task pool.
	ButtonPool int `toml:"button_pool"`
	// StripRetries is the number of consecutive strip write failures the
	// panel task tolerates. Zero aborts on the first failure.
	StripRetries int `toml:"strip_retries"`
}

// DefaultConfig returns the board configuration.
func DefaultConfig() Config {
	return Config{
		StripLength:  DefaultStripLength,
		Brightness:   DefaultBrightness,
		BlinkPeriod:  TOMLDuration(DefaultBlinkPeriod),
		StepInterval: TOMLDuration(DefaultStepInterval),
		PollInterval: TOMLDuration(DefaultPollInterval),
		ButtonPool:   DefaultButtonPool,
		StripRetries: DefaultStripRetries,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StripLength < 1 {
		return errors.New("strip_length must be at least 1")
	}
	if c.Brightness == 0 {
		return errors.New("brightness of 0 would keep the strip dark")
	}

	for name, d := range map[string]TOMLDuration{
		"blink_period":  c.BlinkPeriod,
		"step_interval": c.StepInterval,
		"poll_interval": c.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, time.Duration(d))
		}
	}

	if c.ButtonPool < 0 || c.ButtonPool > gpio.MaxButtons {
		return fmt.Errorf("button_pool must be within [0, %d], got %d", gpio.MaxButtons, c.ButtonPool)
	}
	if c.StripRetries < 0 {
		return fmt.Errorf("strip_retries must not be negative, got %d", c.StripRetries)
	}

	return nil
}

// SweepDuration returns how long one full rainbow takes.
func (c *Config) SweepDuration() time.Duration {
	return 256 * time.Duration(c.StepInterval)
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Keys missing from the
// document keep their default value.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &config, nil
}
