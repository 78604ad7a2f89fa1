package daemon

import (
	"log/slog"

	"github.com/DavSanchez/pixelclick/led"
	"github.com/lucasb-eyer/go-colorful"
)

// ConsoleStrip is a led.Writer that logs the color of the first LED whenever
// it changes.
type ConsoleStrip struct {
	logger *slog.Logger
	last   led.RGBColor
	frames int
}

var _ led.Writer = (*ConsoleStrip)(nil)

// NewConsoleStrip creates a new console strip.
func NewConsoleStrip(logger *slog.Logger) *ConsoleStrip {
	return &ConsoleStrip{logger: logger.With("component", "strip")}
}

// WriteColors implements led.Writer.
func (s *ConsoleStrip) WriteColors(leds led.LEDs) error {
	s.frames++
	if len(leds) == 0 || (s.frames > 1 && leds[0] == s.last) {
		return nil
	}
	s.last = leds[0]

	c := colorful.Color{
		R: float64(s.last.R) / 255,
		G: float64(s.last.G) / 255,
		B: float64(s.last.B) / 255,
	}
	h, _, v := c.Hsv()

	s.logger.Debug(
		"frame",
		"color", c.Hex(),
		"hue", int(h),
		"value", v,
		"leds", len(leds))
	return nil
}

// Frames returns the number of frames written.
func (s *ConsoleStrip) Frames() int { return s.frames }
