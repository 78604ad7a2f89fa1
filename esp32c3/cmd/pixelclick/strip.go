package main

import (
	"image/color"
	"runtime/interrupt"

	"github.com/DavSanchez/pixelclick/led"
	"tinygo.org/x/drivers/ws2812"
)

// ws2812Strip adapts a ws2812 device into a led.Writer.
type ws2812Strip struct {
	dev ws2812.Device
	buf []color.RGBA
}

func newWS2812Strip(dev ws2812.Device, numLEDs int) *ws2812Strip {
	return &ws2812Strip{dev: dev, buf: make([]color.RGBA, numLEDs)}
}

func (s *ws2812Strip) WriteColors(leds led.LEDs) error {
	for i, c := range leds {
		s.buf[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}

	var err error
	critical(func() { err = s.dev.WriteColors(s.buf) })
	return err
}

// critical runs f with interrupts disabled; the ws2812 timing is bit-banged.
func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}
