// Package esp32c3 describes the wiring of the PixelClick board.
package esp32c3

import "github.com/DavSanchez/pixelclick/gpio"

var (
	// NumLEDs is the number of LEDs on the front panel.
	NumLEDs = 36
	// PanelPin drives the data line of the front panel.
	PanelPin = 5
	// FrontPins are the red and blue LEDs, in that order.
	FrontPins = [2]int{8, 9}
	// ButtonPins maps buttons to their active low input. The stock board has
	// none; buttons wired to the header go here.
	ButtonPins = map[gpio.ButtonID]int{}
)

// EachButton calls f for each wired button in identity order.
func EachButton(f func(id gpio.ButtonID, pin int)) {
	for id := gpio.Btn1; id <= gpio.Btn4; id++ {
		if pin, ok := ButtonPins[id]; ok {
			f(id, pin)
		}
	}
}
