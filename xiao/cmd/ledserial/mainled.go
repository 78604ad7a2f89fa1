package main

import (
	"machine"

	"github.com/DavSanchez/pixelclick/gpio"
	"tinygo.org/x/drivers/ws2812"
)

var (
	statusLED      ws2812.Device
	statusLEDPower *gpio.Output
)

// initStatusLED sets up the on-board RGB LED, which is lit while a packet is
// being read.
// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
func initStatusLED() {
	power := machine.GPIO11
	power.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLEDPower = gpio.NewOutput(power, gpio.Low)

	machine.GPIO12.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLED = ws2812.New(machine.GPIO12)
	statusLED.WriteByte(255)
	statusLED.WriteByte(255)
	statusLED.WriteByte(255)
}

func statusBusy() {
	if statusLEDPower.Level() == gpio.Low {
		statusLEDPower.Toggle()
	}
}

func statusIdle() {
	if statusLEDPower.Level() == gpio.High {
		statusLEDPower.Toggle()
	}
}
