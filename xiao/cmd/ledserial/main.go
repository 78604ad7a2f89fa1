package main

import "machine"

func main() {
	initStatusLED()

	machine.GPIO0.Configure(machine.PinConfig{Mode: machine.PinOutput})
	NewDevice(machine.Serial, machine.GPIO0).Run()
}
