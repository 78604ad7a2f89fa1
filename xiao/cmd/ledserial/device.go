package main

import (
	"fmt"
	"image/color"
	"machine"

	"github.com/DavSanchez/pixelclick/led"
	"github.com/DavSanchez/pixelclick/ledserial"
	"tinygo.org/x/drivers/ws2812"
)

// Device is a serial LED controller: it applies the frames sent by the host
// and acknowledges every packet.
type Device struct {
	serial SerialReadWriter
	led    ws2812.Device

	strip *led.Driver
	frame led.LEDs
	buf   []color.RGBA
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, ledPin machine.Pin) *Device {
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		serial: WrapSerial(serial),
		led:    ws2812.New(ledPin),
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	statusBusy()
	defer statusIdle()

	return ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs: uint16(len(d.frame)),
	})
}

// WriteColors implements led.Writer on top of the ws2812 strip.
func (d *Device) WriteColors(leds led.LEDs) error {
	for i, c := range leds {
		d.buf[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return d.led.WriteColors(d.buf)
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		strip, err := led.NewDriver(d, int(p.NumLEDs))
		if err != nil {
			return fmt.Errorf("invalid number of LEDs: %w", err)
		}
		d.strip = strip
		d.frame = led.NewLEDs(int(p.NumLEDs))
		d.buf = make([]color.RGBA, p.NumLEDs)
		d.log(fmt.Sprintf("initialized %d LEDs", p.NumLEDs))

		if err := d.strip.Write(d.frame); err != nil {
			return err
		}

	case ledserial.ClearPacket:
		if d.strip == nil {
			return fmt.Errorf("clear before initialize")
		}
		if err := d.strip.Broadcast(led.RGBColor{}); err != nil {
			return err
		}

	case ledserial.SetPacket:
		if d.strip == nil {
			return fmt.Errorf("set before initialize")
		}
		if len(p.Pix) != 3*d.strip.Len() {
			return fmt.Errorf("invalid number of pixels: %d", len(p.Pix)/3)
		}
		copy(d.frame.AsPixels(), p.Pix)
		if err := d.strip.Write(d.frame); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}
