package ledserial

import (
	"io"

	"github.com/DavSanchez/pixelclick/led"
	"github.com/pkg/errors"
)

// Strip is a led.Writer that sends frames to a serial LED controller. The
// controller is initialized with the strip length on the first frame.
type Strip struct {
	w       io.Writer
	numLEDs int
}

var _ led.Writer = (*Strip)(nil)

// NewStrip creates a strip writing packets to w.
func NewStrip(w io.Writer) *Strip {
	return &Strip{w: w}
}

// WriteColors sends leds as a set packet.
func (s *Strip) WriteColors(leds led.LEDs) error {
	if len(leds) != s.numLEDs {
		if len(leds) > 0xFFFF {
			return errors.Errorf("strip of %d LEDs is too long", len(leds))
		}
		if err := WriteIncomingPacket(s.w, InitializePacket{NumLEDs: uint16(len(leds))}); err != nil {
			return errors.Wrap(err, "failed to initialize controller")
		}
		s.numLEDs = len(leds)
	}

	if err := WriteIncomingPacket(s.w, SetPacket{Pix: leds.AsPixels()}); err != nil {
		return errors.Wrap(err, "failed to send frame")
	}
	return nil
}

// Clear turns every LED of the strip off.
func (s *Strip) Clear() error {
	return WriteIncomingPacket(s.w, ClearPacket{})
}
