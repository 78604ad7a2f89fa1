package led

import (
	"fmt"

	"github.com/pkg/errors"
)

// Writer is the transport that pushes a whole frame onto the physical strip.
// WriteColors blocks until the frame is sent.
type Writer interface {
	WriteColors(LEDs) error
}

// WriterFunc adapts a function into a Writer.
type WriterFunc func(LEDs) error

// WriteColors calls f.
func (f WriterFunc) WriteColors(l LEDs) error { return f(l) }

// ErrStripLength is returned when a strip is configured with no LEDs.
var ErrStripLength = errors.New("strip must have at least one LED")

// Driver owns a fixed-size frame buffer and the transport for one strip.
type Driver struct {
	w   Writer
	buf LEDs
}

// NewDriver creates a driver for a strip of n LEDs.
func NewDriver(w Writer, n int) (*Driver, error) {
	if n < 1 {
		return nil, ErrStripLength
	}
	return &Driver{w: w, buf: NewLEDs(n)}, nil
}

// Len returns the number of LEDs on the strip.
func (d *Driver) Len() int { return len(d.buf) }

// Write copies frame into the buffer and emits it. The frame must have
// exactly Len entries; anything else is a programming error and panics.
func (d *Driver) Write(frame LEDs) error {
	if len(frame) != len(d.buf) {
		panic(fmt.Sprintf("led: frame has %d LEDs, strip has %d", len(frame), len(d.buf)))
	}
	copy(d.buf, frame)
	return d.flush()
}

// Broadcast sets every LED to c and emits the frame.
func (d *Driver) Broadcast(c RGBColor) error {
	d.buf.Fill(c)
	return d.flush()
}

func (d *Driver) flush() error {
	if err := d.w.WriteColors(d.buf); err != nil {
		return errors.Wrap(err, "failed to write strip")
	}
	return nil
}
