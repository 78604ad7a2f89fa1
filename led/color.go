// Package led contains the color model and the LED strip driver.
package led

import "fmt"

// RGBColor is a color with 8-bit red, green and blue channels. Its memory
// layout is exactly three bytes, which AsPixels relies on.
type RGBColor struct {
	R, G, B uint8
}

// String returns the color as #rrggbb.
func (c RGBColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSV is a color in the hue-saturation-value space. Every component spans the
// full 0-255 range, so the hue wheel wraps at 256.
type HSV struct {
	Hue uint8
	Sat uint8
	Val uint8
}

// RGB converts the color to RGB using integer arithmetic. The wheel is split
// into six sectors of roughly 43 hues each.
func (c HSV) RGB() RGBColor {
	v := uint16(c.Val)
	s := uint16(c.Sat)
	f := (uint16(c.Hue) * 2 % 85) * 3 // position within the sector

	p := uint8(v * (255 - s) / 255)
	q := uint8(v * (255 - (s*f)/255) / 255)
	t := uint8(v * (255 - (s*(255-f))/255) / 255)
	vv := uint8(v)

	switch {
	case c.Hue <= 42:
		return RGBColor{vv, t, p}
	case c.Hue <= 84:
		return RGBColor{q, vv, p}
	case c.Hue <= 127:
		return RGBColor{p, vv, t}
	case c.Hue <= 169:
		return RGBColor{p, q, vv}
	case c.Hue <= 212:
		return RGBColor{t, p, vv}
	case c.Hue <= 254:
		return RGBColor{vv, p, q}
	default:
		return RGBColor{vv, t, p}
	}
}
