package led

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHSVPrimaries(t *testing.T) {
	tests := []struct {
		hue  uint8
		want RGBColor
	}{
		{0, RGBColor{255, 0, 0}},
		{85, RGBColor{0, 255, 0}},
		{170, RGBColor{0, 0, 255}},
		{255, RGBColor{255, 0, 0}},
		{254, RGBColor{255, 0, 6}},
	}

	for _, test := range tests {
		got := HSV{Hue: test.hue, Sat: 255, Val: 255}.RGB()
		assert.Equal(t, test.want, got, "hue %d", test.hue)
	}
}

func TestHSVZeroValue(t *testing.T) {
	for hue := 0; hue < 256; hue++ {
		got := HSV{Hue: uint8(hue), Sat: 255, Val: 0}.RGB()
		assert.Equal(t, RGBColor{}, got, "hue %d", hue)
	}
}

func TestHSVFullySaturated(t *testing.T) {
	// At full saturation and value one channel is always at 255 and one at 0.
	for hue := 0; hue < 256; hue++ {
		c := HSV{Hue: uint8(hue), Sat: 255, Val: 255}.RGB()
		ch := []uint8{c.R, c.G, c.B}
		assert.Contains(t, ch, uint8(255), "hue %d", hue)
		assert.Contains(t, ch, uint8(0), "hue %d", hue)
	}
}

func TestRGBColorString(t *testing.T) {
	assert.Equal(t, "#0f00a0", RGBColor{15, 0, 160}.String())
}
