package led

import "math"

// GammaExponent is the exponent the gamma table is generated with.
const GammaExponent = 2.8

var gammaTable [256]uint8

func init() {
	for i := range gammaTable {
		gammaTable[i] = uint8(math.Pow(float64(i)/255, GammaExponent)*255 + 0.5)
	}
}

// Gamma maps a linear channel value onto a perceptually even step.
func Gamma(x uint8) uint8 {
	return gammaTable[x]
}

// Brightness scales a channel value down so that the result never exceeds
// ceiling.
func Brightness(x, ceiling uint8) uint8 {
	return uint8(uint16(x) * (uint16(ceiling) + 1) / 256)
}

// Correct applies gamma correction and then the brightness ceiling to every
// channel of c.
func Correct(c RGBColor, ceiling uint8) RGBColor {
	return RGBColor{
		R: Brightness(Gamma(c.R), ceiling),
		G: Brightness(Gamma(c.G), ceiling),
		B: Brightness(Gamma(c.B), ceiling),
	}
}
