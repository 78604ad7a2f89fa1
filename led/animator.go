package led

// Animator sweeps the hue of a fully saturated, full value color. Every step
// lights the whole strip with a single color.
type Animator struct {
	color   HSV
	ceiling uint8
}

// NewAnimator creates an animator starting at hue with channels capped at
// ceiling after gamma correction.
func NewAnimator(hue, ceiling uint8) *Animator {
	return &Animator{
		color:   HSV{Hue: hue, Sat: 255, Val: 255},
		ceiling: ceiling,
	}
}

// Hue returns the hue the next step will render.
func (a *Animator) Hue() uint8 { return a.color.Hue }

// Color returns the corrected color for the current hue.
func (a *Animator) Color() RGBColor {
	return Correct(a.color.RGB(), a.ceiling)
}

// Frame returns a new frame of n LEDs all showing the current color.
func (a *Animator) Frame(n int) LEDs {
	leds := NewLEDs(n)
	leds.Fill(a.Color())
	return leds
}

// Step emits the current color to every LED of d and advances the hue by one.
// It reports whether the hue wrapped back to zero, which completes a sweep.
// The hue is left unchanged if the write fails.
func (a *Animator) Step(d *Driver) (wrapped bool, err error) {
	if err := d.Broadcast(a.Color()); err != nil {
		return false, err
	}
	a.color.Hue++
	return a.color.Hue == 0, nil
}
