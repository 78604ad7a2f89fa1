// Package gpio wraps the discrete output and input pins handed over by the
// board initialization code.
package gpio

import (
	"fmt"

	"github.com/pkg/errors"
)

// Level is the electrical level of a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// String returns "high" or "low".
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Setter is a pin that can be driven. machine.Pin satisfies it.
type Setter interface {
	Set(bool)
}

// Getter is a pin that can be sampled. machine.Pin satisfies it.
type Getter interface {
	Get() bool
}

// Output is a binary output whose level is tracked locally. An Output must
// only be used by the task that owns it.
type Output struct {
	pin   Setter
	level Level
}

// NewOutput wraps an already configured pin and drives it to initial.
func NewOutput(pin Setter, initial Level) *Output {
	pin.Set(bool(initial))
	return &Output{pin: pin, level: initial}
}

// Toggle inverts the level of the pin.
func (o *Output) Toggle() {
	o.level = !o.level
	o.pin.Set(bool(o.level))
}

// Level returns the level the pin was last driven to.
func (o *Output) Level() Level { return o.level }

// Pull is the bias configured on an input pin.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	default:
		return fmt.Sprintf("Pull(%d)", p)
	}
}

// Input is a read-only binary input.
type Input struct {
	pin  Getter
	pull Pull
}

// NewInput wraps an already configured pin. The pull is informational; the
// pin must have been configured with it already.
func NewInput(pin Getter, pull Pull) *Input {
	return &Input{pin: pin, pull: pull}
}

// IsLow reports whether the pin currently reads low, which is how an active
// low button reports being pressed.
func (i *Input) IsLow() bool { return !i.pin.Get() }

// Pull returns the pull the input was configured with.
func (i *Input) Pull() Pull { return i.pull }

// ButtonID identifies one of the physical buttons.
type ButtonID uint8

const (
	Btn1 ButtonID = iota + 1
	Btn2
	Btn3
	Btn4
)

// MaxButtons is the number of physical buttons on the board.
const MaxButtons = int(Btn4)

func (id ButtonID) String() string {
	return fmt.Sprintf("btn%d", uint8(id))
}

// Valid reports whether id names a physical button.
func (id ButtonID) Valid() bool {
	return id >= Btn1 && id <= Btn4
}

// ErrInvalidButton is returned for a button identity outside Btn1..Btn4.
var ErrInvalidButton = errors.New("invalid button identity")

// Button is an input tagged with the button it belongs to.
type Button struct {
	ID    ButtonID
	Input *Input
}

// NewButton tags in with id.
func NewButton(id ButtonID, in *Input) (Button, error) {
	if !id.Valid() {
		return Button{}, errors.Wrapf(ErrInvalidButton, "%d", uint8(id))
	}
	if in == nil {
		return Button{}, errors.Errorf("button %s has no input", id)
	}
	return Button{ID: id, Input: in}, nil
}

// Pressed reports whether the button is held down.
func (b Button) Pressed() bool { return b.Input.IsLow() }
