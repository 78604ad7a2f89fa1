package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputToggle(t *testing.T) {
	pin := NewSimPin(false)
	out := NewOutput(pin, High)
	assert.True(t, pin.Get())
	assert.Equal(t, High, out.Level())

	out.Toggle()
	assert.False(t, pin.Get())
	assert.Equal(t, Low, out.Level())

	out.Toggle()
	assert.True(t, pin.Get())
	assert.Equal(t, 3, pin.Edges()) // initial drive plus two toggles
}

func TestInputIsLow(t *testing.T) {
	pin := NewSimPin(true)
	in := NewInput(pin, PullUp)
	assert.False(t, in.IsLow())

	pin.Set(false)
	assert.True(t, in.IsLow())
	assert.Equal(t, PullUp, in.Pull())
}

func TestNewButton(t *testing.T) {
	in := NewInput(NewSimPin(true), PullUp)

	for id := Btn1; id <= Btn4; id++ {
		b, err := NewButton(id, in)
		require.NoError(t, err)
		assert.Equal(t, id, b.ID)
	}

	_, err := NewButton(0, in)
	assert.ErrorIs(t, err, ErrInvalidButton)
	_, err = NewButton(5, in)
	assert.ErrorIs(t, err, ErrInvalidButton)
	_, err = NewButton(Btn1, nil)
	assert.Error(t, err)
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "btn3", Btn3.String())
	assert.Equal(t, 4, MaxButtons)
}
