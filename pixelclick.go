// Package pixelclick runs the PixelClick demo on the cooperative executor:
// the front LEDs blink, the LED panel cycles through the rainbow and up to
// four buttons are polled.
package pixelclick

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DavSanchez/pixelclick/executor"
	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/DavSanchez/pixelclick/led"
	"github.com/pkg/errors"
)

// EventKind is the kind of an Event.
type EventKind uint8

const (
	// EventStarted is reported once by every task when it first runs.
	EventStarted EventKind = iota
	// EventPressed is reported for each poll that finds a button held.
	EventPressed
	// EventLap is reported each time the rainbow completes.
	EventLap
	// EventAborted is reported when the panel gives up on the strip.
	EventAborted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventPressed:
		return "pressed"
	case EventLap:
		return "lap"
	case EventAborted:
		return "aborted"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is an observable occurrence inside a task.
type Event struct {
	Kind EventKind
	Task string
	At   time.Time

	Button gpio.ButtonID // EventPressed
	Lap    int           // EventLap
	Err    error         // EventAborted
}

// EventHandler receives events. It is called from inside the task that
// produced the event and must not block.
type EventHandler func(Event)

func (h EventHandler) emit(ev Event) {
	if h != nil {
		h(ev)
	}
}

// Board holds the peripherals handed over by the initialization code. Each
// handle is given to exactly one task.
type Board struct {
	// Front are the two LEDs that blink in lock-step.
	Front [2]*gpio.Output
	// Strip is the LED panel.
	Strip *led.Driver
	// Buttons are the buttons to poll, at most one per identity.
	Buttons []gpio.Button
}

// Validate checks that the board matches cfg.
func (b *Board) Validate(cfg *Config) error {
	if b.Front[0] == nil || b.Front[1] == nil {
		return errors.New("board is missing a front LED")
	}
	if b.Front[0] == b.Front[1] {
		return errors.New("both front LEDs share one output")
	}
	if b.Strip == nil {
		return errors.New("board has no LED strip")
	}
	if b.Strip.Len() != cfg.StripLength {
		return errors.Wrapf(led.ErrStripLength, "strip has %d LEDs, expected %d", b.Strip.Len(), cfg.StripLength)
	}

	seen := make(map[gpio.ButtonID]bool, len(b.Buttons))
	inputs := make(map[*gpio.Input]gpio.ButtonID, len(b.Buttons))
	for _, button := range b.Buttons {
		if !button.ID.Valid() {
			return errors.Wrapf(gpio.ErrInvalidButton, "%d", uint8(button.ID))
		}
		if seen[button.ID] {
			return fmt.Errorf("button %s is handed out twice", button.ID)
		}
		seen[button.ID] = true

		if button.Input == nil {
			return fmt.Errorf("button %s has no input", button.ID)
		}
		if other, ok := inputs[button.Input]; ok {
			return fmt.Errorf("buttons %s and %s share one input", other, button.ID)
		}
		inputs[button.Input] = button.ID
	}

	return nil
}

// Tasks describes what Start spawned.
type Tasks struct {
	Blink   *executor.Pool
	Panel   *executor.Pool
	Buttons *executor.Pool
	// Rejected lists the buttons whose task could not be spawned.
	Rejected []gpio.ButtonID
}

// Start validates the configuration and spawns the blink task, the panel task
// and one task per button onto rt. Buttons beyond the pool capacity are
// skipped and reported in Tasks.Rejected. The tasks run once rt runs.
func Start(rt *executor.Runtime, board Board, cfg Config, logger *slog.Logger, emit EventHandler) (*Tasks, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := board.Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid board")
	}

	logger.Info(
		"init",
		"leds", cfg.StripLength,
		"buttons", len(board.Buttons),
		"sweep", cfg.SweepDuration())

	tasks := &Tasks{
		Blink:   rt.Pool("blink", 1),
		Panel:   rt.Pool("panel", 1),
		Buttons: rt.Pool("button", cfg.ButtonPool),
	}

	blink := Blink(board.Front[0], board.Front[1], time.Duration(cfg.BlinkPeriod), logger.With("task", "blink"), emit)
	if err := tasks.Blink.Spawn("front", blink); err != nil {
		return nil, errors.Wrap(err, "failed to spawn blink task")
	}

	anim := led.NewAnimator(cfg.InitialHue, cfg.Brightness)
	panel := Panel(board.Strip, anim, time.Duration(cfg.StepInterval), cfg.StripRetries, logger.With("task", "panel"), emit)
	if err := tasks.Panel.Spawn("rainbow", panel); err != nil {
		return nil, errors.Wrap(err, "failed to spawn panel task")
	}

	for _, b := range board.Buttons {
		fn := Button(b, time.Duration(cfg.PollInterval), logger.With("task", b.ID.String()), emit)
		if err := tasks.Buttons.Spawn(b.ID.String(), fn); err != nil {
			logger.Warn(
				"button will not be polled",
				"button", b.ID,
				"error", err)
			tasks.Rejected = append(tasks.Rejected, b.ID)
		}
	}

	return tasks, nil
}
