package pixelclick

import (
	"log/slog"
	"time"

	"github.com/DavSanchez/pixelclick/executor"
	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/DavSanchez/pixelclick/led"
	"github.com/pkg/errors"
)

// Blink toggles a and b together every period. The two outputs keep whatever
// phase they were created with.
func Blink(a, b *gpio.Output, period time.Duration, logger *slog.Logger, emit EventHandler) executor.Func {
	return func(t *executor.T) error {
		logger.Info("blinking front leds", "period", period)
		emit.emit(Event{Kind: EventStarted, Task: t.Name(), At: t.Now()})
		for {
			logger.Debug("toggling front leds", "a", a.Level(), "b", b.Level())
			a.Toggle()
			b.Toggle()
			t.Sleep(period)
		}
	}
}

// Panel sweeps the rainbow on the strip, one hue every interval. A failed
// write is retried on the next step; more than retries consecutive failures
// end the task.
func Panel(strip *led.Driver, anim *led.Animator, interval time.Duration, retries int, logger *slog.Logger, emit EventHandler) executor.Func {
	return func(t *executor.T) error {
		logger.Info("iterating over the rainbow", "leds", strip.Len(), "interval", interval)
		emit.emit(Event{Kind: EventStarted, Task: t.Name(), At: t.Now()})

		var laps, failures int
		for {
			wrapped, err := anim.Step(strip)
			switch {
			case err != nil:
				failures++
				if failures > retries {
					emit.emit(Event{Kind: EventAborted, Task: t.Name(), At: t.Now(), Err: err})
					return errors.Wrapf(err, "giving up after %d consecutive failures", failures)
				}
				logger.Warn(
					"failed to write strip, retrying",
					"hue", anim.Hue(),
					"attempt", failures,
					"error", err)

			case wrapped:
				failures = 0
				laps++
				logger.Info("rainbow completed", "lap", laps)
				emit.emit(Event{Kind: EventLap, Task: t.Name(), At: t.Now(), Lap: laps})

			default:
				failures = 0
			}

			t.Sleep(interval)
		}
	}
}

// Button samples b every interval and reports a press for every sample taken
// while it is held. There is no edge detection nor debouncing: holding the
// button for n intervals reports n presses.
func Button(b gpio.Button, interval time.Duration, logger *slog.Logger, emit EventHandler) executor.Func {
	return func(t *executor.T) error {
		logger.Debug("polling button", "button", b.ID, "interval", interval)
		emit.emit(Event{Kind: EventStarted, Task: t.Name(), At: t.Now(), Button: b.ID})
		for {
			if b.Pressed() {
				logger.Info("button pressed", "button", b.ID)
				emit.emit(Event{Kind: EventPressed, Task: t.Name(), At: t.Now(), Button: b.ID})
			}
			t.Sleep(interval)
		}
	}
}
