// Package daemon runs the PixelClick tasks on the host against a simulated
// board. The LED panel is either logged or sent to a serial LED controller.
package daemon

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/DavSanchez/pixelclick"
	"github.com/DavSanchez/pixelclick/executor"
	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/DavSanchez/pixelclick/led"
	"github.com/DavSanchez/pixelclick/ledserial"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
)

// Config is the configuration of the host daemon.
type Config struct {
	pixelclick.Config

	// Device is the path to a serial LED controller, usually /dev/ttyUSB0 or
	// /dev/ttyACM0. If empty, frames are logged instead.
	Device string
	// Baud is the baud rate for the serial connection.
	Baud int
	// Buttons are the buttons present on the simulated board.
	Buttons []gpio.ButtonID
	// Held are the buttons held down for the whole run.
	Held []gpio.ButtonID
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.Device != "" && c.Baud <= 0 {
		return errors.New("baud must be set when a device is given")
	}

	present := make(map[gpio.ButtonID]bool, len(c.Buttons))
	for _, id := range c.Buttons {
		present[id] = true
	}
	for _, id := range c.Held {
		if !present[id] {
			return errors.Errorf("held button %s is not on the board", id)
		}
	}

	return nil
}

// Daemon is the host daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger
	events func(pixelclick.Event)
}

// NewDaemon creates a new daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// OnEvent registers a function receiving every task event.
func (d *Daemon) OnEvent(f func(pixelclick.Event)) {
	d.events = f
}

// Run runs the tasks in real time. It blocks until the given context is
// canceled or the serial controller fails.
func (d *Daemon) Run(ctx context.Context) error {
	rt := executor.New(clock.New(), d.logger.With("component", "executor"))

	if d.cfg.Device == "" {
		if _, err := d.start(rt, NewConsoleStrip(d.logger)); err != nil {
			return err
		}
		return rt.Run(ctx)
	}

	return (&serialDaemon{Daemon: d}).Run(ctx, rt)
}

// Report summarizes a simulated run.
type Report struct {
	Elapsed time.Duration
	Started int
	Toggles int
	Frames  int
	Laps    int
	Presses map[gpio.ButtonID]int
	Aborted bool
}

// Simulate runs the tasks for the given duration of simulated time, as fast
// as possible, and reports what they did. Frames are counted, not displayed.
func (d *Daemon) Simulate(ctx context.Context, duration time.Duration) (*Report, error) {
	clk := clock.NewMock()
	rt := executor.New(clk, d.logger.With("component", "executor"))
	defer rt.Shutdown()

	report := &Report{
		Elapsed: duration,
		Presses: make(map[gpio.ButtonID]int),
	}

	strip := led.WriterFunc(func(led.LEDs) error {
		report.Frames++
		return nil
	})

	sim, err := d.startWithEvents(rt, strip, func(ev pixelclick.Event) {
		switch ev.Kind {
		case pixelclick.EventStarted:
			report.Started++
		case pixelclick.EventLap:
			report.Laps++
		case pixelclick.EventPressed:
			report.Presses[ev.Button]++
		case pixelclick.EventAborted:
			report.Aborted = true
		}
		if d.events != nil {
			d.events(ev)
		}
	})
	if err != nil {
		return nil, err
	}

	if err := rt.RunUntil(ctx, clk.Now().Add(duration)); err != nil {
		return nil, err
	}

	report.Toggles = sim.front[0].Edges()
	return report, nil
}

// simBoard is the simulated board along with its pins.
type simBoard struct {
	pixelclick.Board
	front   [2]*gpio.SimPin
	buttons map[gpio.ButtonID]*gpio.SimPin
}

func (d *Daemon) start(rt *executor.Runtime, strip led.Writer) (*simBoard, error) {
	return d.startWithEvents(rt, strip, d.events)
}

func (d *Daemon) startWithEvents(rt *executor.Runtime, strip led.Writer, events func(pixelclick.Event)) (*simBoard, error) {
	board, err := d.newBoard(strip)
	if err != nil {
		return nil, err
	}

	if _, err := pixelclick.Start(rt, board.Board, d.cfg.Config, d.logger, events); err != nil {
		return nil, errors.Wrap(err, "failed to start tasks")
	}

	return board, nil
}

func (d *Daemon) newBoard(strip led.Writer) (*simBoard, error) {
	b := &simBoard{
		buttons: make(map[gpio.ButtonID]*gpio.SimPin, len(d.cfg.Buttons)),
	}

	// Front LEDs start out of phase.
	for i, initial := range []gpio.Level{gpio.High, gpio.Low} {
		i := i
		pin := gpio.NewSimPin(bool(initial))
		pin.OnChange = func(level bool) {
			d.logger.Debug("front led changed", "led", i, "level", gpio.Level(level))
		}
		b.front[i] = pin
		b.Front[i] = gpio.NewOutput(pin, initial)
	}

	driver, err := led.NewDriver(strip, d.cfg.StripLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create strip driver")
	}
	b.Strip = driver

	held := make(map[gpio.ButtonID]bool, len(d.cfg.Held))
	for _, id := range d.cfg.Held {
		held[id] = true
	}

	for _, id := range d.cfg.Buttons {
		// Buttons are active low behind a pull-up.
		pin := gpio.NewSimPin(!held[id])
		button, err := gpio.NewButton(id, gpio.NewInput(pin, gpio.PullUp))
		if err != nil {
			return nil, err
		}
		b.buttons[id] = pin
		b.Buttons = append(b.Buttons, button)
	}

	return b, nil
}

type serialDaemon struct {
	*Daemon
	port serial.Port
}

func (d *serialDaemon) Run(ctx context.Context, rt *executor.Runtime) error {
	port, err := serial.Open(d.cfg.Device, &serial.Mode{
		BaudRate: d.cfg.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	d.port = port
	return d.serve(ctx, rt)
}

// serve runs the tasks against the controller on d.port. The strip is cleared
// once the tasks stop and before the port is closed.
func (d *serialDaemon) serve(ctx context.Context, rt *executor.Runtime) error {
	strip := ledserial.NewStrip(d.port)
	if _, err := d.start(rt, strip); err != nil {
		return err
	}

	stopped := make(chan struct{})

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		<-stopped
		d.logger.Debug("closing serial port")
		if err := d.port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		defer close(stopped)
		err := rt.Run(ctx)
		if err := strip.Clear(); err != nil {
			d.logger.Warn("failed to clear strip", "error", err)
		}
		return err
	})
	errg.Go(func() error {
		return d.readPackets(ctx)
	})

	return errg.Wait()
}

// readPackets logs what the controller reports back. A panic from the
// controller stops the daemon since the strip is gone.
func (d *serialDaemon) readPackets(ctx context.Context) error {
	if err := d.port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	for ctx.Err() == nil {
		p, err := ledserial.ReadOutgoingPacket(d.port, ledserial.ReadContext{})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			if errors.Is(err, ledserial.ErrChecksum) {
				d.logger.Warn("dropping corrupted packet from controller")
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		if err := d.handlePacket(p); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (d *serialDaemon) handlePacket(p ledserial.OutgoingPacket) error {
	switch p := p.(type) {
	case ledserial.AckPacket:
		d.logger.Debug(
			"received ack packet from controller",
			"acked_for", p.IncomingPacketType)

	case ledserial.ErrorPacket:
		d.logger.Warn(
			"received error packet from controller",
			"message", p.Message)

	case ledserial.PanicPacket:
		d.logger.Error("controller unrecoverably panicked")
		return errors.New("controller panicked")

	case ledserial.LogPacket:
		d.logger.Info(
			"received log packet from controller",
			"message", p.Message)

	default:
		return errors.Errorf("received unknown packet from controller: %s", p.Type())
	}

	return nil
}
