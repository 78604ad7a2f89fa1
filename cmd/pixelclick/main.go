package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/DavSanchez/pixelclick"
	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/DavSanchez/pixelclick/internal/daemon"
	"github.com/spf13/pflag"
)

var (
	config   = ""
	verbose  = false
	device   = ""
	baud     = 115200
	buttons  = []int{1, 2, 3, 4}
	held     = []int{}
	simulate = time.Duration(0)
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file, board defaults if empty")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVarP(&device, "device", "d", device, "serial LED controller, frames are logged if empty")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate of the serial LED controller")
	pflag.IntSliceVar(&buttons, "buttons", buttons, "buttons present on the simulated board")
	pflag.IntSliceVar(&held, "held", held, "buttons held down for the whole run")
	pflag.DurationVar(&simulate, "simulate", simulate, "run this much simulated time as fast as possible, then print a report")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	boardCfg, err := readConfig()
	if err != nil {
		return err
	}

	cfg := &daemon.Config{
		Config:  *boardCfg,
		Device:  device,
		Baud:    baud,
		Buttons: buttonIDs(buttons),
		Held:    buttonIDs(held),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	d, err := daemon.NewDaemon(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if simulate > 0 {
		report, err := d.Simulate(ctx, simulate)
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		printReport(report)
		return nil
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*pixelclick.Config, error) {
	if config == "" {
		cfg := pixelclick.DefaultConfig()
		return &cfg, nil
	}

	f, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return pixelclick.ParseConfig(f)
}

func buttonIDs(ids []int) []gpio.ButtonID {
	out := make([]gpio.ButtonID, len(ids))
	for i, id := range ids {
		out[i] = gpio.ButtonID(id)
	}
	return out
}

func printReport(r *daemon.Report) {
	fmt.Printf("simulated %s\n", r.Elapsed)
	fmt.Printf("  tasks started:     %d\n", r.Started)
	fmt.Printf("  front led toggles: %d\n", r.Toggles)
	fmt.Printf("  panel frames:      %d\n", r.Frames)
	fmt.Printf("  rainbow laps:      %d\n", r.Laps)
	for id := gpio.Btn1; id <= gpio.Btn4; id++ {
		if n, ok := r.Presses[id]; ok {
			fmt.Printf("  %s presses:      %d\n", id, n)
		}
	}
	if r.Aborted {
		fmt.Println("  panel task aborted")
	}
}
