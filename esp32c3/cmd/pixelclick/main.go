package main

import (
	"context"
	"log/slog"
	"machine"

	"github.com/DavSanchez/pixelclick"
	"github.com/DavSanchez/pixelclick/esp32c3"
	"github.com/DavSanchez/pixelclick/executor"
	"github.com/DavSanchez/pixelclick/gpio"
	"github.com/DavSanchez/pixelclick/led"
	"tinygo.org/x/drivers/ws2812"
)

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	board, err := setupBoard()
	if err != nil {
		logger.Error("failed to set up board", "error", err)
		halt()
	}

	rt := executor.New(nil, logger)
	if _, err := pixelclick.Start(rt, board, pixelclick.DefaultConfig(), logger, nil); err != nil {
		logger.Error("failed to start tasks", "error", err)
		halt()
	}

	if err := rt.Run(context.Background()); err != nil {
		logger.Error("executor stopped", "error", err)
		halt()
	}
}

func setupBoard() (pixelclick.Board, error) {
	var board pixelclick.Board

	// Red starts on, blue starts off.
	for i, initial := range []gpio.Level{gpio.High, gpio.Low} {
		pin := machine.Pin(esp32c3.FrontPins[i])
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		board.Front[i] = gpio.NewOutput(pin, initial)
	}

	panelPin := machine.Pin(esp32c3.PanelPin)
	panelPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	strip, err := led.NewDriver(newWS2812Strip(ws2812.New(panelPin), esp32c3.NumLEDs), esp32c3.NumLEDs)
	if err != nil {
		return board, err
	}
	board.Strip = strip

	var buttonErr error
	esp32c3.EachButton(func(id gpio.ButtonID, n int) {
		pin := machine.Pin(n)
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

		button, err := gpio.NewButton(id, gpio.NewInput(pin, gpio.PullUp))
		if err != nil {
			buttonErr = err
			return
		}
		board.Buttons = append(board.Buttons, button)
	})

	return board, buttonErr
}

func halt() {
	select {}
}
