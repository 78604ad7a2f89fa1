package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// SerialReadWriter is a serial port that can be used as a packet stream.
type SerialReadWriter interface {
	io.ReadWriter
	io.ByteReader
}

// serialPort turns a machine.Serialer into a stream whose reads wait for data
// instead of returning nothing.
type serialPort struct {
	machine.Serialer
}

// WrapSerial wraps a machine.Serialer for use with the ledserial codec.
func WrapSerial(s machine.Serialer) SerialReadWriter {
	return serialPort{Serialer: s}
}

// Read fills b with whatever is buffered, waiting for at least one byte.
func (s serialPort) Read(b []byte) (int, error) {
	for s.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}

	var n int
	for n < len(b) && s.Buffered() > 0 {
		c, err := s.ReadByte()
		if err != nil {
			return n, err
		}
		b[n] = c
		n++
	}

	runtime.Gosched()
	return n, nil
}

func (s serialPort) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := s.WriteByte(c); err != nil {
			return i, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
