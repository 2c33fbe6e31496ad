package sensor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 200 * time.Millisecond

	maxLineLength = 256
)

var errLineTooLong = fmt.Errorf("%w: line too long", ErrUnexpectedFormat)

// port is the part of serial.Port used by Serial.
type port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

// Serial reads distance lines written by the microcontroller on a serial port.
type Serial struct {
	mu      sync.Mutex
	port    port
	timeout time.Duration
	buf     []byte
}

func OpenSerial(name string, baudRate int, readTimeout time.Duration) (*Serial, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	p, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	s, err := newSerial(p, readTimeout)
	if err != nil {
		_ = p.Close()
		return nil, err
	}

	return s, nil
}

func newSerial(p port, readTimeout time.Duration) (*Serial, error) {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	// short per-call timeout so readLine can check its own deadline
	if err := p.SetReadTimeout(readTimeout / 4); err != nil {
		return nil, fmt.Errorf("failed to set serial read timeout: %w", err)
	}

	return &Serial{
		port:    p,
		timeout: readTimeout,
	}, nil
}

// MeasureDistance returns the distance in centimeters from the next complete line.
func (that *Serial) MeasureDistance(ctx context.Context) (float64, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	deadline := time.Now().Add(that.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	line, err := that.readLine(ctx, deadline)
	if err != nil {
		return 0, err
	}

	return ParseDistance(line)
}

func (that *Serial) Close() error {
	return that.port.Close()
}

func (that *Serial) readLine(ctx context.Context, deadline time.Time) (string, error) {
	chunk := make([]byte, 64)

	for {
		if i := bytes.IndexByte(that.buf, '\n'); i >= 0 {
			line := string(that.buf[:i])
			that.buf = that.buf[i+1:]
			return line, nil
		}

		if len(that.buf) > maxLineLength {
			that.buf = that.buf[:0]
			return "", errLineTooLong
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("serial read: %w", context.DeadlineExceeded)
		}

		n, err := that.port.Read(chunk)
		if n > 0 {
			that.buf = append(that.buf, chunk[:n]...)
		}

		if err != nil {
			return "", fmt.Errorf("failed to read from serial: %w", err)
		}
	}
}
