package sensor

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDistance(t *testing.T) {
	cases := []struct {
		line     string
		expected float64
	}{
		{line: "Distance: 12.5 cm", expected: 12.5},
		{line: "Distance: 30 cm\r", expected: 30},
		{line: "Distance: 0.0 cm", expected: 0},
		{line: "Distance: 142", expected: 142},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			distance, err := ParseDistance(tc.line)

			require.NoError(t, err)
			assert.InDelta(t, tc.expected, distance, 1e-9)
		})
	}

	for _, line := range []string{"", "hello", "Distance: far cm", "Distance: -3 cm"} {
		t.Run("invalid "+line, func(t *testing.T) {
			_, err := ParseDistance(line)

			require.ErrorIs(t, err, ErrUnexpectedFormat)
		})
	}
}

func TestDisabled(t *testing.T) {
	distance, err := Disabled{}.MeasureDistance(context.Background())

	require.NoError(t, err)
	assert.True(t, math.IsInf(distance, 1))
}

// fakePort hands out its data in small chunks and then reports timeouts as empty reads.
type fakePort struct {
	data    []byte
	chunk   int
	timeout time.Duration
	closed  bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		time.Sleep(f.timeout)
		return 0, nil
	}

	n := min(f.chunk, len(p), len(f.data))
	copy(p, f.data[:n])
	f.data = f.data[n:]
	return n, nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.timeout = t
	return nil
}

func TestSerial_MeasureDistance(t *testing.T) {
	ctx := context.Background()

	t.Run("Reads lines split across reads", func(t *testing.T) {
		// Given: a port that delivers two lines three bytes at a time
		p := &fakePort{data: []byte("Distance: 25.5 cm\r\nDistance: 80 cm\r\n"), chunk: 3}
		s, err := newSerial(p, 100*time.Millisecond)
		require.NoError(t, err)

		// When: two measurements are taken
		first, err := s.MeasureDistance(ctx)
		require.NoError(t, err)
		second, err := s.MeasureDistance(ctx)
		require.NoError(t, err)

		// Then: both lines are parsed in order
		assert.InDelta(t, 25.5, first, 1e-9)
		assert.InDelta(t, 80.0, second, 1e-9)
	})

	t.Run("Unexpected line is an error", func(t *testing.T) {
		// Given: a port that sends a debug line
		p := &fakePort{data: []byte("booting\n"), chunk: 64}
		s, err := newSerial(p, 100*time.Millisecond)
		require.NoError(t, err)

		// When: a measurement is taken
		_, err = s.MeasureDistance(ctx)

		// Then: the format error is returned
		require.ErrorIs(t, err, ErrUnexpectedFormat)
	})

	t.Run("Silent port times out", func(t *testing.T) {
		// Given: a port with no data
		p := &fakePort{chunk: 64}
		s, err := newSerial(p, 40*time.Millisecond)
		require.NoError(t, err)

		// When: a measurement is taken
		start := time.Now()
		_, err = s.MeasureDistance(ctx)

		// Then: it fails with a deadline error within a bounded time
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Overlong line is dropped", func(t *testing.T) {
		// Given: a port streaming garbage without newlines
		p := &fakePort{data: []byte(strings.Repeat("x", maxLineLength+10)), chunk: 64}
		s, err := newSerial(p, time.Second)
		require.NoError(t, err)

		// When: a measurement is taken
		_, err = s.MeasureDistance(ctx)

		// Then: the line is rejected
		require.ErrorIs(t, err, ErrUnexpectedFormat)
	})

	t.Run("Close closes the port", func(t *testing.T) {
		p := &fakePort{chunk: 1}
		s, err := newSerial(p, time.Second)
		require.NoError(t, err)

		require.NoError(t, s.Close())
		assert.True(t, p.closed)
	})
}

var _ io.ReadCloser = (*fakePort)(nil)
