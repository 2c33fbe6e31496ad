package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrUnexpectedFormat = errors.New("unexpected sensor data format")

// Disabled never detects anything. Used when no sensor is attached.
type Disabled struct{}

func (Disabled) MeasureDistance(_ context.Context) (float64, error) {
	return math.Inf(1), nil
}

// ParseDistance parses a line such as "Distance: 12.5 cm".
func ParseDistance(line string) (float64, error) {
	line = strings.TrimSpace(line)

	_, value, ok := strings.Cut(line, "Distance: ")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedFormat, line)
	}

	value, _, _ = strings.Cut(value, " cm")

	distance, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnexpectedFormat, line)
	}

	if distance < 0 || math.IsNaN(distance) {
		return 0, fmt.Errorf("%w: negative distance %q", ErrUnexpectedFormat, line)
	}

	return distance, nil
}
