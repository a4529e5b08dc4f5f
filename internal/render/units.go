package render

import (
	"fmt"
	"strings"
)

const secondsPerYear = 3.15576e7

// timeUnits converts seconds into the named unit.
var timeUnits = map[string]float64{
	"s":   1,
	"yr":  secondsPerYear,
	"kyr": 1e3 * secondsPerYear,
	"Myr": 1e6 * secondsPerYear,
	"Gyr": 1e9 * secondsPerYear,
}

// CodeTime selects the snapshot's own time unit.
const CodeTime = "code"

type Corner int

const (
	UpperRight Corner = iota
	UpperLeft
	LowerRight
	LowerLeft
)

func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(s) {
	case "upper_right", "":
		return UpperRight, nil
	case "upper_left":
		return UpperLeft, nil
	case "lower_right":
		return LowerRight, nil
	case "lower_left":
		return LowerLeft, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCorner, s)
}

func ValidTimeUnit(unit string) bool {
	if unit == CodeTime {
		return true
	}
	_, ok := timeUnits[unit]
	return ok
}

// FormatTime renders a snapshot time, given in code units and seconds per code unit.
func FormatTime(code, unitTime float64, unit string) (string, error) {
	if unit == CodeTime {
		return fmt.Sprintf("t = %.3f", code), nil
	}
	div, ok := timeUnits[unit]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	if unitTime == 0 {
		unitTime = 1
	}
	return fmt.Sprintf("t = %.3f %s", code*unitTime/div, unit), nil
}

// UnitSeconds returns the length of a named time unit in seconds.
func UnitSeconds(unit string) (float64, error) {
	div, ok := timeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return div, nil
}
