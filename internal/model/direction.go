package model

import (
	"fmt"
	"strings"
)

// Direction is a compass heading; values are ordered clockwise
type Direction int

const (
	North Direction = iota
	East
	South
	West

	DirectionInvalid Direction = -1
)

const directionCount = 4

var directionNames = [directionCount]string{"north", "east", "south", "west"}

// Directions lists every valid direction in clockwise order
func Directions() []Direction {
	return []Direction{North, East, South, West}
}

// ParseDirection parses a direction name case-insensitively
// Single-letter abbreviations are accepted
func ParseDirection(s string) Direction {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range directionNames {
		if s == name || (len(s) == 1 && s[0] == name[0]) {
			return Direction(i)
		}
	}
	return DirectionInvalid
}

// Valid reports whether d is one of the four compass directions
func (d Direction) Valid() bool {
	return d >= North && d <= West
}

// Right turns 90 degrees clockwise
func (d Direction) Right() Direction {
	if !d.Valid() {
		return DirectionInvalid
	}
	return (d + 1) % directionCount
}

// Left turns 90 degrees anticlockwise
func (d Direction) Left() Direction {
	if !d.Valid() {
		return DirectionInvalid
	}
	return (d + directionCount - 1) % directionCount
}

// Opposite returns the reverse heading
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return DirectionInvalid
	}
	return (d + 2) % directionCount
}

func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return directionNames[d]
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed := ParseDirection(string(text))
	if parsed == DirectionInvalid {
		return fmt.Errorf("invalid direction %q", string(text))
	}
	*d = parsed
	return nil
}
