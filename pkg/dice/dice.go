// Package dice rolls standard XdY+Z notation.
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
)

var notationPattern = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Roll is the resolved outcome of a single notation roll.
type Roll struct {
	Notation string `json:"notation"`
	Results  []int  `json:"results"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
}

// InvalidNotationError indicates the notation string could not be
// parsed or describes an impossible roll.
type InvalidNotationError struct {
	Notation string
	Reason   string
}

func (e *InvalidNotationError) Error() string {
	return fmt.Sprintf("invalid dice notation %q: %s", e.Notation, e.Reason)
}

// Parse splits XdY+Z notation into count, sides, and modifier.
func Parse(notation string) (count, sides, modifier int, err error) {
	m := notationPattern.FindStringSubmatch(notation)
	if m == nil {
		return 0, 0, 0, &InvalidNotationError{Notation: notation, Reason: "expected XdY or XdY+Z"}
	}

	count, _ = strconv.Atoi(m[1])
	sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		modifier, _ = strconv.Atoi(m[3])
	}

	if count < 1 {
		return 0, 0, 0, &InvalidNotationError{Notation: notation, Reason: "must roll at least 1 die"}
	}
	if sides < 2 {
		return 0, 0, 0, &InvalidNotationError{Notation: notation, Reason: "die must have at least 2 sides"}
	}
	return count, sides, modifier, nil
}

// RollNotation parses and rolls the given notation using the package's
// default randomness source.
func RollNotation(notation string) (*Roll, error) {
	return rollWith(notation, func(sides int) int {
		return rand.Intn(sides) + 1
	})
}

// RollNotationWith rolls using a caller-supplied die function, which
// receives the side count and returns a value in [1, sides]. Tests use
// this to pin results.
func RollNotationWith(notation string, die func(sides int) int) (*Roll, error) {
	return rollWith(notation, die)
}

func rollWith(notation string, die func(sides int) int) (*Roll, error) {
	count, sides, modifier, err := Parse(notation)
	if err != nil {
		return nil, err
	}

	results := make([]int, count)
	total := modifier
	for i := range results {
		results[i] = die(sides)
		total += results[i]
	}

	return &Roll{
		Notation: notation,
		Results:  results,
		Modifier: modifier,
		Total:    total,
	}, nil
}
