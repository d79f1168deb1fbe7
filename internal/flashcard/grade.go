package flashcard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidGrade is returned for a grade outside 0-5.
var ErrInvalidGrade = errors.New("invalid grade")

// Grade is the self-reported recall quality of a review, from 0 to 5.
type Grade int

const (
	Incorrect Grade = iota
	Hard
	Difficult
	Easy
	Good
	Perfect
)

// PassingGrade is the lowest grade that counts as a successful recall.
const PassingGrade = Easy

var gradeNames = [...]string{
	Incorrect: "incorrect",
	Hard:      "hard",
	Difficult: "difficult",
	Easy:      "easy",
	Good:      "good",
	Perfect:   "perfect",
}

// Grades lists every valid grade in ascending order.
func Grades() []Grade {
	return []Grade{Incorrect, Hard, Difficult, Easy, Good, Perfect}
}

// IsValid reports whether g is within 0-5.
func (g Grade) IsValid() bool {
	return g >= Incorrect && g <= Perfect
}

// IsPassing reports whether g resets the repetition streak or extends it.
func (g Grade) IsPassing() bool {
	return g >= PassingGrade
}

func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// ParseGrade accepts either a digit ("0".."5") or a grade name such as "good".
func ParseGrade(s string) (Grade, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		g := Grade(n)
		if !g.IsValid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, n)
		}
		return g, nil
	}
	for i, name := range gradeNames {
		if name == s {
			return Grade(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
