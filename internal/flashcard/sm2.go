package flashcard

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3
	MaxEasinessFactor     = 2.5

	firstInterval  = 1
	secondInterval = 6
)

// Advance computes the scheduling state after a review graded with grade at now.
// It does not touch UpdatedAt; the caller owns the audit timestamps.
func Advance(fields SchedulingFields, grade Grade, now time.Time) (SchedulingFields, error) {
	if !grade.IsValid() {
		return fields, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	ef := fields.EasinessFactor
	if ef == 0 {
		ef = DefaultEasinessFactor
	}

	repetitions, interval := fields.Repetitions, fields.Interval
	if !grade.IsPassing() {
		repetitions = 0
		interval = firstInterval
	} else {
		repetitions++
		interval = CalculateNextInterval(interval, ef, repetitions)
	}

	next := StartOfDay(now).AddDate(0, 0, interval)
	return SchedulingFields{
		EasinessFactor: UpdateEasinessFactor(ef, grade),
		Interval:       interval,
		Repetitions:    repetitions,
		NextReviewAt:   &next,
	}, nil
}

// UpdateEasinessFactor applies the SM-2 easiness delta and clamps the result
// to [MinEasinessFactor, MaxEasinessFactor].
func UpdateEasinessFactor(ef float64, grade Grade) float64 {
	q := float64(grade)
	delta := 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(MinEasinessFactor, math.Min(MaxEasinessFactor, ef+delta))
}

// CalculateNextInterval returns the interval in days for a passing review,
// where repetitions already includes the review being graded.
func CalculateNextInterval(lastInterval int, ef float64, repetitions int) int {
	switch repetitions {
	case 1:
		return firstInterval
	case 2:
		return secondInterval
	default:
		// round half up
		return int(math.Floor(float64(lastInterval)*ef + 0.5))
	}
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
