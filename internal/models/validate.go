package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a malformed entry field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return invalid("date", "expected YYYY-MM-DD")
	}
	return nil
}

func validateRating(field string, v *int) error {
	if v != nil && (*v < 1 || *v > 5) {
		return invalid(field, "must be between 1 and 5")
	}
	return nil
}

// Validate checks the entry before it reaches a store.
func (w WorkoutEntry) Validate() error {
	if err := validateDate(w.Date); err != nil {
		return err
	}
	if w.WeekNumber < 1 {
		return invalid("week_number", "must be positive")
	}
	if w.Duration != nil && *w.Duration <= 0 {
		return invalid("duration", "must be positive")
	}
	return validateRating("energy", w.Energy)
}

// Validate checks the entry before it reaches a store.
func (s SmokingEntry) Validate() error {
	if err := validateDate(s.Date); err != nil {
		return err
	}
	if s.WeekNumber < 1 {
		return invalid("week_number", "must be positive")
	}
	if s.CigarettesSmoked < 0 {
		return invalid("cigarettes_smoked", "must not be negative")
	}
	if s.Target < 0 {
		return invalid("target", "must not be negative")
	}
	if s.FirstCigTime != "" {
		if _, err := time.Parse("15:04", s.FirstCigTime); err != nil {
			return invalid("first_cig_time", "expected HH:MM")
		}
	}
	return validateRating("craving_intensity", s.CravingIntensity)
}

// Validate checks every entry of the snapshot.
func (s Snapshot) Validate() error {
	for _, w := range s.Workouts {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("workout %s: %w", w.Date, err)
		}
	}
	for _, e := range s.Smoking {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("smoking %s: %w", e.Date, err)
		}
	}
	return nil
}
