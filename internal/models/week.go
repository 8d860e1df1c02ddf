package models

import (
	"fmt"
	"math"
	"time"
)

// DefaultProgramStart is the first day of the reduction program.
var DefaultProgramStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// smokingTargets is the daily cigarette allowance for weeks 1..12.
var smokingTargets = []int{18, 16, 14, 12, 10, 8, 6, 4, 2, 1, 1, 0}

// ParseDate parses a YYYY-MM-DD date key.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// WeekNumber returns the program week that date falls in, counting whole
// days from start and rounding up to weeks. The start date itself is week 1.
func WeekNumber(date, start time.Time) int {
	days := math.Ceil(math.Abs(date.Sub(start).Hours()) / 24)
	week := int(math.Ceil(days / 7))
	if week < 1 {
		return 1
	}
	return week
}

// TargetForWeek returns the daily cigarette target of a program week.
// Weeks outside the schedule target zero.
func TargetForWeek(week int) int {
	if week < 1 || week > len(smokingTargets) {
		return 0
	}
	return smokingTargets[week-1]
}
