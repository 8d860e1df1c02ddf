package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

// parseDate accepts YYYY-MM-DD or "today".
func parseDate(s string, now time.Time) (string, error) {
	if s == "today" {
		return now.Format(models.DateLayout), nil
	}
	if _, err := models.ParseDate(s); err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return s, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "y", "yes", "done", "true", "1":
		return true, nil
	case "n", "no", "skip", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q, want y or n", s)
}

// optionalInt treats "-" as unset.
func optionalInt(s string) (*int, error) {
	if s == "-" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

// parseWorkout reads: <date> <y|n> [duration|-] [energy|-] [notes...]
func parseWorkout(args []string, now time.Time) (models.WorkoutEntry, error) {
	var w models.WorkoutEntry
	if len(args) < 2 {
		return w, fmt.Errorf("usage: workout <date> <y|n> [minutes|-] [energy 1-5|-] [notes...]")
	}
	date, err := parseDate(args[0], now)
	if err != nil {
		return w, err
	}
	done, err := parseBool(args[1])
	if err != nil {
		return w, err
	}
	w.Date, w.WorkoutDone = date, done
	if len(args) > 2 {
		if w.Duration, err = optionalInt(args[2]); err != nil {
			return w, err
		}
	}
	if len(args) > 3 {
		if w.Energy, err = optionalInt(args[3]); err != nil {
			return w, err
		}
	}
	if len(args) > 4 {
		w.Notes = strings.Join(args[4:], " ")
	}
	return w, nil
}

// parseSmoking reads: <date> <count> [HH:MM|-] [craving|-] [notes...]
// The target is taken from the reduction schedule for the entry's week.
func parseSmoking(args []string, now time.Time) (models.SmokingEntry, error) {
	var e models.SmokingEntry
	if len(args) < 2 {
		return e, fmt.Errorf("usage: smoke <date> <count> [first HH:MM|-] [craving 1-5|-] [notes...]")
	}
	date, err := parseDate(args[0], now)
	if err != nil {
		return e, err
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return e, fmt.Errorf("invalid count %q", args[1])
	}
	e.Date, e.CigarettesSmoked = date, count
	if len(args) > 2 && args[2] != "-" {
		e.FirstCigTime = args[2]
	}
	if len(args) > 3 {
		if e.CravingIntensity, err = optionalInt(args[3]); err != nil {
			return e, err
		}
	}
	if len(args) > 4 {
		e.Notes = strings.Join(args[4:], " ")
	}

	d, _ := models.ParseDate(date)
	e.WeekNumber = models.WeekNumber(d, models.DefaultProgramStart)
	e.Target = models.TargetForWeek(e.WeekNumber)
	return e, nil
}
