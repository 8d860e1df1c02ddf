package models

import (
	"errors"
	"testing"
	"time"
)

func TestWeekNumber(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-01-01", 1},
		{"2024-01-02", 1},
		{"2024-01-08", 1},
		{"2024-01-09", 2},
		{"2024-01-15", 2},
		{"2024-03-01", 9},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.date)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tt.date, err)
		}
		if got := WeekNumber(d, DefaultProgramStart); got != tt.want {
			t.Errorf("WeekNumber(%s) = %d; want %d", tt.date, got, tt.want)
		}
	}
}

func TestTargetForWeek(t *testing.T) {
	cases := map[int]int{0: 0, 1: 18, 2: 16, 9: 2, 10: 1, 11: 1, 12: 0, 13: 0}
	for week, want := range cases {
		if got := TargetForWeek(week); got != want {
			t.Errorf("TargetForWeek(%d) = %d; want %d", week, got, want)
		}
	}
}

func TestWorkoutEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   WorkoutEntry
		wantErr string
	}{
		{"valid", WorkoutEntry{Date: "2024-03-01", WorkoutDone: true, Duration: IntPtr(30), Energy: IntPtr(4), WeekNumber: 9}, ""},
		{"bad date", WorkoutEntry{Date: "03/01/2024", WeekNumber: 1}, "date"},
		{"zero week", WorkoutEntry{Date: "2024-03-01"}, "week_number"},
		{"zero duration", WorkoutEntry{Date: "2024-03-01", Duration: IntPtr(0), WeekNumber: 1}, "duration"},
		{"energy out of range", WorkoutEntry{Date: "2024-03-01", Energy: IntPtr(6), WeekNumber: 1}, "energy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestSmokingEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   SmokingEntry
		wantErr string
	}{
		{"valid", SmokingEntry{Date: "2024-03-01", CigarettesSmoked: 3, Target: 2, FirstCigTime: "08:15", CravingIntensity: IntPtr(2), WeekNumber: 9}, ""},
		{"negative count", SmokingEntry{Date: "2024-03-01", CigarettesSmoked: -1, WeekNumber: 1}, "cigarettes_smoked"},
		{"negative target", SmokingEntry{Date: "2024-03-01", Target: -2, WeekNumber: 1}, "target"},
		{"bad time", SmokingEntry{Date: "2024-03-01", FirstCigTime: "8am", WeekNumber: 1}, "first_cig_time"},
		{"craving out of range", SmokingEntry{Date: "2024-03-01", CravingIntensity: IntPtr(0), WeekNumber: 1}, "craving_intensity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, tt.entry.Validate(), tt.wantErr)
		})
	}
}

func checkValidation(t *testing.T, err error, field string) {
	t.Helper()
	if field == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != field {
		t.Errorf("expected field %q, got %+v", field, ve)
	}
}

func TestSnapshot_ValidateWrapsEntryDate(t *testing.T) {
	snap := Snapshot{
		Smoking:  []SmokingEntry{{Date: "2024-03-02", CigarettesSmoked: -4, WeekNumber: 9}},
		LastSync: time.Now(),
	}
	err := snap.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := err.Error(); got != "smoking 2024-03-02: invalid cigarettes_smoked: must not be negative" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestSmokingEntry_OnTarget(t *testing.T) {
	if !(SmokingEntry{CigarettesSmoked: 4, Target: 4}).OnTarget() {
		t.Error("equal to target should be on target")
	}
	if (SmokingEntry{CigarettesSmoked: 5, Target: 4}).OnTarget() {
		t.Error("above target should not be on target")
	}
}
