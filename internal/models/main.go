// Package models defines the core data structures for tracked entries and sync snapshots.
package models

import "time"

// DateLayout is the calendar date format used as the key of every entry.
const DateLayout = "2006-01-02"

// WorkoutEntry records one day's workout.
type WorkoutEntry struct {
	// ID is an opaque identifier of the entry.
	ID string `json:"id"`
	// Date is the calendar date (YYYY-MM-DD); unique within a collection.
	Date string `json:"date"`
	// WorkoutDone reports whether the workout was completed.
	WorkoutDone bool `json:"workout_done"`
	// Duration is the workout length in minutes.
	Duration *int `json:"duration,omitempty"`
	// Energy is a self-reported energy rating from 1 to 5.
	Energy *int `json:"energy,omitempty"`
	// Notes holds free-text notes.
	Notes string `json:"notes,omitempty"`
	// WeekNumber is the program week the date falls in.
	WeekNumber int `json:"week_number"`
}

// EntryDate returns the date key of the entry.
func (w WorkoutEntry) EntryDate() string { return w.Date }

// Week returns the stored week number.
func (w WorkoutEntry) Week() int { return w.WeekNumber }

// SmokingEntry records one day's smoking.
type SmokingEntry struct {
	// ID is an opaque identifier of the entry.
	ID string `json:"id"`
	// Date is the calendar date (YYYY-MM-DD); unique within a collection.
	Date string `json:"date"`
	// CigarettesSmoked is the number of cigarettes smoked that day.
	CigarettesSmoked int `json:"cigarettes_smoked"`
	// Target is the allowed number of cigarettes for that day.
	Target int `json:"target"`
	// FirstCigTime is the time of day (HH:MM) of the first cigarette.
	FirstCigTime string `json:"first_cig_time,omitempty"`
	// CravingIntensity is a rating from 1 to 5.
	CravingIntensity *int `json:"craving_intensity,omitempty"`
	// Notes holds free-text notes.
	Notes string `json:"notes,omitempty"`
	// WeekNumber is the program week the date falls in.
	WeekNumber int `json:"week_number"`
}

// EntryDate returns the date key of the entry.
func (s SmokingEntry) EntryDate() string { return s.Date }

// Week returns the stored week number.
func (s SmokingEntry) Week() int { return s.WeekNumber }

// OnTarget reports whether the day stayed within its target.
func (s SmokingEntry) OnTarget() bool { return s.CigarettesSmoked <= s.Target }

// Snapshot is a full copy of both collections exchanged with the remote store.
type Snapshot struct {
	Workouts []WorkoutEntry `json:"workouts"`
	Smoking  []SmokingEntry `json:"smoking"`
	// LastSync is the time the snapshot was produced.
	LastSync time.Time `json:"lastSync"`
	// UserID identifies the owner (device or user) of the snapshot.
	UserID string `json:"userId"`
}

// Export is the user-facing backup document.
type Export struct {
	Workouts   []WorkoutEntry `json:"workouts"`
	Smoking    []SmokingEntry `json:"smoking"`
	ExportDate time.Time      `json:"exportDate"`
	UserID     string         `json:"userId"`
}

// IntPtr returns a pointer to v. Handy for the optional entry fields.
func IntPtr(v int) *int { return &v }
