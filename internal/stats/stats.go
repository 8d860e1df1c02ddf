// Package stats derives read-only dashboard statistics from entry collections.
// Every function is defined on empty input and returns zero values instead of NaN.
package stats

import (
	"slices"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

// WorkoutStats summarizes a workout collection.
type WorkoutStats struct {
	TotalWorkouts     int     `json:"total_workouts"`
	CompletedWorkouts int     `json:"completed_workouts"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgDuration       float64 `json:"avg_duration"`
	AvgEnergy         float64 `json:"avg_energy"`
}

// SmokingStats summarizes a smoking collection.
type SmokingStats struct {
	AvgDaily     float64 `json:"avg_daily"`
	BestDay      int     `json:"best_day"`
	WorstDay     int     `json:"worst_day"`
	TotalSmoked  int     `json:"total_smoked"`
	DaysOnTarget int     `json:"days_on_target"`
}

// WeekProgress is the per-week average of smoked cigarettes and targets.
type WeekProgress struct {
	WeekNumber    int     `json:"week_number"`
	AvgCigarettes float64 `json:"avg_cigarettes"`
	AvgTarget     float64 `json:"avg_target"`
}

// Dashboard bundles everything the progress view renders.
type Dashboard struct {
	Workouts  WorkoutStats   `json:"workouts"`
	Smoking   SmokingStats   `json:"smoking"`
	Weekly    []WeekProgress `json:"weekly"`
	Reduction float64        `json:"reduction"`
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v int) {
	m.sum += float64(v)
	m.count++
}

func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Workouts computes totals and averages. Duration and energy are averaged
// over completed workouts that carry a non-zero value.
func Workouts(entries []models.WorkoutEntry) WorkoutStats {
	var (
		st       WorkoutStats
		duration mean
		energy   mean
	)
	st.TotalWorkouts = len(entries)
	for _, w := range entries {
		if !w.WorkoutDone {
			continue
		}
		st.CompletedWorkouts++
		if w.Duration != nil && *w.Duration != 0 {
			duration.add(*w.Duration)
		}
		if w.Energy != nil && *w.Energy != 0 {
			energy.add(*w.Energy)
		}
	}
	if st.TotalWorkouts > 0 {
		st.CompletionRate = float64(st.CompletedWorkouts) / float64(st.TotalWorkouts) * 100
	}
	st.AvgDuration = duration.value()
	st.AvgEnergy = energy.value()
	return st
}

// Smoking computes average, best, worst and total cigarettes.
func Smoking(entries []models.SmokingEntry) SmokingStats {
	var st SmokingStats
	if len(entries) == 0 {
		return st
	}
	st.BestDay = entries[0].CigarettesSmoked
	st.WorstDay = entries[0].CigarettesSmoked
	for _, e := range entries {
		st.TotalSmoked += e.CigarettesSmoked
		st.BestDay = min(st.BestDay, e.CigarettesSmoked)
		st.WorstDay = max(st.WorstDay, e.CigarettesSmoked)
		if e.OnTarget() {
			st.DaysOnTarget++
		}
	}
	st.AvgDaily = float64(st.TotalSmoked) / float64(len(entries))
	return st
}

// WeeklyProgress groups entries by week number, ascending.
func WeeklyProgress(entries []models.SmokingEntry) []WeekProgress {
	type acc struct{ cigs, target mean }
	weeks := make(map[int]*acc)
	for _, e := range entries {
		a, ok := weeks[e.WeekNumber]
		if !ok {
			a = &acc{}
			weeks[e.WeekNumber] = a
		}
		a.cigs.add(e.CigarettesSmoked)
		a.target.add(e.Target)
	}

	out := make([]WeekProgress, 0, len(weeks))
	for week, a := range weeks {
		out = append(out, WeekProgress{
			WeekNumber:    week,
			AvgCigarettes: a.cigs.value(),
			AvgTarget:     a.target.value(),
		})
	}
	slices.SortFunc(out, func(a, b WeekProgress) int { return a.WeekNumber - b.WeekNumber })
	return out
}

// Reduction is the percentage drop of the average from the first to the
// last week. It is 0 with fewer than two weeks, when the first week
// averaged zero, or when smoking went up.
func Reduction(weeks []WeekProgress) float64 {
	if len(weeks) < 2 {
		return 0
	}
	first, last := weeks[0].AvgCigarettes, weeks[len(weeks)-1].AvgCigarettes
	if first == 0 {
		return 0
	}
	r := (first - last) / first * 100
	if r < 0 {
		return 0
	}
	return r
}

// Summarize builds the full dashboard.
func Summarize(workouts []models.WorkoutEntry, smoking []models.SmokingEntry) Dashboard {
	weekly := WeeklyProgress(smoking)
	return Dashboard{
		Workouts:  Workouts(workouts),
		Smoking:   Smoking(smoking),
		Weekly:    weekly,
		Reduction: Reduction(weekly),
	}
}
