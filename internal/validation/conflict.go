package validation

import (
	"errors"
	"fmt"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

// ErrInvalidRange marks a candidate slot whose end time is not after its
// start time. Returning an error beats reporting a misleading "no conflict".
var ErrInvalidRange = errors.New("end time must be after start time")

// Slot is a proposed weekly timetable slot to test against existing entries.
type Slot struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ConflictResult reports whether a proposed slot collides with existing ones.
type ConflictResult struct {
	HasConflict bool               `json:"hasConflict"`
	Conflicts   []models.Timetable `json:"conflicts"`
	Message     string             `json:"message"`
}

// CheckConflict tests a candidate slot against a faculty member's existing
// timetable. Entries belonging to other faculty are ignored, as is the entry
// matching excludeID (used when re-checking an edit against itself). The check
// is pure and synchronous; callers pass an immutable snapshot.
func CheckConflict(facultyID string, candidate Slot, existing []models.Timetable, excludeID string) (ConflictResult, error) {
	if TimeToMinutes(candidate.EndTime) <= TimeToMinutes(candidate.StartTime) {
		return ConflictResult{}, ErrInvalidRange
	}

	conflicts := []models.Timetable{}
	for _, entry := range existing {
		if facultyID != "" && entry.FacultyID != facultyID {
			continue
		}
		if excludeID != "" && entry.ID == excludeID {
			continue
		}
		if entry.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if IntervalsOverlap(candidate.StartTime, candidate.EndTime, entry.StartTime, entry.EndTime) {
			conflicts = append(conflicts, entry)
		}
	}

	result := ConflictResult{HasConflict: len(conflicts) > 0, Conflicts: conflicts}
	if result.HasConflict {
		result.Message = fmt.Sprintf("Time slot conflicts with %d existing entries on %s", len(conflicts), candidate.DayOfWeek)
		if len(conflicts) == 1 {
			result.Message = fmt.Sprintf("Time slot conflicts with an existing entry on %s (%s - %s)",
				candidate.DayOfWeek, conflicts[0].StartTime, conflicts[0].EndTime)
		}
	} else {
		result.Message = "No conflicts found"
	}
	return result, nil
}
