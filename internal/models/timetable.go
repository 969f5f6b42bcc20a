package models

import "time"

// DaysOfWeek lists the schedulable days in display order.
var DaysOfWeek = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ValidDayOfWeek reports whether day is one of the schedulable weekdays.
func ValidDayOfWeek(day string) bool {
	for _, d := range DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// Timetable represents one recurring weekly class slot assigned to a faculty
// member. StartTime and EndTime are 24-hour HH:MM wall-clock strings.
type Timetable struct {
	ID         string    `db:"id" json:"id"`
	FacultyID  string    `db:"faculty_id" json:"facultyId"`
	SubjectID  string    `db:"subject_id" json:"subjectId"`
	SemesterID string    `db:"semester_id" json:"semesterId"`
	DayOfWeek  string    `db:"day_of_week" json:"dayOfWeek"`
	StartTime  string    `db:"start_time" json:"startTime"`
	EndTime    string    `db:"end_time" json:"endTime"`
	RoomNumber *string   `db:"room_number" json:"roomNumber,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// TimetableDetail joins a timetable slot with subject display fields.
type TimetableDetail struct {
	Timetable
	SubjectName string `db:"subject_name" json:"subjectName"`
	SubjectCode string `db:"subject_code" json:"subjectCode"`
}

// TimetableFilter captures filtering options for listing timetable slots.
type TimetableFilter struct {
	FacultyID  string
	SemesterID string
	DayOfWeek  string
	Page       int
	PageSize   int
}
