package models

import "time"

// Subject represents a catalogue subject offered to faculty.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	SubjectCode  string    `db:"subject_code" json:"subjectCode"`
	Department   string    `db:"department" json:"department"`
	SubjectType  string    `db:"subject_type" json:"subjectType"`
	Credits      float64   `db:"credits" json:"credits"`
	HoursPerWeek float64   `db:"hours_per_week" json:"hoursPerWeek"`
	SemesterID   *string   `db:"semester_id" json:"semesterId,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Active       bool      `db:"active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// SubjectFilter captures filtering options for listing subjects.
type SubjectFilter struct {
	Search      string
	Department  string
	SubjectType string
	SemesterID  string
	Active      *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// Semester represents an academic semester window.
type Semester struct {
	ID             string    `db:"id" json:"id"`
	Year           string    `db:"year" json:"year"`
	SemesterNumber int       `db:"semester_number" json:"semesterNumber"`
	SemesterName   string    `db:"semester_name" json:"semesterName"`
	StartDate      string    `db:"start_date" json:"startDate"`
	EndDate        string    `db:"end_date" json:"endDate"`
	Active         bool      `db:"active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// SubjectAssignment maps a subject to a faculty member for a semester.
type SubjectAssignment struct {
	ID         string    `db:"id" json:"id"`
	FacultyID  string    `db:"faculty_id" json:"facultyId"`
	SubjectID  string    `db:"subject_id" json:"subjectId"`
	SemesterID string    `db:"semester_id" json:"semesterId"`
	Role       string    `db:"role" json:"role"`
	AssignedAt time.Time `db:"assigned_at" json:"assignedAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
