package models

import "time"

// ActivityType enumerates the kinds of logged faculty work.
type ActivityType string

const (
	ActivityLecture         ActivityType = "lecture"
	ActivityLab             ActivityType = "lab"
	ActivityTutorial        ActivityType = "tutorial"
	ActivityExamDuty        ActivityType = "exam_duty"
	ActivityProjectGuidance ActivityType = "project_guidance"
	ActivityOther           ActivityType = "other"
)

// ValidActivity reports whether the activity type is part of the closed set.
func (a ActivityType) ValidActivity() bool {
	switch a {
	case ActivityLecture, ActivityLab, ActivityTutorial,
		ActivityExamDuty, ActivityProjectGuidance, ActivityOther:
		return true
	}
	return false
}

// WorkLog is one recorded interval of a faculty member's time spent on a
// dated activity. Date is ISO YYYY-MM-DD, TimeIn/TimeOut are 24-hour HH:MM.
// TotalHours is precomputed from the interval and may be negative when the
// source row is malformed; the validator surfaces that rather than rejecting it.
type WorkLog struct {
	ID           string       `db:"id" json:"id"`
	FacultyID    string       `db:"faculty_id" json:"facultyId"`
	Date         string       `db:"date" json:"date"`
	TimeIn       string       `db:"time_in" json:"timeIn"`
	TimeOut      string       `db:"time_out" json:"timeOut"`
	Department   string       `db:"department" json:"department"`
	Subject      string       `db:"subject" json:"subject"`
	ActivityType ActivityType `db:"activity_type" json:"activityType"`
	Description  *string      `db:"description" json:"description,omitempty"`
	TotalHours   float64      `db:"total_hours" json:"totalHours"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// WorkLogFilter captures filtering options for listing work logs.
type WorkLogFilter struct {
	FacultyID    string
	StartDate    string
	EndDate      string
	Department   string
	ActivityType string
	Page         int
	PageSize     int
}
