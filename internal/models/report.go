package models

import "time"

// ReportType enumerates exportable datasets.
type ReportType string

const (
	ReportBillingSummary ReportType = "billing_summary"
	ReportWorkLogDetail  ReportType = "worklog_detail"
	ReportWorkloadStats  ReportType = "workload_stats"
)

// ValidReportType reports whether t is an exportable dataset.
func (t ReportType) ValidReportType() bool {
	switch t {
	case ReportBillingSummary, ReportWorkLogDetail, ReportWorkloadStats:
		return true
	}
	return false
}

// ReportFormat enumerates supported output formats.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ValidFormat reports whether f is a supported output format.
func (f ReportFormat) ValidFormat() bool {
	return f == FormatCSV || f == FormatPDF
}

// ReportStatus tracks the lifecycle of an export job.
type ReportStatus string

const (
	ReportQueued     ReportStatus = "queued"
	ReportProcessing ReportStatus = "processing"
	ReportCompleted  ReportStatus = "completed"
	ReportFailed     ReportStatus = "failed"
)

// ReportTask is the queue payload for one export job. Workers look the
// full ReportJob up by ID so the persisted row stays authoritative.
type ReportTask struct {
	JobID string     `json:"jobId"`
	Type  ReportType `json:"type"`
}

// TaskID identifies the task for retry bookkeeping.
func (t ReportTask) TaskID() string { return t.JobID }

// TaskKind labels the task for queue logging.
func (t ReportTask) TaskKind() string { return string(t.Type) }

// ReportJob is one asynchronous export request. FilePath is relative to the
// export storage root and only set once the job completes.
type ReportJob struct {
	ID          string       `db:"id" json:"id"`
	Type        ReportType   `db:"type" json:"type"`
	Format      ReportFormat `db:"format" json:"format"`
	Status      ReportStatus `db:"status" json:"status"`
	RequestedBy string       `db:"requested_by" json:"requestedBy"`
	FacultyID   *string      `db:"faculty_id" json:"facultyId,omitempty"`
	Month       *string      `db:"month" json:"month,omitempty"`
	StartDate   *string      `db:"start_date" json:"startDate,omitempty"`
	EndDate     *string      `db:"end_date" json:"endDate,omitempty"`
	FilePath    *string      `db:"file_path" json:"-"`
	Error       *string      `db:"error" json:"error,omitempty"`
	Attempts    int          `db:"attempts" json:"attempts"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	StartedAt   *time.Time   `db:"started_at" json:"startedAt,omitempty"`
	FinishedAt  *time.Time   `db:"finished_at" json:"finishedAt,omitempty"`
}
