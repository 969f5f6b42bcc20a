package models

import "time"

// WorkloadSummary aggregates billing workload figures per faculty member.
type WorkloadSummary struct {
	FacultyID      string  `db:"faculty_id" json:"facultyId"`
	FacultyName    string  `db:"faculty_name" json:"facultyName"`
	EmployeeID     string  `db:"employee_id" json:"employeeId"`
	Department     string  `db:"department" json:"department"`
	Designation    string  `db:"designation" json:"designation"`
	TotalLectures  int     `json:"totalLectures"`
	TotalLabs      int     `json:"totalLabs"`
	TotalTutorials int     `json:"totalTutorials"`
	TotalWorkload  int     `json:"totalWorkload"`
	MonthCount     int     `json:"monthCount"`
	AvgWorkload    float64 `json:"avgWorkloadPerMonth"`
}

// WorkloadFilter captures filtering options for workload analytics.
type WorkloadFilter struct {
	Department  string
	Designation string
	Month       string
}

// SystemMetrics is a lightweight aggregate snapshot for dashboards,
// complementing the raw Prometheus scrape endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ValidationRuns           uint64    `json:"validationRuns"`
	ConflictChecks           uint64    `json:"conflictChecks"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// SalaryTrendPoint is one month of aggregate salary spend.
type SalaryTrendPoint struct {
	Month         string  `db:"month" json:"month"`
	TotalNet      float64 `db:"total_net" json:"totalNetSalary"`
	TotalBase     float64 `db:"total_base" json:"totalBaseSalary"`
	RecordCount   int     `db:"record_count" json:"recordCount"`
	AverageSalary float64 `db:"average_salary" json:"averageNetSalary"`
}

// DepartmentComparison aggregates salary spend per department for one month.
type DepartmentComparison struct {
	Department   string  `db:"department" json:"department"`
	FacultyCount int     `db:"faculty_count" json:"facultyCount"`
	TotalNet     float64 `db:"total_net" json:"totalNetSalary"`
	AverageNet   float64 `db:"average_net" json:"averageNetSalary"`
}
