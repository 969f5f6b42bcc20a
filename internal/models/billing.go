package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// BillingStatus enumerates the lifecycle of a salary record.
type BillingStatus string

const (
	BillingPending   BillingStatus = "pending"
	BillingProcessed BillingStatus = "processed"
	BillingPaid      BillingStatus = "paid"
)

// ValidStatus reports whether the status is a known billing state.
func (s BillingStatus) ValidStatus() bool {
	switch s {
	case BillingPending, BillingProcessed, BillingPaid:
		return true
	}
	return false
}

// WorkloadVersion is the current serialization version for Workload values.
const WorkloadVersion = 1

// Workload is the teaching workload captured on a billing record. It is stored
// as versioned JSON; unreadable stored values scan to the zero workload with
// Fallback set so callers can distinguish defaults from real data.
type Workload struct {
	Version   int  `json:"v"`
	Lectures  int  `json:"lectures"`
	Labs      int  `json:"labs"`
	Tutorials int  `json:"tutorials"`
	Fallback  bool `json:"-"`
}

// Total returns the combined number of workload units.
func (w Workload) Total() int {
	return w.Lectures + w.Labs + w.Tutorials
}

// Value implements driver.Valuer, persisting the workload as versioned JSON.
func (w Workload) Value() (driver.Value, error) {
	w.Version = WorkloadVersion
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal workload: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner. Legacy rows written without a version field
// still decode; rows that fail to decode yield the explicit fallback value.
func (w *Workload) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = Workload{Fallback: true}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan workload: unsupported type %T", src)
	}

	var decoded Workload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		*w = Workload{Fallback: true}
		return nil
	}
	if decoded.Version == 0 {
		decoded.Version = WorkloadVersion
	}
	*w = decoded
	return nil
}

// Billing represents a monthly salary record for a faculty member.
type Billing struct {
	ID         string        `db:"id" json:"id"`
	FacultyID  string        `db:"faculty_id" json:"facultyId"`
	Month      string        `db:"month" json:"month"`
	BaseSalary float64       `db:"base_salary" json:"baseSalary"`
	Allowances float64       `db:"allowances" json:"allowances"`
	Deductions float64       `db:"deductions" json:"deductions"`
	NetSalary  float64       `db:"net_salary" json:"netSalary"`
	Workload   Workload      `db:"workload" json:"workload"`
	Status     BillingStatus `db:"status" json:"status"`
	GeneratedAt time.Time    `db:"generated_at" json:"generatedAt"`
	PaidAt     *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

// BillingDetail joins a billing record with faculty display fields.
type BillingDetail struct {
	Billing
	EmployeeID  string `db:"employee_id" json:"employeeId"`
	FacultyName string `db:"faculty_name" json:"facultyName"`
	Department  string `db:"department" json:"department,omitempty"`
	Designation string `db:"designation" json:"designation,omitempty"`
}

// BillingFilter captures filtering options for listing billing records.
type BillingFilter struct {
	FacultyID string
	Month     string
	Status    string
	Search    string
	Page      int
	PageSize  int
}
