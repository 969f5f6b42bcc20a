package models

import "time"

// Faculty represents an employment record tied to a user account.
type Faculty struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	EmployeeID  string    `db:"employee_id" json:"employeeId"`
	Department  string    `db:"department" json:"department"`
	Designation string    `db:"designation" json:"designation"`
	JoiningDate string    `db:"joining_date" json:"joiningDate"`
	BaseSalary  float64   `db:"base_salary" json:"baseSalary"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	Address     *string   `db:"address" json:"address,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// FacultyProfile joins faculty employment data with the owning user account.
type FacultyProfile struct {
	Faculty
	UserName  string `db:"user_name" json:"userName"`
	UserEmail string `db:"user_email" json:"userEmail"`
}

// FacultyFilter captures filtering options for listing faculty.
type FacultyFilter struct {
	Search      string
	Department  string
	Designation string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
