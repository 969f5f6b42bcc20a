package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/campuskit/faculty-admin-api/internal/models"
	"github.com/campuskit/faculty-admin-api/pkg/export"
	"github.com/campuskit/faculty-admin-api/pkg/storage"
)

// ExportResult describes a rendered artifact in export storage.
type ExportResult struct {
	FilePath string
	Size     int
}

// ExportService renders report datasets to files in export storage.
type ExportService struct {
	billings  analyticsBillingRepository
	workLogs  billingWorkLogRepository
	analytics *AnalyticsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(billings analyticsBillingRepository, workLogs billingWorkLogRepository, analytics *AnalyticsService, store *storage.LocalStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		billings:  billings,
		workLogs:  workLogs,
		analytics: analytics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		logger:    logger,
	}
}

// Generate builds the dataset for the job, renders it in the requested
// format, and writes the artifact to export storage.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	dataset, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.FormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.FormatPDF:
		payload, err = s.pdf.Render(dataset)
	default:
		return nil, fmt.Errorf("unsupported format %q", job.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	filename := fmt.Sprintf("%s-%s.%s", job.Type, job.ID, job.Format)
	relPath, err := s.store.Save(filename, payload)
	if err != nil {
		return nil, fmt.Errorf("store artifact: %w", err)
	}

	s.logger.Info("export rendered",
		zap.String("jobId", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Format)),
		zap.Int("bytes", len(payload)))
	return &ExportResult{FilePath: relPath, Size: len(payload)}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	switch job.Type {
	case models.ReportBillingSummary:
		return s.billingDataset(ctx, job)
	case models.ReportWorkLogDetail:
		return s.workLogDataset(ctx, job)
	case models.ReportWorkloadStats:
		return s.workloadDataset(ctx, job)
	default:
		return export.Dataset{}, fmt.Errorf("unknown report type %q", job.Type)
	}
}

func (s *ExportService) billingDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	filter := models.WorkloadFilter{}
	if job.Month != nil {
		filter.Month = *job.Month
	}
	records, err := s.billings.ListForAnalytics(ctx, filter)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load billing rows: %w", err)
	}

	headers := []string{"Employee ID", "Faculty", "Month", "Base Salary", "Allowances", "Deductions", "Net Salary", "Status"}
	rows := make([]map[string]string, 0, len(records))
	var totalNet float64
	for _, record := range records {
		if job.FacultyID != nil && record.FacultyID != *job.FacultyID {
			continue
		}
		totalNet += record.NetSalary
		rows = append(rows, map[string]string{
			"Employee ID": record.EmployeeID,
			"Faculty":     record.FacultyName,
			"Month":       record.Month,
			"Base Salary": formatAmount(record.BaseSalary),
			"Allowances":  formatAmount(record.Allowances),
			"Deductions":  formatAmount(record.Deductions),
			"Net Salary":  formatAmount(record.NetSalary),
			"Status":      string(record.Status),
		})
	}
	title := "Billing Summary"
	if job.Month != nil {
		title = fmt.Sprintf("Billing Summary %s", *job.Month)
	}
	return export.Dataset{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Numeric: map[string]bool{"Base Salary": true, "Allowances": true, "Deductions": true, "Net Salary": true},
		Footer: map[string]string{
			"Faculty":    fmt.Sprintf("Total (%d records)", len(rows)),
			"Net Salary": formatAmount(totalNet),
		},
	}, nil
}

func (s *ExportService) workLogDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	if job.FacultyID == nil {
		return export.Dataset{}, fmt.Errorf("worklog export requires a faculty")
	}
	start, end := "", ""
	if job.StartDate != nil {
		start = *job.StartDate
	}
	if job.EndDate != nil {
		end = *job.EndDate
	}
	logs, err := s.workLogs.ListByFaculty(ctx, *job.FacultyID, start, end)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load work logs: %w", err)
	}

	headers := []string{"Date", "Time In", "Time Out", "Department", "Subject", "Activity", "Hours"}
	rows := make([]map[string]string, 0, len(logs))
	var totalHours float64
	for _, log := range logs {
		totalHours += log.TotalHours
		rows = append(rows, map[string]string{
			"Date":       log.Date,
			"Time In":    log.TimeIn,
			"Time Out":   log.TimeOut,
			"Department": log.Department,
			"Subject":    log.Subject,
			"Activity":   string(log.ActivityType),
			"Hours":      strconv.FormatFloat(log.TotalHours, 'f', 2, 64),
		})
	}
	return export.Dataset{
		Title:   "Work Log Detail",
		Headers: headers,
		Rows:    rows,
		Numeric: map[string]bool{"Hours": true},
		Footer: map[string]string{
			"Activity": fmt.Sprintf("Total (%d entries)", len(rows)),
			"Hours":    strconv.FormatFloat(totalHours, 'f', 2, 64),
		},
	}, nil
}

func (s *ExportService) workloadDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, error) {
	filter := models.WorkloadFilter{}
	if job.Month != nil {
		filter.Month = *job.Month
	}
	summaries, err := s.analytics.WorkloadSummaries(ctx, filter)
	if err != nil {
		return export.Dataset{}, fmt.Errorf("load workload summaries: %w", err)
	}

	headers := []string{"Employee ID", "Faculty", "Department", "Lectures", "Labs", "Tutorials", "Total", "Avg / Month"}
	rows := make([]map[string]string, 0, len(summaries))
	var grandTotal int
	for _, summary := range summaries {
		grandTotal += summary.TotalWorkload
		rows = append(rows, map[string]string{
			"Employee ID": summary.EmployeeID,
			"Faculty":     summary.FacultyName,
			"Department":  summary.Department,
			"Lectures":    strconv.Itoa(summary.TotalLectures),
			"Labs":        strconv.Itoa(summary.TotalLabs),
			"Tutorials":   strconv.Itoa(summary.TotalTutorials),
			"Total":       strconv.Itoa(summary.TotalWorkload),
			"Avg / Month": strconv.FormatFloat(summary.AvgWorkload, 'f', 1, 64),
		})
	}
	return export.Dataset{
		Title:   "Workload Statistics",
		Headers: headers,
		Rows:    rows,
		Numeric: map[string]bool{"Lectures": true, "Labs": true, "Tutorials": true, "Total": true, "Avg / Month": true},
		Footer: map[string]string{
			"Faculty": fmt.Sprintf("Total (%d faculty)", len(rows)),
			"Total":   strconv.Itoa(grandTotal),
		},
	}, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
