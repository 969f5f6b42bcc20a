package validation

import (
	"fmt"
	"math"
	"sort"

	"github.com/campuskit/faculty-admin-api/internal/models"
)

// IssueType classifies a validation finding.
type IssueType string

const (
	IssueOverlap    IssueType = "overlap"
	IssueImpossible IssueType = "impossible"
	IssuePattern    IssueType = "pattern"
	IssueAnomaly    IssueType = "anomaly"
)

// Severity ranks how strongly an issue should block acceptance.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is one validation finding over a set of work-log entries.
type Issue struct {
	Type       IssueType              `json:"type"`
	Severity   Severity               `json:"severity"`
	Message    string                 `json:"message"`
	LogIDs     []string               `json:"logIds"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Stats aggregates the analyzed entries.
type Stats struct {
	TotalLogs          int     `json:"totalLogs"`
	TotalHours         float64 `json:"totalHours"`
	AverageHoursPerDay float64 `json:"averageHoursPerDay"`
	MaxHoursInDay      float64 `json:"maxHoursInDay"`
}

// Result is the full validation report for one faculty member's entries.
type Result struct {
	IsValid bool    `json:"isValid"`
	Issues  []Issue `json:"issues"`
	Stats   Stats   `json:"stats"`
}

// Policy holds the tunable thresholds used by the detectors.
type Policy struct {
	// MaxSessionHours flags any single entry longer than this many hours.
	MaxSessionHours float64
	// DayHoursHigh is the physically impossible per-day total.
	DayHoursHigh float64
	// DayHoursMedium is the suspicious-but-possible per-day total.
	DayHoursMedium float64
	// RepeatedPatternMin is the occurrence count at which an identical
	// time-in/time-out pair is reported.
	RepeatedPatternMin int
	// ConsecutiveRunMin is the run length at which identical consecutive
	// entries are reported.
	ConsecutiveRunMin int
	// AnomalyMinSamples is the minimum entry count for IQR outlier detection.
	AnomalyMinSamples int
	// IQRMultiplier widens the interquartile range into outlier bounds.
	IQRMultiplier float64
}

// DefaultPolicy returns the standard detection thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxSessionHours:    12,
		DayHoursHigh:       24,
		DayHoursMedium:     16,
		RepeatedPatternMin: 5,
		ConsecutiveRunMin:  7,
		AnomalyMinSamples:  10,
		IQRMultiplier:      1.5,
	}
}

// Validator analyzes work-log snapshots for overlaps, impossible durations,
// repeating patterns, and statistical outliers. It is stateless and safe for
// concurrent use; each call reads only the snapshot it is given.
type Validator struct {
	policy Policy
}

// NewValidator constructs a Validator. Zero thresholds fall back to defaults.
func NewValidator(policy Policy) *Validator {
	def := DefaultPolicy()
	if policy.MaxSessionHours <= 0 {
		policy.MaxSessionHours = def.MaxSessionHours
	}
	if policy.DayHoursHigh <= 0 {
		policy.DayHoursHigh = def.DayHoursHigh
	}
	if policy.DayHoursMedium <= 0 {
		policy.DayHoursMedium = def.DayHoursMedium
	}
	if policy.RepeatedPatternMin <= 0 {
		policy.RepeatedPatternMin = def.RepeatedPatternMin
	}
	if policy.ConsecutiveRunMin <= 0 {
		policy.ConsecutiveRunMin = def.ConsecutiveRunMin
	}
	if policy.AnomalyMinSamples <= 0 {
		policy.AnomalyMinSamples = def.AnomalyMinSamples
	}
	if policy.IQRMultiplier <= 0 {
		policy.IQRMultiplier = def.IQRMultiplier
	}
	return &Validator{policy: policy}
}

// Validate runs every detector over the snapshot and aggregates stats. An
// empty snapshot yields a valid, all-zero result. Issues keep detector order:
// overlap, impossible, pattern, anomaly.
func (v *Validator) Validate(entries []models.WorkLog) Result {
	if len(entries) == 0 {
		return Result{IsValid: true, Issues: []Issue{}}
	}

	issues := v.detectOverlaps(entries)
	issues = append(issues, v.detectImpossibleHours(entries)...)
	issues = append(issues, v.detectPatterns(entries)...)
	issues = append(issues, v.detectAnomalies(entries)...)

	isValid := true
	for _, issue := range issues {
		if issue.Severity == SeverityHigh {
			isValid = false
			break
		}
	}

	return Result{
		IsValid: isValid,
		Issues:  issues,
		Stats:   calculateStats(entries),
	}
}

// dayGroups groups entries by date, preserving first-appearance order of dates
// and input order within each date.
type dayGroups struct {
	dates  []string
	byDate map[string][]models.WorkLog
}

func groupByDate(entries []models.WorkLog) dayGroups {
	groups := dayGroups{byDate: make(map[string][]models.WorkLog)}
	for _, entry := range entries {
		if _, seen := groups.byDate[entry.Date]; !seen {
			groups.dates = append(groups.dates, entry.Date)
		}
		groups.byDate[entry.Date] = append(groups.byDate[entry.Date], entry)
	}
	return groups
}

func (v *Validator) detectOverlaps(entries []models.WorkLog) []Issue {
	issues := []Issue{}
	groups := groupByDate(entries)

	for _, date := range groups.dates {
		dayLogs := groups.byDate[date]
		for i := 0; i < len(dayLogs); i++ {
			for j := i + 1; j < len(dayLogs); j++ {
				a, b := dayLogs[i], dayLogs[j]
				if !IntervalsOverlap(a.TimeIn, a.TimeOut, b.TimeIn, b.TimeOut) {
					continue
				}
				issues = append(issues, Issue{
					Type:       IssueOverlap,
					Severity:   SeverityHigh,
					Message:    fmt.Sprintf("Overlapping work hours detected on %s", date),
					LogIDs:     []string{a.ID, b.ID},
					Suggestion: "Please adjust the time entries to avoid overlap or remove duplicate entries.",
					Details: map[string]interface{}{
						"date": date,
						"log1": fmt.Sprintf("%s - %s (%s)", a.TimeIn, a.TimeOut, a.ActivityType),
						"log2": fmt.Sprintf("%s - %s (%s)", b.TimeIn, b.TimeOut, b.ActivityType),
					},
				})
			}
		}
	}
	return issues
}

func (v *Validator) detectImpossibleHours(entries []models.WorkLog) []Issue {
	issues := []Issue{}

	for _, entry := range entries {
		if entry.TotalHours < 0 {
			issues = append(issues, Issue{
				Type:       IssueImpossible,
				Severity:   SeverityHigh,
				Message:    fmt.Sprintf("Negative hours detected: %v hours", entry.TotalHours),
				LogIDs:     []string{entry.ID},
				Suggestion: "Time-out should be after time-in. Please correct the entry.",
				Details: map[string]interface{}{
					"date":    entry.Date,
					"timeIn":  entry.TimeIn,
					"timeOut": entry.TimeOut,
				},
			})
		}

		if entry.TotalHours > v.policy.MaxSessionHours {
			issues = append(issues, Issue{
				Type:       IssueImpossible,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Unusually long work session: %v hours", entry.TotalHours),
				LogIDs:     []string{entry.ID},
				Suggestion: fmt.Sprintf("A single work session exceeding %v hours is unusual. Please verify the entry.", v.policy.MaxSessionHours),
				Details: map[string]interface{}{
					"date":    entry.Date,
					"timeIn":  entry.TimeIn,
					"timeOut": entry.TimeOut,
				},
			})
		}
	}

	groups := groupByDate(entries)
	for _, date := range groups.dates {
		dayLogs := groups.byDate[date]
		total := 0.0
		ids := make([]string, 0, len(dayLogs))
		for _, entry := range dayLogs {
			total += entry.TotalHours
			ids = append(ids, entry.ID)
		}

		switch {
		case total > v.policy.DayHoursHigh:
			issues = append(issues, Issue{
				Type:       IssueImpossible,
				Severity:   SeverityHigh,
				Message:    fmt.Sprintf("Total hours exceed %v hours on %s: %.1f hours", v.policy.DayHoursHigh, date, total),
				LogIDs:     ids,
				Suggestion: "The total work hours for a day cannot exceed 24 hours. Please review all entries for this date.",
				Details:    map[string]interface{}{"date": date, "totalHours": total},
			})
		case total > v.policy.DayHoursMedium:
			issues = append(issues, Issue{
				Type:       IssueImpossible,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Very high total hours on %s: %.1f hours", date, total),
				LogIDs:     ids,
				Suggestion: fmt.Sprintf("Working more than %v hours in a day is unusual. Please verify all entries.", v.policy.DayHoursMedium),
				Details:    map[string]interface{}{"date": date, "totalHours": total},
			})
		}
	}

	return issues
}

func (v *Validator) detectPatterns(entries []models.WorkLog) []Issue {
	issues := []Issue{}

	// Identical time-in/time-out pairs across the whole snapshot.
	type timePair struct{ in, out string }
	var patterns []timePair
	patternIDs := make(map[timePair][]string)
	for _, entry := range entries {
		key := timePair{entry.TimeIn, entry.TimeOut}
		if _, seen := patternIDs[key]; !seen {
			patterns = append(patterns, key)
		}
		patternIDs[key] = append(patternIDs[key], entry.ID)
	}

	for _, key := range patterns {
		ids := patternIDs[key]
		if len(ids) < v.policy.RepeatedPatternMin {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssuePattern,
			Severity:   SeverityLow,
			Message:    fmt.Sprintf("Identical time pattern repeated %d times: %s - %s", len(ids), key.in, key.out),
			LogIDs:     ids,
			Suggestion: "While consistent schedules are common, verify that all these entries are accurate.",
			Details:    map[string]interface{}{"pattern": key.in + "-" + key.out, "count": len(ids)},
		})
	}

	// Runs of identical entries across consecutive dates in sorted order.
	sorted := make([]models.WorkLog, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	runLen := 1
	var runIDs []string
	flush := func() {
		if runLen >= v.policy.ConsecutiveRunMin {
			issues = append(issues, Issue{
				Type:       IssuePattern,
				Severity:   SeverityMedium,
				Message:    fmt.Sprintf("Identical entries for %d consecutive days", runLen),
				LogIDs:     runIDs,
				Suggestion: "Verify that these entries represent actual work and not copy-paste errors.",
				Details:    map[string]interface{}{"consecutiveDays": runLen},
			})
		}
		runLen = 1
		runIDs = nil
	}

	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.TimeIn == curr.TimeIn && prev.TimeOut == curr.TimeOut &&
			prev.ActivityType == curr.ActivityType && prev.Subject == curr.Subject {
			if runLen == 1 {
				runIDs = append(runIDs, prev.ID)
			}
			runIDs = append(runIDs, curr.ID)
			runLen++
		} else {
			flush()
		}
	}
	flush()

	return issues
}

func (v *Validator) detectAnomalies(entries []models.WorkLog) []Issue {
	issues := []Issue{}
	if len(entries) < v.policy.AnomalyMinSamples {
		// Insufficient sample for meaningful quartiles.
		return issues
	}

	hours := make([]float64, len(entries))
	for i, entry := range entries {
		hours[i] = entry.TotalHours
	}
	sort.Float64s(hours)

	// Raw index into the sorted slice, not an interpolated percentile.
	q1 := hours[int(math.Floor(float64(len(hours))*0.25))]
	q3 := hours[int(math.Floor(float64(len(hours))*0.75))]
	iqr := q3 - q1
	lower := q1 - v.policy.IQRMultiplier*iqr
	upper := q3 + v.policy.IQRMultiplier*iqr

	for _, entry := range entries {
		if entry.TotalHours >= lower && entry.TotalHours <= upper {
			continue
		}
		issues = append(issues, Issue{
			Type:       IssueAnomaly,
			Severity:   SeverityLow,
			Message:    fmt.Sprintf("Unusual work duration detected: %v hours on %s", entry.TotalHours, entry.Date),
			LogIDs:     []string{entry.ID},
			Suggestion: "This entry deviates significantly from your typical work pattern. Please verify.",
			Details: map[string]interface{}{
				"date":         entry.Date,
				"hours":        entry.TotalHours,
				"typicalRange": fmt.Sprintf("%.1f - %.1f hours", q1, q3),
			},
		})
	}
	return issues
}

func calculateStats(entries []models.WorkLog) Stats {
	var totalHours float64
	var dates []string
	perDay := make(map[string]float64)
	for _, entry := range entries {
		totalHours += entry.TotalHours
		if _, seen := perDay[entry.Date]; !seen {
			dates = append(dates, entry.Date)
		}
		perDay[entry.Date] += entry.TotalHours
	}

	avg := 0.0
	if len(dates) > 0 {
		avg = totalHours / float64(len(dates))
	}

	maxDay := 0.0
	for _, hours := range perDay {
		if hours > maxDay {
			maxDay = hours
		}
	}

	return Stats{
		TotalLogs:          len(entries),
		TotalHours:         round1(totalHours),
		AverageHoursPerDay: round1(avg),
		MaxHoursInDay:      round1(maxDay),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
