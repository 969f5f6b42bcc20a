package validation

import (
	"strconv"
	"strings"
)

// TimeToMinutes converts an HH:MM wall-clock string to minutes from midnight.
// Format validation happens upstream; malformed components parse as zero.
func TimeToMinutes(t string) int {
	parts := strings.SplitN(t, ":", 2)
	hours, _ := strconv.Atoi(parts[0])
	minutes := 0
	if len(parts) == 2 {
		minutes, _ = strconv.Atoi(parts[1])
	}
	return hours*60 + minutes
}

// IntervalsOverlap reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Back-to-back intervals do not overlap.
func IntervalsOverlap(startA, endA, startB, endB string) bool {
	sa := TimeToMinutes(startA)
	ea := TimeToMinutes(endA)
	sb := TimeToMinutes(startB)
	eb := TimeToMinutes(endB)

	return sa < eb && sb < ea
}
