package difficulty

import "strings"

// Band is a coarse difficulty label derived from a learner's past scores.
type Band string

const (
	Beginner     Band = "beginner"
	Intermediate Band = "intermediate"
	Advanced     Band = "advanced"
)

// Percentage thresholds. Below IntermediateAt is beginner, at or above
// AdvancedAt is advanced.
const (
	IntermediateAt = 50.0
	AdvancedAt     = 75.0
)

// Record is one historical attempt on a topic.
type Record struct {
	Score int
	Total int
}

// AveragePercentage is the mean of per-attempt percentages. Attempts with a
// non-positive total are ignored. ok is false when nothing counted.
func AveragePercentage(records []Record) (avg float64, ok bool) {
	var sum float64
	n := 0
	for _, r := range records {
		if r.Total <= 0 {
			continue
		}
		sum += float64(r.Score) / float64(r.Total) * 100
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// ForPercentage maps an average percentage to a band.
func ForPercentage(pct float64) Band {
	switch {
	case pct >= AdvancedAt:
		return Advanced
	case pct >= IntermediateAt:
		return Intermediate
	default:
		return Beginner
	}
}

// Select returns the band for a learner's history on a topic. No usable
// history means beginner.
func Select(records []Record) Band {
	avg, ok := AveragePercentage(records)
	if !ok {
		return Beginner
	}
	return ForPercentage(avg)
}

// Next is the band a learner should try after the given one.
func (b Band) Next() Band {
	switch b {
	case Beginner:
		return Intermediate
	default:
		return Advanced
	}
}

func (b Band) Valid() bool {
	switch b {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// Parse accepts a band name in any case; unknown names yield beginner, false.
func Parse(s string) (Band, bool) {
	b := Band(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return Beginner, false
	}
	return b, true
}
