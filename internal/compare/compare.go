// Package compare classifies swim times against qualifying standards.
package compare

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

// DefaultThresholdPercent is the default width of the "almost" band.
const DefaultThresholdPercent = 3.0

// Status is the achievement state of a time against a standard.
type Status string

// Comparison statuses.
const (
	StatusAchieved    Status = "achieved"
	StatusAlmost      Status = "almost"
	StatusNotAchieved Status = "not_achieved"
	StatusNoTime      Status = "no_time"
)

// Result is the outcome of comparing one time with one standard.
// Difference fields are nil when there is no swimmer time.
type Result struct {
	Status            Status
	DifferenceMs      *int64
	DifferencePercent *float64
}

// Compare evaluates swimmerMs against standardMs. thresholdPercent is assumed
// to be validated already (see ValidateThreshold).
func Compare(swimmerMs *int64, standardMs int64, thresholdPercent float64) Result {
	if swimmerMs == nil {
		return Result{Status: StatusNoTime}
	}
	diff := *swimmerMs - standardMs
	res := Result{DifferenceMs: &diff}
	// A non-positive standard has no meaningful percentage.
	if standardMs > 0 {
		pct := float64(diff) / float64(standardMs) * 100
		res.DifferencePercent = &pct
	}

	switch {
	case *swimmerMs <= standardMs:
		res.Status = StatusAchieved
	case res.DifferencePercent != nil && *res.DifferencePercent <= thresholdPercent:
		res.Status = StatusAlmost
	default:
		res.Status = StatusNotAchieved
	}
	return res
}

// DifferenceDisplay renders the signed difference, e.g. "-0.50" or "+1:02.10".
func (r Result) DifferenceDisplay() string {
	if r.DifferenceMs == nil {
		return ""
	}
	return swimtime.FormatDiff(*r.DifferenceMs)
}

// PercentDisplay renders the signed percentage with two decimals.
func (r Result) PercentDisplay() string {
	if r.DifferencePercent == nil {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", *r.DifferencePercent)
}

// ValidateThreshold checks a threshold percentage at the point of entry.
func ValidateThreshold(p float64) error {
	if p != p || p < 0 || p > 100 {
		return fmt.Errorf("threshold must be between 0 and 100")
	}
	return nil
}

// Entry pairs a standard with the comparison of a swimmer time against it.
type Entry struct {
	Standard model.Standard
	Result   Result
}

// Against compares a time with every standard, fastest standard first.
func Against(swimmerMs *int64, standards []model.Standard, thresholdPercent float64) []Entry {
	sorted := append([]model.Standard(nil), standards...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TimeMs == sorted[j].TimeMs {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].TimeMs < sorted[j].TimeMs
	})
	out := make([]Entry, 0, len(sorted))
	for _, st := range sorted {
		out = append(out, Entry{Standard: st, Result: Compare(swimmerMs, st.TimeMs, thresholdPercent)})
	}
	return out
}

// NextTarget returns the slowest standard not yet achieved, i.e. the next
// one to aim for. ok is false when every standard is achieved or none exist.
func NextTarget(entries []Entry) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if e.Result.Status == StatusAchieved {
			continue
		}
		if !found || e.Standard.TimeMs > best.Standard.TimeMs {
			best = e
			found = true
		}
	}
	return best, found
}

// Best returns the fastest achieved standard.
func Best(entries []Entry) (Entry, bool) {
	for _, e := range entries {
		if e.Result.Status == StatusAchieved {
			return e, true
		}
	}
	return Entry{}, false
}
