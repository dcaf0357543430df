package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the selection to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Selected []string // Selected units for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Selected) > 0 {
		fmt.Fprintf(&buf, "\nSelected (%d):\n", len(e.Selected))
		for _, u := range e.Selected {
			fmt.Fprintf(&buf, "  %s\n", u)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertSelectedCount:
			err = assertCount(a.Type, "selected units", len(result.Selected), a.Count, result)
		case AssertExclusions:
			err = assertCount(a.Type, "excluded units", result.Exclusions, a.Count, nil)
		case AssertBins:
			err = assertCount(a.Type, "populated bins", result.Bins, a.Count, nil)
		case AssertSelectedWithin:
			err = assertSelectedWithin(result, a)
		case AssertDrawProportion:
			err = assertDrawProportion(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func assertCount(typ, what string, got, want int, result *Result) error {
	if got == want {
		return nil
	}
	e := &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d %s", want, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
	}
	if result != nil {
		e.Selected = result.Selected
	}
	return e
}

// assertSelectedWithin checks that every selected unit lies in one of the
// allowed parts of the dimension.
func assertSelectedWithin(result *Result, a Assertion) error {
	d, ok := result.dimension(a.Dimension)
	if !ok {
		return fmt.Errorf("no dimension named %q", a.Dimension)
	}
	var outside []string
	for _, u := range result.Selected {
		if !slices.Contains(a.Parts, result.paths[u][d]) {
			outside = append(outside, fmt.Sprintf("%s (part %d)", u, result.paths[u][d]))
		}
	}
	if len(outside) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("all selected units in %s parts %v", a.Dimension, a.Parts),
		Actual:   fmt.Sprintf("%d outside: %s", len(outside), strings.Join(outside, ", ")),
	}
}

// assertDrawProportion checks the share of single-bin draws that landed
// in one part of the dimension.
func assertDrawProportion(result *Result, a Assertion) error {
	d, ok := result.dimension(a.Dimension)
	if !ok {
		return fmt.Errorf("no dimension named %q", a.Dimension)
	}
	if len(result.DrawCounts) == 0 {
		return fmt.Errorf("no draws were made")
	}
	total := 0
	for _, n := range result.DrawCounts[d] {
		total += n
	}
	got := float64(result.DrawCounts[d][a.Part]) / float64(total)
	if math.Abs(got-a.Proportion) <= a.Tolerance {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s part %d in %.4f +/- %.4f of draws", a.Dimension, a.Part, a.Proportion, a.Tolerance),
		Actual:   fmt.Sprintf("%.4f (%d of %d)", got, result.DrawCounts[d][a.Part], total),
	}
}
