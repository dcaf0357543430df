package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roach88/subsamplr/internal/bins"
)

// Summary is an overview of a populated collection.
type Summary struct {
	Units      int                `json:"units"`
	Bins       int                `json:"bins"`
	Exclusions int                `json:"exclusions"`
	Tracking   bool               `json:"tracking_exclusions"`
	Dimensions []DimensionSummary `json:"dimensions"`
}

// DimensionSummary describes one dimension: its partition size and how
// many of its parts hold at least one unit.
type DimensionSummary struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Type      string `json:"type"`
	Parts     int    `json:"parts"`
	Populated int    `json:"populated"`
}

// Summarize counts c's units, bins and exclusions, and the populated parts
// of each dimension.
func Summarize(c *bins.Collection) Summary {
	dims := c.Dimensions()
	populated := make([]map[int]struct{}, len(dims))
	for i := range populated {
		populated[i] = make(map[int]struct{})
	}
	binCount, units := 0, 0
	for b := range c.Bins() {
		binCount++
		units += b.Count()
		for d, i := range b.Path() {
			populated[d][i] = struct{}{}
		}
	}

	s := Summary{
		Units:      units,
		Bins:       binCount,
		Exclusions: c.CountExclusions(),
		Tracking:   c.TracksExclusions(),
		Dimensions: make([]DimensionSummary, len(dims)),
	}
	for d, v := range dims {
		s.Dimensions[d] = DimensionSummary{
			Name:      v.Name(),
			Class:     string(v.Class()),
			Type:      string(v.Type()),
			Parts:     v.Len(),
			Populated: len(populated[d]),
		}
	}
	return s
}

// WriteText renders the summary as two aligned blocks: totals, then one
// line per dimension.
func (s Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "units:\t%d\n", s.Units)
	fmt.Fprintf(tw, "bins:\t%d\n", s.Bins)
	if s.Tracking {
		fmt.Fprintf(tw, "exclusions:\t%d\n", s.Exclusions)
	} else {
		fmt.Fprintf(tw, "exclusions:\tnot tracked\n")
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "dimension\tclass\ttype\tparts\tpopulated")
	for _, d := range s.Dimensions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", d.Name, d.Class, d.Type, d.Parts, d.Populated)
	}
	return tw.Flush()
}
