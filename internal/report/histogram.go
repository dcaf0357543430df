// Package report derives diagnostic views of a bin collection: a dense
// two-dimensional histogram for plotting and a per-dimension summary.
// Rendering beyond plain text tables is left to consumers.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/variable"
)

// Tick is an axis position and its label.
type Tick struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
}

// Histogram holds unit counts over the first two dimensions of a
// collection. Counts[i][j] is the number of units whose first-dimension
// part index is i and second-dimension part index is j, summed over any
// further dimensions. Every part is present, populated or not.
type Histogram struct {
	Rows     string  `json:"rows"`
	Columns  string  `json:"columns,omitempty"`
	RowTicks []Tick  `json:"row_ticks"`
	ColTicks []Tick  `json:"column_ticks"`
	Counts   [][]int `json:"counts"`
}

// NewHistogram counts c's units by their first two dimensions. A
// collection with a single dimension yields one column labelled "all".
func NewHistogram(c *bins.Collection) *Histogram {
	dims := c.Dimensions()
	h := &Histogram{
		Rows:     dims[0].Name(),
		RowTicks: ticks(dims[0]),
	}
	cols := 1
	if len(dims) > 1 {
		h.Columns = dims[1].Name()
		h.ColTicks = ticks(dims[1])
		cols = dims[1].Len()
	} else {
		h.ColTicks = []Tick{{Position: 0, Label: "all"}}
	}

	h.Counts = make([][]int, dims[0].Len())
	for i := range h.Counts {
		h.Counts[i] = make([]int, cols)
	}
	for b := range c.Bins() {
		path := b.Path()
		j := 0
		if len(path) > 1 {
			j = path[1]
		}
		h.Counts[path[0]][j] += b.Count()
	}
	return h
}

func ticks(v *variable.Variable) []Tick {
	t := make([]Tick, v.Len())
	for i := range t {
		t[i] = Tick{Position: i, Label: variable.Label(v.Part(i))}
	}
	return t
}

// Total is the sum of all counts.
func (h *Histogram) Total() int {
	n := 0
	for _, row := range h.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// WriteText renders the histogram as an aligned table, one row per
// first-dimension part.
func (h *Histogram) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	corner := h.Rows
	if h.Columns != "" {
		corner = h.Rows + ` \ ` + h.Columns
	}
	fmt.Fprint(tw, corner)
	for _, t := range h.ColTicks {
		fmt.Fprint(tw, "\t", t.Label)
	}
	fmt.Fprintln(tw)

	for i, row := range h.Counts {
		fmt.Fprint(tw, h.RowTicks[i].Label)
		for _, c := range row {
			fmt.Fprint(tw, "\t", strconv.Itoa(c))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
