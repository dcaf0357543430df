package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the expected error occurred, or
	// selection succeeded and every assertion held.
	Pass bool `json:"pass"`

	// Selected are the selected unit identifiers, sorted.
	Selected []string `json:"selected"`

	// Strata counts the selected units per bin, keyed by the bin's part
	// labels joined with " x ".
	Strata map[string]int `json:"strata"`

	// ErrorKind is the kind of error selection failed with, if any.
	ErrorKind string `json:"error_kind,omitempty"`

	// Units, Bins and Exclusions describe the assigned population.
	Units      int `json:"units"`
	Bins       int `json:"bins"`
	Exclusions int `json:"exclusions"`

	// DrawCounts[d][i] is the number of single-bin draws whose part index
	// in dimension d was i.
	DrawCounts []map[int]int `json:"draw_counts,omitempty"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// paths maps each assigned unit to its bin path.
	paths map[string][]int
	// dims are the dimension names in order.
	dims []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Selected: []string{},
		Strata:   make(map[string]int),
		Errors:   []string{},
		paths:    make(map[string][]int),
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// dimension returns the index of the named dimension.
func (r *Result) dimension(name string) (int, bool) {
	for i, d := range r.dims {
		if d == name {
			return i, true
		}
	}
	return 0, false
}
