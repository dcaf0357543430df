// Package harness runs sampling scenarios as executable contract tests.
//
// A scenario declares variables, a population, sample parameters and the
// properties the selection must have. The harness builds the collection,
// assigns the population, selects, and evaluates the assertions.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: late_century
//	description: "Prescribed year weights keep the sample in the 1850s-1870s"
//	variables:
//	  - { name: Year, class: discrete, min: 1800, max: 1919, discretisation: 1, bin_size: 10 }
//	  - { name: Location, class: categorical, categories: [N, S] }
//	population:
//	  seed: 1
//	  count: 2400
//	  out_of_range: 3
//	units:
//	  - { id: extra, values: [1851, N] }
//	sample:
//	  size: 50
//	  seed: 42
//	  weights:
//	    Year: [0, 0, 0, 0, 0, 1, 2, 10, 0, 0, 0, 0]
//	draws: 5000
//	assertions:
//	  - type: selected_count
//	    count: 50
//	  - type: selected_within
//	    dimension: Year
//	    parts: [5, 6, 7]
//	  - type: draw_proportion
//	    dimension: Year
//	    part: 7
//	    proportion: 0.769
//	    tolerance: 0.03
//
// A scenario that expects selection to fail names the error kind instead
// of listing assertions:
//
//	expect_error: capacity
//
// # Assertion Types
//
//   - selected_count: the selection has exactly count units
//   - selected_within: every selected unit lies in one of parts of dimension
//   - draw_proportion: the share of bin draws landing in part of dimension
//     is within tolerance of proportion
//   - exclusions: exactly count units fell outside the partitions
//   - bins: exactly count bins are populated
//
// # Determinism
//
// Generated populations and selections are seeded, so a scenario always
// produces the same selection. RunWithGolden snapshots it as canonical
// JSON for golden file comparison.
package harness
