// internal/domain/curriculum/derive.go
package curriculum

// Aggregates are the views of a BoardGradeMap that institution records carry
// for filtering, display and legacy consumers.
type Aggregates struct {
	// BoardsOffered lists enabled boards that have at least one grade, in
	// insertion order.
	BoardsOffered []string
	// StandardsAvailable lists the labels of sections that any board covers,
	// in section order.
	StandardsAvailable []Standard
	// BoardsByStandard lists, per range, the boards covering that section.
	// All three ranges are always present.
	BoardsByStandard map[StandardRange][]string
	// AdmissionsOpenByStandard is the operator's per-range flag set with
	// missing ranges defaulted to true.
	AdmissionsOpenByStandard map[StandardRange]bool
	// AdmissionsOpen is true when any range is open. It does not depend on
	// which boards or grades exist.
	AdmissionsOpen bool
}

// Derive computes the aggregates of m and the per-range admissions flags.
// It never fails: boards without grades are left out of every aggregate and
// missing flags default to open.
func Derive(m BoardGradeMap, admissionsOpenByStandard map[StandardRange]bool) Aggregates {
	agg := Aggregates{
		BoardsOffered:            []string{},
		StandardsAvailable:       []Standard{},
		BoardsByStandard:         make(map[StandardRange][]string, len(Ranges)),
		AdmissionsOpenByStandard: NormalizeAdmissions(admissionsOpenByStandard),
	}
	for _, r := range Ranges {
		agg.BoardsByStandard[r] = []string{}
	}

	covered := make(map[Section]bool, len(Sections))
	for _, board := range m.order {
		sel := m.sel[board]
		if !HasAnyGrade(&sel) {
			continue
		}
		agg.BoardsOffered = append(agg.BoardsOffered, board)
		for _, s := range Sections {
			if len(sel.ref(s)) == 0 {
				continue
			}
			covered[s] = true
			agg.BoardsByStandard[s.Range()] = append(agg.BoardsByStandard[s.Range()], board)
		}
	}
	for _, s := range Sections {
		if covered[s] {
			agg.StandardsAvailable = append(agg.StandardsAvailable, s.Label())
		}
	}

	for _, r := range Ranges {
		if agg.AdmissionsOpenByStandard[r] {
			agg.AdmissionsOpen = true
			break
		}
	}
	return agg
}

// HasStandard reports whether label is among the available standards.
func (a Aggregates) HasStandard(label Standard) bool {
	for _, s := range a.StandardsAvailable {
		if s == label {
			return true
		}
	}
	return false
}

// NormalizeAdmissions returns a flag set holding exactly the three ranges.
// Ranges missing from flags are open; unknown keys are dropped.
func NormalizeAdmissions(flags map[StandardRange]bool) map[StandardRange]bool {
	out := make(map[StandardRange]bool, len(Ranges))
	for _, r := range Ranges {
		open, ok := flags[r]
		out[r] = !ok || open
	}
	return out
}
