// internal/domain/curriculum/editor.go
package curriculum

// ToggleBoard enables board with an empty selection, or removes it (and its
// grades) if it is already enabled. Boards outside the catalog cannot be
// enabled; toggling one that is not enabled returns m unchanged.
func ToggleBoard(m BoardGradeMap, board string) BoardGradeMap {
	if m.Enabled(board) {
		return m.without(board)
	}
	if !IsBoard(board) {
		return m.clone()
	}
	return m.set(board, BoardGradeSelection{})
}

// WithSelection replaces the selection of an enabled board. It is a no-op
// for boards that are not enabled.
func WithSelection(m BoardGradeMap, board string, sel BoardGradeSelection) BoardGradeMap {
	if !m.Enabled(board) {
		return m.clone()
	}
	return m.set(board, sel.normalized())
}

// ToggleGrade adds g to its section, or removes it if present. Grades outside
// 1-12 leave the selection unchanged.
func ToggleGrade(sel BoardGradeSelection, g Grade) BoardGradeSelection {
	if g < MinGrade || g > MaxGrade {
		return sel.clone()
	}
	s := SectionOf(g)
	cur := sel.Grades(s)
	next := make([]Grade, 0, len(cur)+1)
	found := false
	for _, have := range cur {
		if have == g {
			found = true
			continue
		}
		next = append(next, have)
	}
	if !found {
		next = append(next, g)
	}
	return SetSectionGrades(sel, s, next)
}

// SetSectionGrades replaces the grades of one section. Grades that do not
// belong to s are dropped; the result is sorted and de-duplicated.
func SetSectionGrades(sel BoardGradeSelection, s Section, grades []Grade) BoardGradeSelection {
	out := sel.clone()
	switch s {
	case Primary:
		out.Primary = cleanGrades(Primary, grades)
	case Middle:
		out.Middle = cleanGrades(Middle, grades)
	case High:
		out.High = cleanGrades(High, grades)
	}
	return out
}

// SelectAllGrades selects every grade from 1 to 12.
func SelectAllGrades(sel BoardGradeSelection) BoardGradeSelection {
	out := sel
	for _, s := range Sections {
		out = SetSectionGrades(out, s, SectionGrades(s))
	}
	return out
}

// ClearGrades deselects every grade. The board stays enabled.
func ClearGrades(sel BoardGradeSelection) BoardGradeSelection {
	out := sel
	for _, s := range Sections {
		out = SetSectionGrades(out, s, nil)
	}
	return out
}
