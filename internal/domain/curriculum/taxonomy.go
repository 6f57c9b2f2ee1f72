// internal/domain/curriculum/taxonomy.go
package curriculum

import (
	"slices"
	"strings"
)

// Grade is a school grade, 1 through 12.
type Grade int

const (
	MinGrade Grade = 1
	MaxGrade Grade = 12
)

// Section is a coarse grouping of grades.
type Section string

const (
	Primary Section = "primary"
	Middle  Section = "middle"
	High    Section = "high"
)

// Sections lists the sections in grade order.
var Sections = []Section{Primary, Middle, High}

var sectionGrades = map[Section][]Grade{
	Primary: {1, 2, 3, 4, 5},
	Middle:  {6, 7, 8, 9, 10},
	High:    {11, 12},
}

// SectionOf classifies a grade. Grades outside 1-12 fall back to Primary.
func SectionOf(g Grade) Section {
	switch {
	case g >= 6 && g <= 10:
		return Middle
	case g == 11 || g == 12:
		return High
	default:
		return Primary
	}
}

// SectionGrades returns the grades belonging to s. Unknown sections yield nil.
func SectionGrades(s Section) []Grade {
	return slices.Clone(sectionGrades[s])
}

// AllGrades returns 1 through 12.
func AllGrades() []Grade {
	out := make([]Grade, 0, MaxGrade)
	for g := MinGrade; g <= MaxGrade; g++ {
		out = append(out, g)
	}
	return out
}

// Label is the display label of the section.
func (s Section) Label() Standard {
	switch s {
	case Middle:
		return StandardMiddle
	case High:
		return StandardHigh
	default:
		return StandardPrimary
	}
}

// Range is the legacy standard range key of the section.
func (s Section) Range() StandardRange {
	switch s {
	case Middle:
		return RangeMiddle
	case High:
		return RangeHigh
	default:
		return RangePrimary
	}
}

// SectionOfRange maps a legacy range key back to its section.
func SectionOfRange(r StandardRange) (Section, bool) {
	switch r {
	case RangePrimary:
		return Primary, true
	case RangeMiddle:
		return Middle, true
	case RangeHigh:
		return High, true
	}
	return "", false
}

// BoardGradeSelection holds the grades one board covers, per section. Each
// list is sorted ascending and free of duplicates.
type BoardGradeSelection struct {
	Primary []Grade `json:"primary"`
	Middle  []Grade `json:"middle"`
	High    []Grade `json:"high"`
}

// Grades returns a copy of the grades selected in section s.
func (sel BoardGradeSelection) Grades(s Section) []Grade {
	switch s {
	case Primary:
		return slices.Clone(sel.Primary)
	case Middle:
		return slices.Clone(sel.Middle)
	case High:
		return slices.Clone(sel.High)
	}
	return nil
}

// Has reports whether g is selected.
func (sel BoardGradeSelection) Has(g Grade) bool {
	return slices.Contains(sel.ref(SectionOf(g)), g)
}

func (sel BoardGradeSelection) ref(s Section) []Grade {
	switch s {
	case Middle:
		return sel.Middle
	case High:
		return sel.High
	default:
		return sel.Primary
	}
}

func (sel BoardGradeSelection) clone() BoardGradeSelection {
	return BoardGradeSelection{
		Primary: orEmpty(slices.Clone(sel.Primary)),
		Middle:  orEmpty(slices.Clone(sel.Middle)),
		High:    orEmpty(slices.Clone(sel.High)),
	}
}

// normalized drops grades that do not belong to their section, sorts and
// de-duplicates.
func (sel BoardGradeSelection) normalized() BoardGradeSelection {
	return BoardGradeSelection{
		Primary: cleanGrades(Primary, sel.Primary),
		Middle:  cleanGrades(Middle, sel.Middle),
		High:    cleanGrades(High, sel.High),
	}
}

func cleanGrades(s Section, in []Grade) []Grade {
	out := make([]Grade, 0, len(in))
	for _, g := range in {
		if g >= MinGrade && g <= MaxGrade && SectionOf(g) == s {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func orEmpty(g []Grade) []Grade {
	if g == nil {
		return []Grade{}
	}
	return g
}

// HasAnyGrade reports whether any section of sel is non-empty. A nil
// selection has no grades.
func HasAnyGrade(sel *BoardGradeSelection) bool {
	if sel == nil {
		return false
	}
	return len(sel.Primary) > 0 || len(sel.Middle) > 0 || len(sel.High) > 0
}

// Summarize joins the labels of the non-empty sections with "&", for example
// "Primary&High". It returns "" when nothing is selected.
func Summarize(sel BoardGradeSelection) string {
	var parts []string
	for _, s := range Sections {
		if len(sel.ref(s)) > 0 {
			parts = append(parts, string(s.Label()))
		}
	}
	return strings.Join(parts, "&")
}
