// internal/domain/models/institutiontypes.go
package models

import "github.com/dalemusser/admithub/internal/domain/curriculum"

// Canonical institution type identifiers, stored in Institution.Type.
// Only schools carry a board/grade curriculum.
const (
	InstitutionTypeSchool     = curriculum.InstitutionTypeSchool
	InstitutionTypeCollege    = "College"
	InstitutionTypeUniversity = "University"
	InstitutionTypeCoaching   = "Coaching"
)

// InstitutionTypes is the full set of allowed institution types.
var InstitutionTypes = []string{
	InstitutionTypeSchool,
	InstitutionTypeCollege,
	InstitutionTypeUniversity,
	InstitutionTypeCoaching,
}

// IsInstitutionType reports whether t is an allowed institution type.
func IsInstitutionType(t string) bool {
	for _, known := range InstitutionTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Institution statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
