// internal/domain/curriculum/doc.go

// Package curriculum models which boards a school runs and which grades each
// board covers.
//
// The canonical value is a BoardGradeMap: an ordered set of enabled boards,
// each with a BoardGradeSelection split into primary (1-5), middle (6-10) and
// high (11-12) sections. Everything else an institution record carries about
// its curriculum (offered boards, available standards, boards by standard
// range, the admissions-open flag) is derived from that map by Derive and is
// never edited directly.
//
// Older records only stored the flat "boards by standard range" lists.
// Reconcile rebuilds a canonical map from those lists on load, assuming every
// grade of a listed range was selected.
//
// The package is pure: no I/O, no logging, and every operation returns a new
// value instead of mutating its input.
package curriculum
