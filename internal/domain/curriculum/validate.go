// internal/domain/curriculum/validate.go
package curriculum

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyConfiguration means no board with at least one grade is
	// selected.
	ErrEmptyConfiguration = errors.New("select at least one board and grade")

	// ErrMissingStream means grades 11-12 are offered but no stream is.
	ErrMissingStream = errors.New("select at least one stream for grades 11-12")
)

// BoardWithoutGradesError reports a board that is enabled but has no grades.
type BoardWithoutGradesError struct {
	Board string
}

func (e *BoardWithoutGradesError) Error() string {
	return fmt.Sprintf("select at least one grade for %s", e.Board)
}

// ValidateFor validates cfg when institutionType is School. Other institution
// types carry no curriculum and always pass.
func ValidateFor(institutionType string, cfg Config) error {
	if institutionType != InstitutionTypeSchool {
		return nil
	}
	return Validate(cfg)
}

// Validate checks cfg before it is submitted. Every failing check is
// reported; the result is an errors.Join of ErrEmptyConfiguration, one
// *BoardWithoutGradesError per offending board (in board order), and
// ErrMissingStream, or nil.
func Validate(cfg Config) error {
	agg := cfg.Aggregates()
	var errs []error

	if len(agg.BoardsOffered) == 0 {
		errs = append(errs, ErrEmptyConfiguration)
	}
	for _, e := range cfg.Boards.Entries() {
		if !HasAnyGrade(&e.Selection) {
			errs = append(errs, &BoardWithoutGradesError{Board: e.Board})
		}
	}
	if agg.HasStandard(StandardHigh) && len(cfg.StreamsOffered) == 0 {
		errs = append(errs, ErrMissingStream)
	}
	return errors.Join(errs...)
}

// Problem is a field-level validation message for the form.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problems flattens an error returned by Validate into field messages.
// Errors that did not come from Validate become a single problem with no
// field.
func Problems(err error) []Problem {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	out := make([]Problem, 0, len(errs))
	for _, e := range errs {
		var bw *BoardWithoutGradesError
		switch {
		case errors.Is(e, ErrEmptyConfiguration):
			out = append(out, Problem{Field: "boardsOffered", Message: e.Error()})
		case errors.Is(e, ErrMissingStream):
			out = append(out, Problem{Field: "streamsOffered", Message: e.Error()})
		case errors.As(e, &bw):
			out = append(out, Problem{Field: "boardGradeMap." + bw.Board, Message: e.Error()})
		default:
			out = append(out, Problem{Message: e.Error()})
		}
	}
	return out
}
