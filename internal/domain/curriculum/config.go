// internal/domain/curriculum/config.go
package curriculum

import "slices"

// Config is the curriculum value a form session edits and submits.
type Config struct {
	Boards                   BoardGradeMap
	AdmissionsOpenByStandard map[StandardRange]bool
	// StreamsOffered is kept even when no board covers grades 11-12, so a
	// user who clears and re-selects the high section does not lose it.
	// Derive and Validate ignore it in that case.
	StreamsOffered []Stream
}

// NewConfig returns the configuration of a new institution: no boards,
// admissions open for every range, no streams.
func NewConfig() Config {
	return Config{
		Boards:                   BoardGradeMap{},
		AdmissionsOpenByStandard: NormalizeAdmissions(nil),
		StreamsOffered:           []Stream{},
	}
}

// Aggregates derives the aggregates of c.
func (c Config) Aggregates() Aggregates {
	return Derive(c.Boards, c.AdmissionsOpenByStandard)
}

// Document is the shape handed to storage and API clients: the canonical map
// together with every derived aggregate.
type Document struct {
	BoardGradeMap            BoardGradeMap              `json:"boardGradeMap" bson:"board_grade_map"`
	BoardsOffered            []string                   `json:"boardsOffered" bson:"boards_offered"`
	StandardsAvailable       []Standard                 `json:"standardsAvailable" bson:"standards_available"`
	BoardsByStandard         map[StandardRange][]string `json:"boardsByStandard" bson:"boards_by_standard"`
	AdmissionsOpenByStandard map[StandardRange]bool     `json:"admissionsOpenByStandard" bson:"admissions_open_by_standard"`
	AdmissionsOpen           bool                       `json:"admissionsOpen" bson:"admissions_open"`
	StreamsOffered           []Stream                   `json:"streamsOffered" bson:"streams_offered"`
}

// Document derives the aggregates of c and bundles them with the canonical
// map.
func (c Config) Document() Document {
	agg := c.Aggregates()
	streams := slices.Clone(c.StreamsOffered)
	if streams == nil {
		streams = []Stream{}
	}
	return Document{
		BoardGradeMap:            c.Boards.clone(),
		BoardsOffered:            agg.BoardsOffered,
		StandardsAvailable:       agg.StandardsAvailable,
		BoardsByStandard:         agg.BoardsByStandard,
		AdmissionsOpenByStandard: agg.AdmissionsOpenByStandard,
		AdmissionsOpen:           agg.AdmissionsOpen,
		StreamsOffered:           streams,
	}
}

// Summaries returns the compact section summary of every enabled board.
func (c Config) Summaries() map[string]string {
	out := make(map[string]string, c.Boards.Len())
	for _, e := range c.Boards.Entries() {
		out[e.Board] = Summarize(e.Selection)
	}
	return out
}
