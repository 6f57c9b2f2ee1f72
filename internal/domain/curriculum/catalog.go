// internal/domain/curriculum/catalog.go
package curriculum

// Board identifiers. These are the exact strings stored in institution
// records and accepted from forms.
const (
	BoardCBSE       = "CBSE"
	BoardICSE       = "ICSE"
	BoardStateBoard = "State Board"
	BoardIB         = "IB"
	BoardIGCSE      = "IGCSE"
)

// Boards is the full catalog of boards, in display order.
var Boards = []string{
	BoardCBSE,
	BoardICSE,
	BoardStateBoard,
	BoardIB,
	BoardIGCSE,
}

// IsBoard reports whether b is a catalog board.
func IsBoard(b string) bool {
	return boardRank(b) >= 0
}

// boardRank returns the catalog position of b, or -1.
func boardRank(b string) int {
	for i, known := range Boards {
		if known == b {
			return i
		}
	}
	return -1
}

// Stream is a senior-secondary stream, relevant only when grades 11-12 are
// offered.
type Stream string

const (
	StreamScience  Stream = "Science"
	StreamCommerce Stream = "Commerce"
	StreamArts     Stream = "Arts"
)

// Streams is the full catalog of streams, in display order.
var Streams = []Stream{StreamScience, StreamCommerce, StreamArts}

// IsStream reports whether s is a catalog stream.
func IsStream(s string) bool {
	for _, known := range Streams {
		if string(known) == s {
			return true
		}
	}
	return false
}

// StandardRange is the legacy key for a section ("1-5", "6-10", "11-12").
type StandardRange string

const (
	RangePrimary StandardRange = "1-5"
	RangeMiddle  StandardRange = "6-10"
	RangeHigh    StandardRange = "11-12"
)

// Ranges lists the standard ranges in section order.
var Ranges = []StandardRange{RangePrimary, RangeMiddle, RangeHigh}

// Standard is the display label of a section, as stored in
// standards_available.
type Standard string

const (
	StandardPrimary Standard = "Primary"
	StandardMiddle  Standard = "Middle"
	StandardHigh    Standard = "High"
)

// InstitutionTypeSchool is the only institution type that carries a
// curriculum configuration.
const InstitutionTypeSchool = "School"

// Standards lists the standard labels in section order.
var Standards = []Standard{StandardPrimary, StandardMiddle, StandardHigh}
