// internal/domain/models/institution.go
package models

import (
	"time"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Institution includes case/diacritic-insensitive fields for search/sort.
//
// The curriculum fields (board_grade_map and its aggregates) live in the same
// document but are not mapped here: they are written from
// Curriculum.Document() and read back through curriculum.DecodeRecord so
// that legacy and malformed records load without error.
type Institution struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	NameCI         string             `bson:"name_ci"` // ← always stored
	Type           string             `bson:"type"`
	City           string             `bson:"city"`
	CityCI         string             `bson:"city_ci"` // ← always stored
	State          string             `bson:"state"`
	StateCI        string             `bson:"state_ci"` // ← always stored
	ContactInfo    string             `bson:"contact_info"`
	Description    string             `bson:"description"`
	Status         string             `bson:"status"`
	ConfigRevision string             `bson:"config_revision"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`

	Curriculum curriculum.Config `bson:"-"`
}

// IsSchool reports whether the institution carries a curriculum.
func (i Institution) IsSchool() bool {
	return i.Type == InstitutionTypeSchool
}
