package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateInstitution inserts an institution of the given type whose
// curriculum is stored in the current shape (canonical map plus aggregates).
func (f *Fixtures) CreateInstitution(ctx context.Context, name, instType string, cfg curriculum.Config) models.Institution {
	f.t.Helper()

	inst := f.baseInstitution(name, instType)
	doc := cfg.Document()
	_, err := f.db.Collection("institutions").InsertOne(ctx, bson.D{
		{Key: "_id", Value: inst.ID},
		{Key: "name", Value: inst.Name},
		{Key: "name_ci", Value: inst.NameCI},
		{Key: "type", Value: inst.Type},
		{Key: "city", Value: inst.City},
		{Key: "city_ci", Value: inst.CityCI},
		{Key: "state", Value: inst.State},
		{Key: "state_ci", Value: inst.StateCI},
		{Key: "status", Value: inst.Status},
		{Key: "config_revision", Value: inst.ConfigRevision},
		{Key: "created_at", Value: inst.CreatedAt},
		{Key: "updated_at", Value: inst.UpdatedAt},
		{Key: "board_grade_map", Value: doc.BoardGradeMap},
		{Key: "boards_offered", Value: doc.BoardsOffered},
		{Key: "standards_available", Value: doc.StandardsAvailable},
		{Key: "boards_by_standard", Value: doc.BoardsByStandard},
		{Key: "admissions_open_by_standard", Value: doc.AdmissionsOpenByStandard},
		{Key: "admissions_open", Value: doc.AdmissionsOpen},
		{Key: "streams_offered", Value: doc.StreamsOffered},
	})
	if err != nil {
		f.t.Fatalf("failed to create test institution: %v", err)
	}

	inst.Curriculum = curriculum.Reconcile(curriculum.Record{
		BoardGradeMap:            cfg.Boards,
		AdmissionsOpenByStandard: cfg.AdmissionsOpenByStandard,
		StreamsOffered:           cfg.StreamsOffered,
	})
	return inst
}

// CreateLegacySchool inserts a school the way the older schema stored it:
// only the per-range board lists and whatever extra fields are given, no
// canonical map and no revision.
func (f *Fixtures) CreateLegacySchool(ctx context.Context, name string, boardsByStandard bson.M, extra bson.M) primitive.ObjectID {
	f.t.Helper()

	inst := f.baseInstitution(name, models.InstitutionTypeSchool)
	doc := bson.M{
		"_id":                inst.ID,
		"name":               inst.Name,
		"name_ci":            inst.NameCI,
		"type":               inst.Type,
		"status":             inst.Status,
		"created_at":         inst.CreatedAt,
		"updated_at":         inst.UpdatedAt,
		"boards_by_standard": boardsByStandard,
	}
	for k, v := range extra {
		doc[k] = v
	}
	if _, err := f.db.Collection("institutions").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create legacy institution: %v", err)
	}
	return inst.ID
}

func (f *Fixtures) baseInstitution(name, instType string) models.Institution {
	now := time.Now().UTC()
	return models.Institution{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		Type:           instType,
		City:           "Pune",
		CityCI:         text.Fold("Pune"),
		State:          "MH",
		StateCI:        text.Fold("MH"),
		Status:         models.StatusActive,
		ConfigRevision: primitive.NewObjectID().Hex(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
