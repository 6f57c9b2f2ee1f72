// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("institutions", institutionsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func stringEnum[T ~string](values []T) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func boardList() bson.M {
	return bson.M{
		"bsonType": "array",
		"items":    bson.M{"enum": stringEnum(curriculum.Boards)},
	}
}

func gradeList(min, max curriculum.Grade) bson.M {
	return bson.M{
		"bsonType": "array",
		"items": bson.M{
			"bsonType": bson.A{"int", "long"},
			"minimum":  int(min),
			"maximum":  int(max),
		},
	}
}

// institutionsSchema validates profile fields and the curriculum document.
// Validation level is moderate, so records stored before the canonical map
// existed keep loading and are only checked once they are rewritten.
func institutionsSchema() bson.M {
	byRange := bson.M{}
	flags := bson.M{}
	for _, r := range curriculum.Ranges {
		byRange[string(r)] = boardList()
		flags[string(r)] = bson.M{"bsonType": "bool"}
	}
	primary := curriculum.SectionGrades(curriculum.Primary)
	middle := curriculum.SectionGrades(curriculum.Middle)
	high := curriculum.SectionGrades(curriculum.High)
	selection := bson.M{
		"bsonType": "object",
		"properties": bson.M{
			"primary": gradeList(primary[0], primary[len(primary)-1]),
			"middle":  gradeList(middle[0], middle[len(middle)-1]),
			"high":    gradeList(high[0], high[len(high)-1]),
		},
	}
	// Map keys are board names; only catalog boards may appear.
	perBoard := bson.M{}
	for _, b := range curriculum.Boards {
		perBoard[b] = selection
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "type", "status"},
			"properties": bson.M{
				"name":    bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"type":    bson.M{"bsonType": "string", "enum": stringEnum(models.InstitutionTypes)},
				"status":  bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},

				"config_revision": bson.M{"bsonType": "string"},

				"board_grade_map": bson.M{
					"bsonType":             "object",
					"properties":           perBoard,
					"additionalProperties": false,
				},
				"boards_offered":      boardList(),
				"standards_available": bson.M{"bsonType": "array", "items": bson.M{"enum": stringEnum(curriculum.Standards)}},
				"boards_by_standard": bson.M{
					"bsonType":   "object",
					"properties": byRange,
				},
				"admissions_open_by_standard": bson.M{
					"bsonType":   "object",
					"properties": flags,
				},
				"admissions_open": bson.M{"bsonType": "bool"},
				"streams_offered": bson.M{
					"bsonType": "array",
					"items":    bson.M{"enum": stringEnum(curriculum.Streams)},
				},
			},
		},
	}
}
