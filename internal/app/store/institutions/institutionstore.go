// internal/app/store/institutions/institutionstore.go
package institutionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/admithub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateInstitution = errors.New("an institution with this name already exists")
	ErrNotFound             = errors.New("institution not found")
	ErrRevisionConflict     = errors.New("curriculum was changed since it was loaded")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("institutions")}
}

// institutionDoc is the stored shape: profile fields plus the curriculum
// document (canonical map and legacy aggregates side by side).
type institutionDoc struct {
	models.Institution  `bson:",inline"`
	curriculum.Document `bson:",inline"`
}

// Create inserts a new institution. A zero Curriculum is replaced by the
// default configuration (no boards, admissions open).
func (s *Store) Create(ctx context.Context, inst models.Institution) (models.Institution, error) {
	now := time.Now().UTC()
	inst.ID = primitive.NewObjectID()
	inst.NameCI = text.Fold(inst.Name)
	inst.CityCI = text.Fold(inst.City)
	inst.StateCI = text.Fold(inst.State)
	inst.ContactInfo = htmlsanitize.PlainText(inst.ContactInfo)
	inst.Description = htmlsanitize.Sanitize(inst.Description)
	if inst.Status == "" {
		inst.Status = models.StatusActive
	}
	if inst.Curriculum.AdmissionsOpenByStandard == nil {
		def := curriculum.NewConfig()
		def.Boards = inst.Curriculum.Boards
		def.StreamsOffered = inst.Curriculum.StreamsOffered
		inst.Curriculum = def
	}
	inst.ConfigRevision = uuid.NewString()
	inst.CreatedAt = now
	inst.UpdatedAt = now

	_, err := s.c.InsertOne(ctx, institutionDoc{Institution: inst, Document: inst.Curriculum.Document()})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Institution{}, ErrDuplicateInstitution
		}
		return models.Institution{}, err
	}
	inst.Curriculum = curriculum.Reconcile(curriculum.Record{
		BoardGradeMap:            inst.Curriculum.Boards,
		AdmissionsOpenByStandard: inst.Curriculum.AdmissionsOpenByStandard,
		StreamsOffered:           inst.Curriculum.StreamsOffered,
	})
	return inst, nil
}

// GetByID loads an institution and reconciles its curriculum from whichever
// shape the record was stored in.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Institution, error) {
	raw, err := s.c.FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Institution{}, ErrNotFound
		}
		return models.Institution{}, err
	}
	return decode(raw)
}

func decode(raw bson.Raw) (models.Institution, error) {
	var inst models.Institution
	if err := bson.Unmarshal(raw, &inst); err != nil {
		return models.Institution{}, err
	}
	inst.Curriculum = curriculum.Reconcile(curriculum.DecodeRecord(raw))
	return inst, nil
}

// configProjection limits a read to the fields Reconcile looks at.
var configProjection = bson.M{
	"type":                        1,
	"board_grade_map":             1,
	"boards_offered":              1,
	"boards_by_standard":          1,
	"admissions_open_by_standard": 1,
	"streams_offered":             1,
	"config_revision":             1,
}

// ConfigState is the curriculum of one institution as last saved.
type ConfigState struct {
	Type   string
	Config curriculum.Config
	// Revision is "" for records saved before revisions existed.
	Revision string
}

// GetConfig loads only the curriculum of an institution, its type and the
// revision it was saved under.
func (s *Store) GetConfig(ctx context.Context, id primitive.ObjectID) (ConfigState, error) {
	raw, err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(configProjection)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ConfigState{}, ErrNotFound
		}
		return ConfigState{}, err
	}
	st := ConfigState{Config: curriculum.Reconcile(curriculum.DecodeRecord(raw))}
	st.Type, _ = raw.Lookup("type").StringValueOK()
	st.Revision, _ = raw.Lookup("config_revision").StringValueOK()
	return st, nil
}

// SaveConfig derives the aggregates of cfg and stores them with the
// canonical map, returning the new revision. The write only succeeds if the
// stored revision still equals expectedRevision; an empty expectedRevision
// matches only records that have never been saved with a revision (legacy
// imports). A mismatch returns ErrRevisionConflict.
func (s *Store) SaveConfig(ctx context.Context, id primitive.ObjectID, cfg curriculum.Config, expectedRevision string) (string, error) {
	doc := cfg.Document()
	rev := uuid.NewString()

	filter := bson.M{"_id": id, "config_revision": expectedRevision}
	if expectedRevision == "" {
		filter["config_revision"] = bson.M{"$in": bson.A{nil, ""}}
	}
	set := bson.M{
		"board_grade_map":             doc.BoardGradeMap,
		"boards_offered":              doc.BoardsOffered,
		"standards_available":         doc.StandardsAvailable,
		"boards_by_standard":          doc.BoardsByStandard,
		"admissions_open_by_standard": doc.AdmissionsOpenByStandard,
		"admissions_open":             doc.AdmissionsOpen,
		"streams_offered":             doc.StreamsOffered,
		"config_revision":             rev,
		"updated_at":                  time.Now().UTC(),
	}

	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return "", err
	}
	if res.MatchedCount == 0 {
		exists, err := s.exists(ctx, id)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrRevisionConflict
		}
		return "", ErrNotFound
	}
	return rev, nil
}

func (s *Store) exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update modifies an institution's profile fields and refreshes UpdatedAt.
// Curriculum fields are saved through SaveConfig.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, inst models.Institution) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if inst.Name != "" {
		set["name"] = inst.Name
		set["name_ci"] = text.Fold(inst.Name)
	}
	if inst.Type != "" {
		set["type"] = inst.Type
	}
	if inst.City != "" {
		set["city"] = inst.City
		set["city_ci"] = text.Fold(inst.City)
	}
	if inst.State != "" {
		set["state"] = inst.State
		set["state_ci"] = text.Fold(inst.State)
	}
	if inst.ContactInfo != "" {
		set["contact_info"] = htmlsanitize.PlainText(inst.ContactInfo)
	}
	if inst.Description != "" {
		set["description"] = htmlsanitize.Sanitize(inst.Description)
	}
	if inst.Status != "" {
		set["status"] = inst.Status
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateInstitution
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an institution by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns institutions matching the given filter with optional find options.
// Each result has its curriculum reconciled.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Institution, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Institution
	for cur.Next(ctx) {
		inst, err := decode(cur.Current)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, cur.Err()
}

// Count returns the number of institutions matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
