package institutionstore_test

import (
	"errors"
	"sort"
	"testing"

	institutionstore "github.com/dalemusser/admithub/internal/app/store/institutions"
	"github.com/dalemusser/admithub/internal/app/system/indexes"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	"github.com/dalemusser/admithub/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type grades = []curriculum.Grade

func schoolConfig() curriculum.Config {
	cfg := curriculum.NewConfig()
	cfg.Boards = curriculum.NewBoardGradeMap(
		curriculum.Entry{Board: curriculum.BoardCBSE, Selection: curriculum.BoardGradeSelection{
			Primary: grades{1, 2, 3}, Middle: grades{}, High: grades{11, 12},
		}},
		curriculum.Entry{Board: curriculum.BoardICSE, Selection: curriculum.BoardGradeSelection{
			Primary: grades{}, Middle: grades{6, 7}, High: grades{},
		}},
	)
	cfg.AdmissionsOpenByStandard[curriculum.RangeMiddle] = false
	cfg.StreamsOffered = []curriculum.Stream{curriculum.StreamScience}
	return cfg
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Institution{
		Name:        "Sunrise Public School",
		Type:        models.InstitutionTypeSchool,
		City:        "Pune",
		State:       "MH",
		ContactInfo: "<b>020-1234</b>",
		Description: `<p>Est. 1990</p><script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI != "sunrise public school" {
		t.Errorf("NameCI = %q", created.NameCI)
	}
	if created.Status != models.StatusActive {
		t.Errorf("Status = %q, want active", created.Status)
	}
	if created.ConfigRevision == "" {
		t.Error("expected ConfigRevision to be set")
	}
	if created.ContactInfo != "020-1234" {
		t.Errorf("ContactInfo = %q, want tags stripped", created.ContactInfo)
	}
	if created.Description != "<p>Est. 1990</p>" {
		t.Errorf("Description = %q, want script removed", created.Description)
	}

	// A new institution starts with no boards and admissions open.
	agg := created.Curriculum.Aggregates()
	if len(agg.BoardsOffered) != 0 || !agg.AdmissionsOpen {
		t.Errorf("unexpected default aggregates: %+v", agg)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != created.Name || got.ConfigRevision != created.ConfigRevision {
		t.Errorf("GetByID = %+v, want %+v", got, created)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Institution{Name: "Sunrise", Type: models.InstitutionTypeSchool}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Institution{Name: "SUNRISE", Type: models.InstitutionTypeCollege})
	if !errors.Is(err, institutionstore.ErrDuplicateInstitution) {
		t.Errorf("expected ErrDuplicateInstitution, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, institutionstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = store.GetConfig(ctx, primitive.NewObjectID())
	if !errors.Is(err, institutionstore.ErrNotFound) {
		t.Errorf("GetConfig: expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveConfig_PersistsCanonicalAndAggregates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Institution{Name: "Sunrise", Type: models.InstitutionTypeSchool})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cfg := schoolConfig()
	rev, err := store.SaveConfig(ctx, created.ID, cfg, created.ConfigRevision)
	if err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if rev == "" || rev == created.ConfigRevision {
		t.Errorf("expected a new revision, got %q", rev)
	}

	// Legacy consumers read the flat aggregates straight from the document.
	var raw struct {
		BoardsOffered      []string            `bson:"boards_offered"`
		StandardsAvailable []string            `bson:"standards_available"`
		BoardsByStandard   map[string][]string `bson:"boards_by_standard"`
		AdmissionsOpen     bool                `bson:"admissions_open"`
		BoardGradeMap      bson.D              `bson:"board_grade_map"`
	}
	if err := db.Collection("institutions").FindOne(ctx, bson.M{"_id": created.ID}).Decode(&raw); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if diff := cmp.Diff([]string{"CBSE", "ICSE"}, raw.BoardsOffered); diff != "" {
		t.Errorf("boards_offered mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Primary", "Middle", "High"}, raw.StandardsAvailable); diff != "" {
		t.Errorf("standards_available mismatch (-want +got):\n%s", diff)
	}
	wantByStandard := map[string][]string{"1-5": {"CBSE"}, "6-10": {"ICSE"}, "11-12": {"CBSE"}}
	if diff := cmp.Diff(wantByStandard, raw.BoardsByStandard); diff != "" {
		t.Errorf("boards_by_standard mismatch (-want +got):\n%s", diff)
	}
	if !raw.AdmissionsOpen {
		t.Error("admissions_open should be true while any range is open")
	}
	if len(raw.BoardGradeMap) != 2 || raw.BoardGradeMap[0].Key != "CBSE" {
		t.Errorf("board_grade_map = %v, want CBSE then ICSE", raw.BoardGradeMap)
	}

	loaded, err := store.GetConfig(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if loaded.Revision != rev || loaded.Type != models.InstitutionTypeSchool {
		t.Errorf("GetConfig = %q/%q, want %q/School", loaded.Revision, loaded.Type, rev)
	}
	if diff := cmp.Diff(cfg.Document(), loaded.Config.Document(), cmp.AllowUnexported(curriculum.BoardGradeMap{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveConfig_RevisionConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Institution{Name: "Sunrise", Type: models.InstitutionTypeSchool})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Two form sessions load the same revision; the second save loses.
	if _, err := store.SaveConfig(ctx, created.ID, schoolConfig(), created.ConfigRevision); err != nil {
		t.Fatalf("first SaveConfig failed: %v", err)
	}
	_, err = store.SaveConfig(ctx, created.ID, curriculum.NewConfig(), created.ConfigRevision)
	if !errors.Is(err, institutionstore.ErrRevisionConflict) {
		t.Errorf("expected ErrRevisionConflict, got %v", err)
	}

	_, err = store.SaveConfig(ctx, primitive.NewObjectID(), schoolConfig(), "")
	if !errors.Is(err, institutionstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestStore_SaveConfig_EmptyRevisionOnlyAdoptsLegacy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Institution{Name: "Sunrise", Type: models.InstitutionTypeSchool})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ConfigRevision == "" {
		t.Fatal("Create should assign a revision")
	}

	// A save that omits the revision must not overwrite a tracked record.
	_, err = store.SaveConfig(ctx, created.ID, schoolConfig(), "")
	if !errors.Is(err, institutionstore.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}
	st, err := store.GetConfig(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if st.Revision != created.ConfigRevision || st.Config.Boards.Len() != 0 {
		t.Errorf("record changed: revision %q, %d boards", st.Revision, st.Config.Boards.Len())
	}

	// Records without a revision are adopted once; after that the new
	// revision is required.
	legacyID := fx.CreateLegacySchool(ctx, "Old Town", bson.M{"1-5": bson.A{"CBSE"}}, nil)
	rev, err := store.SaveConfig(ctx, legacyID, schoolConfig(), "")
	if err != nil {
		t.Fatalf("adopting legacy record failed: %v", err)
	}
	if rev == "" {
		t.Fatal("expected a new revision")
	}
	if _, err := store.SaveConfig(ctx, legacyID, schoolConfig(), ""); !errors.Is(err, institutionstore.ErrRevisionConflict) {
		t.Errorf("second empty-revision save: expected ErrRevisionConflict, got %v", err)
	}
}

func TestStore_GetByID_LegacyRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := fx.CreateLegacySchool(ctx, "Old Town School",
		bson.M{"1-5": bson.A{"CBSE", "ICSE"}, "6-10": bson.A{}, "11-12": bson.A{"ICSE"}},
		bson.M{
			"admissions_open_by_standard": bson.M{"11-12": false},
			"streams_offered":             bson.A{"Arts", "Vocational"},
		})

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	cfg := got.Curriculum
	if diff := cmp.Diff([]string{"CBSE", "ICSE"}, cfg.Boards.Boards()); diff != "" {
		t.Errorf("boards mismatch (-want +got):\n%s", diff)
	}
	icse, _ := cfg.Boards.Selection(curriculum.BoardICSE)
	want := curriculum.BoardGradeSelection{Primary: grades{1, 2, 3, 4, 5}, Middle: grades{}, High: grades{11, 12}}
	if diff := cmp.Diff(want, icse); diff != "" {
		t.Errorf("ICSE selection mismatch (-want +got):\n%s", diff)
	}
	wantFlags := map[curriculum.StandardRange]bool{"1-5": true, "6-10": true, "11-12": false}
	if diff := cmp.Diff(wantFlags, cfg.AdmissionsOpenByStandard); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]curriculum.Stream{curriculum.StreamArts}, cfg.StreamsOffered); diff != "" {
		t.Errorf("streams mismatch (-want +got):\n%s", diff)
	}

	// Saving with no revision upgrades the record to the canonical shape.
	rev, err := store.SaveConfig(ctx, id, cfg, "")
	if err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if st, _ := store.GetConfig(ctx, id); st.Revision != rev {
		t.Errorf("revision = %q, want %q", st.Revision, rev)
	}
}

func TestStore_Find_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateInstitution(ctx, "Sunrise", models.InstitutionTypeSchool, schoolConfig())

	closed := curriculum.NewConfig()
	closed.Boards = curriculum.NewBoardGradeMap(curriculum.Entry{
		Board:     curriculum.BoardIB,
		Selection: curriculum.BoardGradeSelection{Middle: grades{8, 9}},
	})
	for _, r := range curriculum.Ranges {
		closed.AdmissionsOpenByStandard[r] = false
	}
	fx.CreateInstitution(ctx, "Lakeside", models.InstitutionTypeSchool, closed)

	fx.CreateLegacySchool(ctx, "Old Town", bson.M{"11-12": bson.A{"State Board"}}, nil)
	fx.CreateInstitution(ctx, "City College", models.InstitutionTypeCollege, curriculum.NewConfig())

	tests := []struct {
		name   string
		filter bson.M
		want   []string
	}{
		{"all", institutionstore.And(), []string{"City College", "Lakeside", "Old Town", "Sunrise"}},
		{"board CBSE", institutionstore.FilterByBoard("CBSE"), []string{"Sunrise"}},
		{"board State Board (legacy)", institutionstore.FilterByBoard("State Board"), []string{"Old Town"}},
		{"standard 11-12", institutionstore.FilterByStandard(curriculum.RangeHigh), []string{"Old Town", "Sunrise"}},
		{"standard 6-10", institutionstore.FilterByStandard(curriculum.RangeMiddle), []string{"Lakeside", "Sunrise"}},
		{"admissions closed", institutionstore.FilterAdmissionsOpen(false), []string{"Lakeside"}},
		{"open schools", institutionstore.And(
			institutionstore.FilterType(models.InstitutionTypeSchool),
			institutionstore.FilterAdmissionsOpen(true),
		), []string{"Old Town", "Sunrise"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Find(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			names := make([]string, 0, len(got))
			for _, inst := range got {
				names = append(names, inst.Name)
			}
			sort.Strings(names)
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}

			n, err := store.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n != int64(len(tt.want)) {
				t.Errorf("Count = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Institution{Name: "Sunrise", Type: models.InstitutionTypeSchool, City: "Pune"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.SaveConfig(ctx, created.ID, schoolConfig(), created.ConfigRevision); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, models.Institution{City: "Nashik"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.City != "Nashik" || got.CityCI != "nashik" {
		t.Errorf("City = %q/%q, want Nashik/nashik", got.City, got.CityCI)
	}
	if got.Curriculum.Boards.Len() != 2 {
		t.Errorf("profile update should keep the curriculum, got %d boards", got.Curriculum.Boards.Len())
	}

	if err := store.Update(ctx, primitive.NewObjectID(), models.Institution{City: "X"}); !errors.Is(err, institutionstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v; want 1, nil", n, err)
	}
	if _, err := store.GetByID(ctx, created.ID); !errors.Is(err, institutionstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
