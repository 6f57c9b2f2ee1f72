package curriculum_test

import (
	"encoding/json"
	"testing"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBoardGradeMap_JSONKeepsOrder(t *testing.T) {
	m := curriculum.NewBoardGradeMap(
		curriculum.Entry{Board: curriculum.BoardIB, Selection: sel{High: []grade{12}}},
		curriculum.Entry{Board: curriculum.BoardCBSE},
	)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"IB":{"primary":[],"middle":[],"high":[12]},"CBSE":{"primary":[],"middle":[],"high":[]}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back curriculum.BoardGradeMap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(m.Entries(), back.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardGradeMap_UnmarshalNormalizes(t *testing.T) {
	var m curriculum.BoardGradeMap
	raw := `{"ICSE": {"primary": [4, 2, 2, 9], "high": [11]}, "CBSE": null}`
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := []curriculum.Entry{
		{Board: "ICSE", Selection: sel{Primary: []grade{2, 4}, Middle: []grade{}, High: []grade{11}}},
		{Board: "CBSE", Selection: sel{Primary: []grade{}, Middle: []grade{}, High: []grade{}}},
	}
	if diff := cmp.Diff(want, m.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBoardGradeMap_UnmarshalRejectsNonObject(t *testing.T) {
	var m curriculum.BoardGradeMap
	if err := json.Unmarshal([]byte(`["CBSE"]`), &m); err == nil {
		t.Error("expected error for array input")
	}
	if err := json.Unmarshal([]byte(`{"CBSE": {"primary": ["one"]}}`), &m); err == nil {
		t.Error("expected error for non-integer grade")
	}
}

func TestBoardGradeMap_BSONRoundTrip(t *testing.T) {
	cfg := curriculum.NewConfig()
	cfg.Boards = curriculum.NewBoardGradeMap(
		curriculum.Entry{Board: curriculum.BoardStateBoard, Selection: sel{Middle: []grade{7, 8}}},
		curriculum.Entry{Board: curriculum.BoardCBSE, Selection: sel{Primary: []grade{1}}},
	)

	data, err := bson.Marshal(cfg.Document())
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}

	got := curriculum.Reconcile(curriculum.DecodeRecord(doc))
	if diff := cmp.Diff(cfg.Boards.Entries(), got.Boards.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}
