package institutions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/admithub/internal/app/features/institutions"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type curriculumBody struct {
	BoardGradeMap            curriculum.BoardGradeMap `json:"boardGradeMap"`
	BoardsOffered            []string                 `json:"boardsOffered"`
	StandardsAvailable       []string                 `json:"standardsAvailable"`
	BoardsByStandard         map[string][]string      `json:"boardsByStandard"`
	AdmissionsOpenByStandard map[string]bool          `json:"admissionsOpenByStandard"`
	AdmissionsOpen           bool                     `json:"admissionsOpen"`
	StreamsOffered           []string                 `json:"streamsOffered"`
	Summaries                map[string]string        `json:"summaries"`
	Revision                 string                   `json:"revision"`
	Valid                    bool                     `json:"valid"`
	Problems                 []problem                `json:"problems"`
}

type errorBody struct {
	Error    string    `json:"error"`
	Problems []problem `json:"problems"`
}

func fields(ps []problem) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Field
	}
	return out
}

// newRouter builds the feature router. Preview and edit never touch the
// database, so those tests pass a nil DB.
func newRouter(h *institutions.Handler) http.Handler {
	return institutions.Routes(h)
}

func serve(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePreview_DerivesAggregates(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	body := map[string]any{
		"curriculum": map[string]any{
			"boardGradeMap": map[string]any{
				"CBSE": map[string]any{"primary": []int{2, 1}, "middle": []int{}, "high": []int{11}},
			},
			"admissionsOpenByStandard": map[string]bool{"6-10": false},
			"streamsOffered":           []string{"Science"},
		},
	}
	rec := serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/preview", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got curriculumBody
	testutil.DecodeJSON(t, rec, &got)

	if !got.Valid || len(got.Problems) != 0 {
		t.Errorf("expected valid configuration, got problems %v", got.Problems)
	}
	if diff := cmp.Diff([]string{"CBSE"}, got.BoardsOffered); diff != "" {
		t.Errorf("boardsOffered (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Primary", "High"}, got.StandardsAvailable); diff != "" {
		t.Errorf("standardsAvailable (-want +got):\n%s", diff)
	}
	wantByStd := map[string][]string{"1-5": {"CBSE"}, "6-10": {}, "11-12": {"CBSE"}}
	if diff := cmp.Diff(wantByStd, got.BoardsByStandard); diff != "" {
		t.Errorf("boardsByStandard (-want +got):\n%s", diff)
	}
	wantFlags := map[string]bool{"1-5": true, "6-10": false, "11-12": true}
	if diff := cmp.Diff(wantFlags, got.AdmissionsOpenByStandard); diff != "" {
		t.Errorf("admissionsOpenByStandard (-want +got):\n%s", diff)
	}
	if !got.AdmissionsOpen {
		t.Error("admissionsOpen should be true")
	}
	if got.Summaries["CBSE"] != "Primary&High" {
		t.Errorf("summary = %q, want Primary&High", got.Summaries["CBSE"])
	}
	sel, _ := got.BoardGradeMap.Selection("CBSE")
	if diff := cmp.Diff([]curriculum.Grade{1, 2}, sel.Primary); diff != "" {
		t.Errorf("primary grades should be sorted (-want +got):\n%s", diff)
	}
}

func TestHandlePreview_ReportsAllProblems(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	body := map[string]any{
		"curriculum": map[string]any{
			"boardGradeMap": map[string]any{
				"CBSE": map[string]any{"primary": []int{}, "middle": []int{}, "high": []int{}},
			},
		},
	}
	rec := serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/preview", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got curriculumBody
	testutil.DecodeJSON(t, rec, &got)

	if got.Valid {
		t.Error("expected invalid configuration")
	}
	if diff := cmp.Diff([]string{"boardsOffered", "boardGradeMap.CBSE"}, fields(got.Problems)); diff != "" {
		t.Errorf("problem fields (-want +got):\n%s", diff)
	}
	if got.Problems[1].Message != "select at least one grade for CBSE" {
		t.Errorf("message = %q", got.Problems[1].Message)
	}
	if got.BoardsOffered == nil || len(got.BoardsOffered) != 0 {
		t.Errorf("boardsOffered = %v, want empty list", got.BoardsOffered)
	}
}

func TestHandlePreview_MissingStream(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	body := map[string]any{
		"curriculum": map[string]any{
			"boardGradeMap": map[string]any{"IB": map[string]any{"high": []int{11, 12}}},
		},
	}
	var got curriculumBody
	testutil.DecodeJSON(t, serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/preview", body)), &got)

	if diff := cmp.Diff([]string{"streamsOffered"}, fields(got.Problems)); diff != "" {
		t.Errorf("problem fields (-want +got):\n%s", diff)
	}
}

func TestHandlePreview_NonSchoolSkipsValidation(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	body := map[string]any{"type": "College", "curriculum": map[string]any{}}
	var got curriculumBody
	testutil.DecodeJSON(t, serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/preview", body)), &got)

	if !got.Valid {
		t.Errorf("non-school configuration should be valid, got %v", got.Problems)
	}
}

func TestHandlePreview_BadInput(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantField string
	}{
		{
			name:     "not an object",
			body:     []int{1, 2},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "board map not an object",
			body:     map[string]any{"curriculum": map[string]any{"boardGradeMap": []string{"CBSE"}}},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown board",
			body: map[string]any{"curriculum": map[string]any{
				"boardGradeMap": map[string]any{"NIOS": map[string]any{"primary": []int{1}}},
			}},
			wantCode:  http.StatusUnprocessableEntity,
			wantField: "boardGradeMap.NIOS",
		},
		{
			name: "unknown stream",
			body: map[string]any{"curriculum": map[string]any{
				"streamsOffered": []string{"Science", "Vocational"},
			}},
			wantCode:  http.StatusUnprocessableEntity,
			wantField: "curriculum.streamsOffered[1]",
		},
		{
			name:      "unknown type",
			body:      map[string]any{"type": "Kindergarten"},
			wantCode:  http.StatusUnprocessableEntity,
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/preview", tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantField == "" {
				return
			}
			var got errorBody
			testutil.DecodeJSON(t, rec, &got)
			if len(got.Problems) == 0 || got.Problems[0].Field != tt.wantField {
				t.Errorf("problems = %v, want field %q", got.Problems, tt.wantField)
			}
		})
	}
}

func TestHandleEdit(t *testing.T) {
	router := newRouter(institutions.NewHandler(nil, "School", zap.NewNop()))

	cbse := func(sel map[string]any) map[string]any {
		return map[string]any{"boardGradeMap": map[string]any{"CBSE": sel}}
	}
	type grades = []curriculum.Grade

	tests := []struct {
		name   string
		body   map[string]any
		check  func(t *testing.T, got curriculumBody)
		status int
		field  string
	}{
		{
			name: "toggle board on",
			body: map[string]any{"op": "toggle_board", "board": "ICSE", "curriculum": cbse(map[string]any{"primary": []int{1}})},
			check: func(t *testing.T, got curriculumBody) {
				if diff := cmp.Diff([]string{"CBSE", "ICSE"}, got.BoardGradeMap.Boards()); diff != "" {
					t.Errorf("boards (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff([]string{"boardGradeMap.ICSE"}, fields(got.Problems)); diff != "" {
					t.Errorf("problems (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "toggle board off discards grades",
			body: map[string]any{"op": "toggle_board", "board": "CBSE", "curriculum": cbse(map[string]any{"primary": []int{1}})},
			check: func(t *testing.T, got curriculumBody) {
				if got.BoardGradeMap.Len() != 0 {
					t.Errorf("expected no boards, got %v", got.BoardGradeMap.Boards())
				}
			},
		},
		{
			name: "toggle grade adds to its section",
			body: map[string]any{"op": "toggle_grade", "board": "CBSE", "grade": 7, "curriculum": cbse(map[string]any{"middle": []int{9, 6}})},
			check: func(t *testing.T, got curriculumBody) {
				sel, _ := got.BoardGradeMap.Selection("CBSE")
				if diff := cmp.Diff(grades{6, 7, 9}, sel.Middle); diff != "" {
					t.Errorf("middle (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "toggle grade removes",
			body: map[string]any{"op": "toggle_grade", "board": "CBSE", "grade": 1, "curriculum": cbse(map[string]any{"primary": []int{1, 2}})},
			check: func(t *testing.T, got curriculumBody) {
				sel, _ := got.BoardGradeMap.Selection("CBSE")
				if diff := cmp.Diff(grades{2}, sel.Primary); diff != "" {
					t.Errorf("primary (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "set section drops foreign grades",
			body: map[string]any{"op": "set_section", "board": "CBSE", "section": "primary", "grades": []int{3, 1, 7, 3}, "curriculum": cbse(map[string]any{})},
			check: func(t *testing.T, got curriculumBody) {
				sel, _ := got.BoardGradeMap.Selection("CBSE")
				if diff := cmp.Diff(grades{1, 3}, sel.Primary); diff != "" {
					t.Errorf("primary (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "select all",
			body: map[string]any{"op": "select_all", "board": "CBSE", "curriculum": cbse(map[string]any{})},
			check: func(t *testing.T, got curriculumBody) {
				if diff := cmp.Diff([]string{"Primary", "Middle", "High"}, got.StandardsAvailable); diff != "" {
					t.Errorf("standards (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff([]string{"streamsOffered"}, fields(got.Problems)); diff != "" {
					t.Errorf("problems (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "clear",
			body: map[string]any{"op": "clear", "board": "CBSE", "curriculum": cbse(map[string]any{"primary": []int{1}, "high": []int{12}})},
			check: func(t *testing.T, got curriculumBody) {
				sel, ok := got.BoardGradeMap.Selection("CBSE")
				if !ok || curriculum.HasAnyGrade(&sel) {
					t.Errorf("expected CBSE enabled with no grades, got %+v (enabled=%v)", sel, ok)
				}
			},
		},
		{
			name: "set admission",
			body: map[string]any{"op": "set_admission", "range": "11-12", "open": false, "curriculum": cbse(map[string]any{"primary": []int{1}})},
			check: func(t *testing.T, got curriculumBody) {
				if got.AdmissionsOpenByStandard["11-12"] {
					t.Error("expected 11-12 closed")
				}
				if !got.AdmissionsOpen {
					t.Error("other ranges are still open")
				}
			},
		},
		{
			name: "toggle stream",
			body: map[string]any{"op": "toggle_stream", "stream": "Commerce", "curriculum": map[string]any{"streamsOffered": []string{"Science", "Commerce"}}},
			check: func(t *testing.T, got curriculumBody) {
				if diff := cmp.Diff([]string{"Science"}, got.StreamsOffered); diff != "" {
					t.Errorf("streams (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:   "grade on board that is not enabled",
			body:   map[string]any{"op": "toggle_grade", "board": "IB", "grade": 3, "curriculum": cbse(map[string]any{})},
			status: http.StatusUnprocessableEntity,
			field:  "board",
		},
		{
			name:   "grade out of range",
			body:   map[string]any{"op": "toggle_grade", "board": "CBSE", "grade": 13, "curriculum": cbse(map[string]any{})},
			status: http.StatusUnprocessableEntity,
			field:  "grade",
		},
		{
			name:   "missing board",
			body:   map[string]any{"op": "select_all", "curriculum": cbse(map[string]any{})},
			status: http.StatusUnprocessableEntity,
			field:  "board",
		},
		{
			name:   "unknown operation",
			body:   map[string]any{"op": "shuffle"},
			status: http.StatusUnprocessableEntity,
			field:  "op",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, testutil.NewJSONRequest(t, "POST", "/curriculum/edit", tt.body))
			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if rec.Code != want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
			}
			if want != http.StatusOK {
				var got errorBody
				testutil.DecodeJSON(t, rec, &got)
				if len(got.Problems) == 0 || got.Problems[0].Field != tt.field {
					t.Errorf("problems = %v, want field %q", got.Problems, tt.field)
				}
				return
			}
			var got curriculumBody
			testutil.DecodeJSON(t, rec, &got)
			tt.check(t, got)
		})
	}
}

func TestHandleUpdate_RejectsBeforeTouchingStore(t *testing.T) {
	h := institutions.NewHandler(nil, "School", zap.NewNop())

	tests := []struct {
		name   string
		id     string
		body   map[string]any
		status int
	}{
		{"bad id", "not-an-id", map[string]any{"city": "Pune"}, http.StatusBadRequest},
		{"bad status", "64b7f0c2a1b2c3d4e5f60718", map[string]any{"status": "archived"}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "PATCH", "/"+tt.id, tt.body)
			req = testutil.WithChiURLParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			h.HandleUpdate(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
