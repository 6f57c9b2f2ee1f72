// internal/app/features/institutions/types.go
package institutions

import (
	"fmt"
	"time"

	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
)

// curriculumInput is the configuration a form session submits. The map keeps
// the order boards were enabled in.
type curriculumInput struct {
	BoardGradeMap            curriculum.BoardGradeMap          `json:"boardGradeMap"`
	AdmissionsOpenByStandard map[curriculum.StandardRange]bool `json:"admissionsOpenByStandard"`
	StreamsOffered           []curriculum.Stream               `json:"streamsOffered" validate:"max=3,dive,stream" label:"Streams"`

	// Revision is the config_revision the form was loaded with. Only used
	// when saving.
	Revision string `json:"revision,omitempty"`
}

// config normalizes the submitted value the same way a stored record is
// reconciled: grades outside their section are dropped, missing admission
// flags are open, and streams are de-duplicated.
func (in curriculumInput) config() curriculum.Config {
	return curriculum.Reconcile(curriculum.Record{
		BoardGradeMap:            in.BoardGradeMap,
		AdmissionsOpenByStandard: in.AdmissionsOpenByStandard,
		StreamsOffered:           in.StreamsOffered,
	})
}

// unknownBoards reports boards that are not in the catalog.
func (in curriculumInput) unknownBoards() []curriculum.Problem {
	var out []curriculum.Problem
	for _, b := range in.BoardGradeMap.Boards() {
		if !curriculum.IsBoard(b) {
			out = append(out, curriculum.Problem{
				Field:   "boardGradeMap." + b,
				Message: fmt.Sprintf("%s is not a supported board", b),
			})
		}
	}
	return out
}

type createInstitutionInput struct {
	Name        string           `json:"name" validate:"notblank,max=200" label:"Institution name"`
	Type        string           `json:"type" validate:"required,institution_type" label:"Institution type"`
	City        string           `json:"city" validate:"max=100" label:"City"`
	State       string           `json:"state" validate:"max=100" label:"State"`
	ContactInfo string           `json:"contactInfo" validate:"max=500" label:"Contact info"`
	Description string           `json:"description" validate:"max=5000" label:"Description"`
	Curriculum  *curriculumInput `json:"curriculum"`
}

// updateInstitutionInput carries profile edits. The type is fixed at
// creation since it decides whether a curriculum applies.
type updateInstitutionInput struct {
	Name        string `json:"name" validate:"max=200" label:"Institution name"`
	City        string `json:"city" validate:"max=100" label:"City"`
	State       string `json:"state" validate:"max=100" label:"State"`
	ContactInfo string `json:"contactInfo" validate:"max=500" label:"Contact info"`
	Description string `json:"description" validate:"max=5000" label:"Description"`
	Status      string `json:"status" validate:"omitempty,oneof=active disabled" label:"Status"`
}

type previewInput struct {
	Type       string          `json:"type" validate:"omitempty,institution_type" label:"Institution type"`
	Curriculum curriculumInput `json:"curriculum"`
}

// Editor operations accepted by HandleEdit.
const (
	opToggleBoard  = "toggle_board"
	opToggleGrade  = "toggle_grade"
	opSetSection   = "set_section"
	opSelectAll    = "select_all"
	opClear        = "clear"
	opSetAdmission = "set_admission"
	opToggleStream = "toggle_stream"
)

type editInput struct {
	Type       string                   `json:"type" validate:"omitempty,institution_type" label:"Institution type"`
	Op         string                   `json:"op" validate:"required,oneof=toggle_board toggle_grade set_section select_all clear set_admission toggle_stream" label:"Operation"`
	Board      string                   `json:"board" validate:"omitempty,board" label:"Board"`
	Grade      curriculum.Grade         `json:"grade" validate:"omitempty,min=1,max=12" label:"Grade"`
	Section    curriculum.Section       `json:"section" validate:"omitempty,oneof=primary middle high" label:"Section"`
	Grades     []curriculum.Grade       `json:"grades" validate:"max=12,dive,min=1,max=12" label:"Grades"`
	Range      curriculum.StandardRange `json:"range" validate:"omitempty,oneof=1-5 6-10 11-12" label:"Standard range"`
	Open       *bool                    `json:"open"`
	Stream     curriculum.Stream        `json:"stream" validate:"omitempty,stream" label:"Stream"`
	Curriculum curriculumInput          `json:"curriculum"`
}

// curriculumResponse is the configuration document plus what a form needs
// to render it.
type curriculumResponse struct {
	curriculum.Document
	Summaries map[string]string    `json:"summaries"`
	Revision  string               `json:"revision,omitempty"`
	Valid     bool                 `json:"valid"`
	Problems  []curriculum.Problem `json:"problems"`
}

func newCurriculumResponse(instType string, cfg curriculum.Config, revision string) curriculumResponse {
	problems := curriculum.Problems(curriculum.ValidateFor(instType, cfg))
	if problems == nil {
		problems = []curriculum.Problem{}
	}
	return curriculumResponse{
		Document:  cfg.Document(),
		Summaries: cfg.Summaries(),
		Revision:  revision,
		Valid:     len(problems) == 0,
		Problems:  problems,
	}
}

type institutionResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	City        string              `json:"city"`
	State       string              `json:"state"`
	ContactInfo string              `json:"contactInfo"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Curriculum  *curriculumResponse `json:"curriculum,omitempty"`
}

func newInstitutionResponse(inst models.Institution) institutionResponse {
	resp := institutionResponse{
		ID:          inst.ID.Hex(),
		Name:        inst.Name,
		Type:        inst.Type,
		City:        inst.City,
		State:       inst.State,
		ContactInfo: inst.ContactInfo,
		Description: inst.Description,
		Status:      inst.Status,
		CreatedAt:   inst.CreatedAt,
		UpdatedAt:   inst.UpdatedAt,
	}
	if inst.IsSchool() {
		cr := newCurriculumResponse(inst.Type, inst.Curriculum, inst.ConfigRevision)
		resp.Curriculum = &cr
	}
	return resp
}

// institutionRow is one entry of the directory listing.
type institutionRow struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Type               string                `json:"type"`
	City               string                `json:"city"`
	State              string                `json:"state"`
	BoardsOffered      []string              `json:"boardsOffered"`
	StandardsAvailable []curriculum.Standard `json:"standardsAvailable"`
	AdmissionsOpen     bool                  `json:"admissionsOpen"`
}

// listResponse is one page of the directory. Total counts every match of
// the filters, not just this page.
type listResponse struct {
	Institutions []institutionRow `json:"institutions"`
	Total        int64            `json:"total"`
	HasPrev      bool             `json:"hasPrev"`
	HasNext      bool             `json:"hasNext"`
	PrevCursor   string           `json:"prevCursor,omitempty"`
	NextCursor   string           `json:"nextCursor,omitempty"`
}

type errorResponse struct {
	Error    string               `json:"error"`
	Problems []curriculum.Problem `json:"problems,omitempty"`
}
