// internal/app/features/institutions/curriculum.go
package institutions

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	institutionstore "github.com/dalemusser/admithub/internal/app/store/institutions"
	"github.com/dalemusser/admithub/internal/app/system/timeouts"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"go.uber.org/zap"
)

// ServeCurriculum handles GET /institutions/{id}/curriculum. Legacy records
// come back reconstructed in the canonical shape.
func (h *Handler) ServeCurriculum(w http.ResponseWriter, r *http.Request) {
	id, err := institutionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get curriculum")
	defer cancel()

	st, err := institutionstore.New(h.DB).GetConfig(ctx, id)
	if err != nil {
		if errors.Is(err, institutionstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "institution not found")
			return
		}
		h.serverError(w, r, "get curriculum failed", err, zap.String("institution_id", id.Hex()))
		return
	}
	writeJSON(w, http.StatusOK, newCurriculumResponse(st.Type, st.Config, st.Revision))
}

// HandleSaveCurriculum handles PUT /institutions/{id}/curriculum.
//
// School configurations must pass validation. The body's revision must match
// the stored one; a stale revision answers 409 so the form can reload.
func (h *Handler) HandleSaveCurriculum(w http.ResponseWriter, r *http.Request) {
	id, err := institutionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in curriculumInput
	if !decodeBody(w, r, &in) {
		return
	}
	if !validateInput(w, in) {
		return
	}
	if problems := in.unknownBoards(); len(problems) > 0 {
		writeProblems(w, problems[0].Message, problems)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save curriculum")
	defer cancel()

	store := institutionstore.New(h.DB)
	st, err := store.GetConfig(ctx, id)
	if err != nil {
		if errors.Is(err, institutionstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "institution not found")
			return
		}
		h.serverError(w, r, "load curriculum failed", err, zap.String("institution_id", id.Hex()))
		return
	}

	cfg := in.config()
	if err := curriculum.ValidateFor(st.Type, cfg); err != nil {
		h.Log.Info("curriculum rejected",
			zap.String("institution_id", id.Hex()),
			zap.Error(err))
		problems := curriculum.Problems(err)
		writeProblems(w, problems[0].Message, problems)
		return
	}

	rev, err := store.SaveConfig(ctx, id, cfg, in.Revision)
	switch {
	case errors.Is(err, institutionstore.ErrRevisionConflict):
		writeError(w, http.StatusConflict, "The curriculum was changed by someone else. Reload and try again.")
		return
	case errors.Is(err, institutionstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "institution not found")
		return
	case err != nil:
		h.serverError(w, r, "save curriculum failed", err, zap.String("institution_id", id.Hex()))
		return
	}

	h.Log.Info("curriculum saved",
		zap.String("institution_id", id.Hex()),
		zap.Int("boards", cfg.Boards.Len()),
		zap.String("revision", rev))
	writeJSON(w, http.StatusOK, newCurriculumResponse(st.Type, cfg, rev))
}

// HandlePreview handles POST /institutions/curriculum/preview: derive the
// aggregates and validation problems of a configuration without saving it.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var in previewInput
	if !decodeBody(w, r, &in) {
		return
	}
	if !validateInput(w, in) {
		return
	}
	if problems := in.Curriculum.unknownBoards(); len(problems) > 0 {
		writeProblems(w, problems[0].Message, problems)
		return
	}

	instType := in.Type
	if instType == "" {
		instType = h.DefaultType
	}
	writeJSON(w, http.StatusOK, newCurriculumResponse(instType, in.Curriculum.config(), in.Curriculum.Revision))
}

// HandleEdit handles POST /institutions/curriculum/edit: apply one editor
// operation to the submitted configuration and return the result. The
// server keeps no form state; the client sends the whole configuration each
// time.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in editInput
	if !decodeBody(w, r, &in) {
		return
	}
	if !validateInput(w, in) {
		return
	}
	if problems := in.Curriculum.unknownBoards(); len(problems) > 0 {
		writeProblems(w, problems[0].Message, problems)
		return
	}

	cfg, problem := applyEdit(in.Curriculum.config(), in)
	if problem != nil {
		writeProblems(w, problem.Message, []curriculum.Problem{*problem})
		return
	}

	instType := in.Type
	if instType == "" {
		instType = h.DefaultType
	}
	writeJSON(w, http.StatusOK, newCurriculumResponse(instType, cfg, in.Curriculum.Revision))
}

func required(field, label string) *curriculum.Problem {
	return &curriculum.Problem{Field: field, Message: label + " is required."}
}

// applyEdit runs one editor operation. cfg is owned by the caller's request.
func applyEdit(cfg curriculum.Config, in editInput) (curriculum.Config, *curriculum.Problem) {
	switch in.Op {
	case opToggleBoard:
		if in.Board == "" {
			return cfg, required("board", "Board")
		}
		cfg.Boards = curriculum.ToggleBoard(cfg.Boards, in.Board)
		return cfg, nil

	case opToggleGrade, opSetSection, opSelectAll, opClear:
		if in.Board == "" {
			return cfg, required("board", "Board")
		}
		sel, ok := cfg.Boards.Selection(in.Board)
		if !ok {
			return cfg, &curriculum.Problem{
				Field:   "board",
				Message: fmt.Sprintf("%s is not enabled", in.Board),
			}
		}
		switch in.Op {
		case opToggleGrade:
			if in.Grade == 0 {
				return cfg, required("grade", "Grade")
			}
			sel = curriculum.ToggleGrade(sel, in.Grade)
		case opSetSection:
			if in.Section == "" {
				return cfg, required("section", "Section")
			}
			sel = curriculum.SetSectionGrades(sel, in.Section, in.Grades)
		case opSelectAll:
			sel = curriculum.SelectAllGrades(sel)
		case opClear:
			sel = curriculum.ClearGrades(sel)
		}
		cfg.Boards = curriculum.WithSelection(cfg.Boards, in.Board, sel)
		return cfg, nil

	case opSetAdmission:
		if in.Range == "" {
			return cfg, required("range", "Standard range")
		}
		if in.Open == nil {
			return cfg, required("open", "Open")
		}
		cfg.AdmissionsOpenByStandard[in.Range] = *in.Open
		return cfg, nil

	case opToggleStream:
		if in.Stream == "" {
			return cfg, required("stream", "Stream")
		}
		if slices.Contains(cfg.StreamsOffered, in.Stream) {
			cfg.StreamsOffered = slices.DeleteFunc(cfg.StreamsOffered, func(s curriculum.Stream) bool { return s == in.Stream })
		} else {
			cfg.StreamsOffered = append(cfg.StreamsOffered, in.Stream)
		}
		return cfg, nil
	}
	return cfg, &curriculum.Problem{Field: "op", Message: "unknown operation " + in.Op}
}
