// internal/app/features/institutions/create.go
package institutions

import (
	"errors"
	"net/http"
	"strings"

	institutionstore "github.com/dalemusser/admithub/internal/app/store/institutions"
	"github.com/dalemusser/admithub/internal/app/system/timeouts"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /institutions.
//
// Schools must arrive with a curriculum that passes validation; other types
// may omit it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInstitutionInput
	if !decodeBody(w, r, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = h.DefaultType
	}
	if !validateInput(w, in) {
		return
	}

	cfg := curriculum.NewConfig()
	if in.Curriculum != nil {
		if problems := in.Curriculum.unknownBoards(); len(problems) > 0 {
			writeProblems(w, problems[0].Message, problems)
			return
		}
		cfg = in.Curriculum.config()
	}
	if err := curriculum.ValidateFor(in.Type, cfg); err != nil {
		h.Log.Info("institution create rejected",
			zap.String("name", in.Name),
			zap.Error(err))
		problems := curriculum.Problems(err)
		writeProblems(w, problems[0].Message, problems)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create institution")
	defer cancel()

	created, err := institutionstore.New(h.DB).Create(ctx, models.Institution{
		Name:        in.Name,
		Type:        in.Type,
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		ContactInfo: in.ContactInfo,
		Description: in.Description,
		Curriculum:  cfg,
	})
	if err != nil {
		if errors.Is(err, institutionstore.ErrDuplicateInstitution) {
			writeError(w, http.StatusConflict, "An institution with that name already exists.")
			return
		}
		h.serverError(w, r, "create institution failed", err, zap.String("name", in.Name))
		return
	}

	h.Log.Info("institution created",
		zap.String("institution_id", created.ID.Hex()),
		zap.String("type", created.Type))
	writeJSON(w, http.StatusCreated, newInstitutionResponse(created))
}
