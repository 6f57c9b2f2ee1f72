// internal/app/features/institutions/view.go
package institutions

import (
	"errors"
	"net/http"
	"strings"

	institutionstore "github.com/dalemusser/admithub/internal/app/store/institutions"
	"github.com/dalemusser/admithub/internal/app/system/timeouts"
	"github.com/dalemusser/admithub/internal/domain/models"
	"go.uber.org/zap"
)

// ServeView handles GET /institutions/{id}: the profile plus, for schools,
// the reconciled curriculum.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := institutionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get institution")
	defer cancel()

	inst, err := institutionstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, institutionstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "institution not found")
			return
		}
		h.serverError(w, r, "get institution failed", err, zap.String("institution_id", id.Hex()))
		return
	}
	writeJSON(w, http.StatusOK, newInstitutionResponse(inst))
}

// HandleDelete handles DELETE /institutions/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := institutionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete institution")
	defer cancel()

	n, err := institutionstore.New(h.DB).Delete(ctx, id)
	if err != nil {
		h.serverError(w, r, "delete institution failed", err, zap.String("institution_id", id.Hex()))
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "institution not found")
		return
	}
	h.Log.Info("institution deleted", zap.String("institution_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdate handles PATCH /institutions/{id}: profile fields only. Blank
// fields are left unchanged; the curriculum is saved through its own route.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := institutionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in updateInstitutionInput
	if !decodeBody(w, r, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if !validateInput(w, in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update institution")
	defer cancel()

	store := institutionstore.New(h.DB)
	err = store.Update(ctx, id, models.Institution{
		Name:        in.Name,
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		ContactInfo: in.ContactInfo,
		Description: in.Description,
		Status:      in.Status,
	})
	switch {
	case errors.Is(err, institutionstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "institution not found")
		return
	case errors.Is(err, institutionstore.ErrDuplicateInstitution):
		writeError(w, http.StatusConflict, "An institution with that name already exists.")
		return
	case err != nil:
		h.serverError(w, r, "update institution failed", err, zap.String("institution_id", id.Hex()))
		return
	}

	inst, err := store.GetByID(ctx, id)
	if err != nil {
		h.serverError(w, r, "reload institution failed", err, zap.String("institution_id", id.Hex()))
		return
	}
	h.Log.Info("institution updated", zap.String("institution_id", id.Hex()))
	writeJSON(w, http.StatusOK, newInstitutionResponse(inst))
}
