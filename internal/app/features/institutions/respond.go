// internal/app/features/institutions/respond.go
package institutions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/admithub/internal/app/system/inputval"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var errInvalidID = errors.New("invalid institution id")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeProblems answers 422 with field-level messages.
func writeProblems(w http.ResponseWriter, msg string, problems []curriculum.Problem) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: msg, Problems: problems})
}

func inputProblems(res inputval.Result) []curriculum.Problem {
	out := make([]curriculum.Problem, len(res.Errors))
	for i, e := range res.Errors {
		out[i] = curriculum.Problem{Field: e.Field, Message: e.Message}
	}
	return out
}

// serverError logs err and answers 500 without leaking details.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	h.Log.Error(msg, fields...)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return false
	}
	return true
}

// validateInput runs the struct-tag rules on v, answering 422 on failure.
func validateInput(w http.ResponseWriter, v any) bool {
	if res := inputval.Validate(v); res.HasErrors() {
		writeProblems(w, res.First(), inputProblems(res))
		return false
	}
	return true
}

func institutionID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, errInvalidID
	}
	return id, nil
}
