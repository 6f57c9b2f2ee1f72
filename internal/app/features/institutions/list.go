// internal/app/features/institutions/list.go
package institutions

import (
	"net/http"
	"strconv"
	"strings"

	institutionstore "github.com/dalemusser/admithub/internal/app/store/institutions"
	"github.com/dalemusser/admithub/internal/app/system/paging"
	"github.com/dalemusser/admithub/internal/app/system/timeouts"
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"github.com/dalemusser/admithub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ServeList handles GET /institutions.
//
// Query parameters (all optional): board, standard ("1-5" or "Primary"),
// open (true/false), type, limit, and one of
// before/after carrying a cursor from a previous page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters []bson.M

	if board := strings.TrimSpace(q.Get("board")); board != "" {
		if !curriculum.IsBoard(board) {
			writeError(w, http.StatusBadRequest, "unknown board: "+board)
			return
		}
		filters = append(filters, institutionstore.FilterByBoard(board))
	}
	if std := strings.TrimSpace(q.Get("standard")); std != "" {
		rng, ok := parseStandard(std)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown standard: "+std)
			return
		}
		filters = append(filters, institutionstore.FilterByStandard(rng))
	}
	if open := strings.TrimSpace(q.Get("open")); open != "" {
		b, err := strconv.ParseBool(open)
		if err != nil {
			writeError(w, http.StatusBadRequest, "open must be true or false")
			return
		}
		filters = append(filters, institutionstore.FilterAdmissionsOpen(b))
	}
	if t := strings.TrimSpace(q.Get("type")); t != "" {
		if !models.IsInstitutionType(t) {
			writeError(w, http.StatusBadRequest, "unknown institution type: "+t)
			return
		}
		filters = append(filters, institutionstore.FilterType(t))
	}

	limit, err := paging.ParseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	before, after := strings.TrimSpace(q.Get("before")), strings.TrimSpace(q.Get("after"))
	ks, err := paging.ConfigureKeyset(before, after)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list institutions")
	defer cancel()

	store := institutionstore.New(h.DB)
	filter := institutionstore.And(filters...)

	total, err := store.Count(ctx, filter)
	if err != nil {
		h.serverError(w, r, "count institutions failed", err)
		return
	}

	find := options.Find()
	ks.ApplyToFind(find, "name_ci", limit)
	found, err := store.Find(ctx, institutionstore.And(filter, ks.KeysetWindow("name_ci")), find)
	if err != nil {
		h.serverError(w, r, "list institutions failed", err)
		return
	}
	if ks.Direction == paging.Backward {
		paging.Reverse(found)
	}
	page := paging.TrimPage(&found, before, after, limit)
	prev, next := paging.BuildCursors(found,
		func(i models.Institution) string { return i.NameCI },
		func(i models.Institution) primitive.ObjectID { return i.ID },
	)

	resp := listResponse{
		Institutions: make([]institutionRow, 0, len(found)),
		Total:        total,
		HasPrev:      page.HasPrev,
		HasNext:      page.HasNext,
	}
	if page.HasPrev {
		resp.PrevCursor = prev
	}
	if page.HasNext {
		resp.NextCursor = next
	}
	for _, inst := range found {
		agg := inst.Curriculum.Aggregates()
		resp.Institutions = append(resp.Institutions, institutionRow{
			ID:                 inst.ID.Hex(),
			Name:               inst.Name,
			Type:               inst.Type,
			City:               inst.City,
			State:              inst.State,
			BoardsOffered:      agg.BoardsOffered,
			StandardsAvailable: agg.StandardsAvailable,
			AdmissionsOpen:     agg.AdmissionsOpen,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseStandard accepts a range key or a section label.
func parseStandard(s string) (curriculum.StandardRange, bool) {
	for _, sec := range curriculum.Sections {
		if s == string(sec.Range()) || strings.EqualFold(s, string(sec.Label())) {
			return sec.Range(), true
		}
	}
	return "", false
}
