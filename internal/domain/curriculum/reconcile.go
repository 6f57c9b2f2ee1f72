// internal/domain/curriculum/reconcile.go
package curriculum

import (
	"math"
	"slices"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Record holds the curriculum fields of a persisted institution. Depending on
// when it was written it carries the canonical map, only the legacy
// per-range board lists, or neither.
type Record struct {
	BoardGradeMap            BoardGradeMap
	BoardsByStandard         map[StandardRange][]string
	AdmissionsOpenByStandard map[StandardRange]bool
	StreamsOffered           []Stream
}

// Reconcile produces the configuration to edit from a persisted record.
//
// A non-empty canonical map is used as is. Otherwise, if any legacy range
// lists a catalog board, the map is rebuilt from the ranges with every grade of each
// listed range selected; partial selections within a range cannot be
// recovered from the legacy shape. Otherwise the map is empty.
//
// Boards and streams outside the catalog are dropped from either shape.
// Admissions flags are reconciled independently: missing ranges are open.
func Reconcile(rec Record) Config {
	cfg := Config{
		AdmissionsOpenByStandard: NormalizeAdmissions(rec.AdmissionsOpenByStandard),
		StreamsOffered:           cleanStreams(rec.StreamsOffered),
	}
	switch {
	case rec.BoardGradeMap.Len() > 0:
		cfg.Boards = normalizeMap(rec.BoardGradeMap)
	case hasLegacyBoards(rec.BoardsByStandard):
		cfg.Boards = FromBoardsByStandard(rec.BoardsByStandard)
	default:
		cfg.Boards = BoardGradeMap{}
	}
	return cfg
}

// FromBoardsByStandard rebuilds a canonical map from legacy range lists.
// Each range a board appears in is fully selected. Boards are ordered so
// that every range list keeps its relative order, which makes the rebuild
// round-trip through Derive; ties (and contradictory lists) fall back to the
// order of first appearance scanning "1-5", "6-10", "11-12".
//
// Boards outside the catalog are dropped.
func FromBoardsByStandard(byStandard map[StandardRange][]string) BoardGradeMap {
	byStandard = catalogBoards(byStandard)
	sels := map[string]BoardGradeSelection{}
	for _, r := range Ranges {
		s, _ := SectionOfRange(r)
		for _, board := range byStandard[r] {
			if board == "" {
				continue
			}
			sels[board] = SetSectionGrades(sels[board], s, SectionGrades(s))
		}
	}

	m := BoardGradeMap{}
	for _, board := range mergeOrder(byStandard) {
		m = m.set(board, sels[board])
	}
	return m
}

// mergeOrder merges the range lists into one board order consistent with
// each list where possible.
func mergeOrder(byStandard map[StandardRange][]string) []string {
	var seen []string
	after := map[string][]string{}
	indegree := map[string]int{}
	for _, r := range Ranges {
		prev := ""
		for _, board := range byStandard[r] {
			if board == "" {
				continue
			}
			if !slices.Contains(seen, board) {
				seen = append(seen, board)
				indegree[board] = 0
			}
			if prev != "" && prev != board && !slices.Contains(after[prev], board) {
				after[prev] = append(after[prev], board)
				indegree[board]++
			}
			prev = board
		}
	}

	out := make([]string, 0, len(seen))
	done := map[string]bool{}
	for len(out) < len(seen) {
		next := ""
		for _, b := range seen {
			if !done[b] && indegree[b] == 0 {
				next = b
				break
			}
		}
		if next == "" {
			// Cycle: take the earliest remaining board.
			for _, b := range seen {
				if !done[b] {
					next = b
					break
				}
			}
		}
		done[next] = true
		out = append(out, next)
		for _, b := range after[next] {
			indegree[b]--
		}
	}
	return out
}

// catalogBoards returns the range lists with non-catalog boards removed.
func catalogBoards(byStandard map[StandardRange][]string) map[StandardRange][]string {
	out := make(map[StandardRange][]string, len(Ranges))
	for _, r := range Ranges {
		for _, b := range byStandard[r] {
			if IsBoard(b) {
				out[r] = append(out[r], b)
			}
		}
	}
	return out
}

func hasLegacyBoards(byStandard map[StandardRange][]string) bool {
	for _, r := range Ranges {
		for _, b := range byStandard[r] {
			if IsBoard(b) {
				return true
			}
		}
	}
	return false
}

// normalizeMap sorts each selection and drops boards outside the catalog.
func normalizeMap(m BoardGradeMap) BoardGradeMap {
	out := BoardGradeMap{}
	for _, b := range m.order {
		if !IsBoard(b) {
			continue
		}
		out = out.set(b, m.sel[b].normalized())
	}
	return out
}

func cleanStreams(in []Stream) []Stream {
	out := make([]Stream, 0, len(in))
	for _, s := range in {
		if IsStream(string(s)) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// DecodeRecord reads the curriculum fields out of a loosely typed document:
// a bson.D or bson.M loaded from MongoDB, or a map decoded from JSON. Both
// snake_case and camelCase field names are accepted. Fields of the wrong
// type are treated as absent; DecodeRecord never fails.
//
// When the canonical map comes from an unordered map, boards are ordered by
// their position in boards_offered, then by catalog order, then by name.
func DecodeRecord(doc any) Record {
	fields, _ := asFields(doc)
	get := func(keys ...string) any {
		for _, k := range keys {
			for _, f := range fields {
				if f.key == k {
					return f.val
				}
			}
		}
		return nil
	}

	offered := decodeStrings(get("boards_offered", "boardsOffered"))
	return Record{
		BoardGradeMap:            decodeBoardMap(get("board_grade_map", "boardGradeMap"), offered),
		BoardsByStandard:         decodeByStandard(get("boards_by_standard", "boardsByStandard")),
		AdmissionsOpenByStandard: decodeFlags(get("admissions_open_by_standard", "admissionsOpenByStandard")),
		StreamsOffered:           decodeStreams(get("streams_offered", "streamsOffered")),
	}
}

type field struct {
	key string
	val any
}

// asFields flattens a document-like value. ordered is false when the source
// had no key order.
func asFields(v any) (fs []field, ordered bool) {
	switch d := v.(type) {
	case bson.D:
		for _, e := range d {
			fs = append(fs, field{key: e.Key, val: e.Value})
		}
		return fs, true
	case bson.Raw:
		var dd bson.D
		if err := bson.Unmarshal(d, &dd); err != nil {
			return nil, true
		}
		return asFields(dd)
	case bson.M:
		return mapFields(d), false
	case map[string]any:
		return mapFields(d), false
	}
	return nil, false
}

func mapFields(m map[string]any) []field {
	fs := make([]field, 0, len(m))
	for k, v := range m {
		fs = append(fs, field{key: k, val: v})
	}
	sort.Slice(fs, func(i, j int) bool { return fs[i].key < fs[j].key })
	return fs
}

func asList(v any) []any {
	switch l := v.(type) {
	case bson.A:
		return l
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	}
	return nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case Grade:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	}
	return 0, false
}

func decodeStrings(v any) []string {
	var out []string
	for _, item := range asList(v) {
		if s, ok := item.(string); ok && s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func decodeGrades(v any) []Grade {
	var out []Grade
	for _, item := range asList(v) {
		if n, ok := asInt(item); ok {
			out = append(out, Grade(n))
		}
	}
	return out
}

func decodeSelection(v any) BoardGradeSelection {
	fields, _ := asFields(v)
	var sel BoardGradeSelection
	for _, f := range fields {
		switch Section(f.key) {
		case Primary:
			sel.Primary = decodeGrades(f.val)
		case Middle:
			sel.Middle = decodeGrades(f.val)
		case High:
			sel.High = decodeGrades(f.val)
		}
	}
	return sel.normalized()
}

func decodeBoardMap(v any, offered []string) BoardGradeMap {
	fields, ordered := asFields(v)
	if !ordered {
		rank := func(b string) (int, int) {
			if i := slices.Index(offered, b); i >= 0 {
				return 0, i
			}
			if i := boardRank(b); i >= 0 {
				return 1, i
			}
			return 2, 0
		}
		sort.SliceStable(fields, func(i, j int) bool {
			gi, ri := rank(fields[i].key)
			gj, rj := rank(fields[j].key)
			if gi != gj {
				return gi < gj
			}
			if ri != rj {
				return ri < rj
			}
			return fields[i].key < fields[j].key
		})
	}
	m := BoardGradeMap{}
	for _, f := range fields {
		if !IsBoard(f.key) {
			continue
		}
		m = m.set(f.key, decodeSelection(f.val))
	}
	return m
}

func decodeByStandard(v any) map[StandardRange][]string {
	fields, _ := asFields(v)
	out := make(map[StandardRange][]string, len(Ranges))
	for _, f := range fields {
		r := StandardRange(f.key)
		if _, ok := SectionOfRange(r); ok {
			out[r] = decodeStrings(f.val)
		}
	}
	return out
}

func decodeFlags(v any) map[StandardRange]bool {
	fields, _ := asFields(v)
	out := make(map[StandardRange]bool, len(Ranges))
	for _, f := range fields {
		r := StandardRange(f.key)
		if _, ok := SectionOfRange(r); !ok {
			continue
		}
		if open, ok := f.val.(bool); ok {
			out[r] = open
		}
	}
	return out
}

func decodeStreams(v any) []Stream {
	var out []Stream
	for _, s := range decodeStrings(v) {
		out = append(out, Stream(s))
	}
	return cleanStreams(out)
}
