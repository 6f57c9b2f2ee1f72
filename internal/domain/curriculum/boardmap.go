// internal/domain/curriculum/boardmap.go
package curriculum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Entry pairs an enabled board with its grade selection.
type Entry struct {
	Board     string
	Selection BoardGradeSelection
}

// BoardGradeMap is the canonical curriculum value: the boards an operator
// has enabled, in the order they were enabled, each with its grade
// selection.
//
// A board is enabled iff it is a key of the map. An enabled board with an
// empty selection is a legal editing state that Validate rejects; it is not
// the same as the board being absent.
//
// The zero value is an empty map. Values are immutable from the outside:
// accessors return copies and the editor functions return new maps.
type BoardGradeMap struct {
	order []string
	sel   map[string]BoardGradeSelection
}

// NewBoardGradeMap builds a map from entries. A repeated board keeps its
// first position and takes the last selection given for it.
func NewBoardGradeMap(entries ...Entry) BoardGradeMap {
	m := BoardGradeMap{}
	for _, e := range entries {
		m = m.set(e.Board, e.Selection.normalized())
	}
	return m
}

// Len returns the number of enabled boards.
func (m BoardGradeMap) Len() int { return len(m.order) }

// Boards returns the enabled boards in insertion order.
func (m BoardGradeMap) Boards() []string { return slices.Clone(m.order) }

// Enabled reports whether board is a key of the map.
func (m BoardGradeMap) Enabled(board string) bool {
	_, ok := m.sel[board]
	return ok
}

// Selection returns a copy of the grades selected for board.
func (m BoardGradeMap) Selection(board string) (BoardGradeSelection, bool) {
	sel, ok := m.sel[board]
	if !ok {
		return BoardGradeSelection{}, false
	}
	return sel.clone(), true
}

// Entries returns the map as an ordered list.
func (m BoardGradeMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.order))
	for _, b := range m.order {
		out = append(out, Entry{Board: b, Selection: m.sel[b].clone()})
	}
	return out
}

func (m BoardGradeMap) clone() BoardGradeMap {
	out := BoardGradeMap{
		order: slices.Clone(m.order),
		sel:   make(map[string]BoardGradeSelection, len(m.sel)),
	}
	for b, sel := range m.sel {
		out.sel[b] = sel.clone()
	}
	return out
}

// set returns a copy of m with board set to sel, appending board if new.
func (m BoardGradeMap) set(board string, sel BoardGradeSelection) BoardGradeMap {
	out := m.clone()
	if _, ok := out.sel[board]; !ok {
		out.order = append(out.order, board)
	}
	out.sel[board] = sel.clone()
	return out
}

// without returns a copy of m with board removed.
func (m BoardGradeMap) without(board string) BoardGradeMap {
	out := m.clone()
	delete(out.sel, board)
	out.order = slices.DeleteFunc(out.order, func(b string) bool { return b == board })
	return out
}

// MarshalJSON emits the sections with arrays, never null.
func (sel BoardGradeSelection) MarshalJSON() ([]byte, error) {
	type plain BoardGradeSelection
	return json.Marshal(plain(sel.clone()))
}

// MarshalJSON writes the map as an object whose keys follow insertion order.
func (m BoardGradeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.sel[b])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of board selections, keeping key order.
// Selections are normalized: grades outside their section are dropped.
func (m *BoardGradeMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = BoardGradeMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("curriculum: board grade map must be a JSON object")
	}
	out := BoardGradeMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		board, _ := tok.(string)
		var sel BoardGradeSelection
		if err := dec.Decode(&sel); err != nil {
			return fmt.Errorf("curriculum: board %q: %w", board, err)
		}
		out = out.set(board, sel.normalized())
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalBSONValue stores the map as an embedded document in insertion
// order, each board holding primary, middle and high int arrays.
func (m BoardGradeMap) MarshalBSONValue() (bsontype.Type, []byte, error) {
	doc := bson.D{}
	for _, b := range m.order {
		sel := m.sel[b]
		doc = append(doc, bson.E{Key: b, Value: bson.D{
			{Key: "primary", Value: gradeArray(sel.Primary)},
			{Key: "middle", Value: gradeArray(sel.Middle)},
			{Key: "high", Value: gradeArray(sel.High)},
		}})
	}
	return bson.MarshalValue(doc)
}

func gradeArray(grades []Grade) bson.A {
	out := bson.A{}
	for _, g := range grades {
		out = append(out, int32(g))
	}
	return out
}
