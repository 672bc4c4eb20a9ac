// Package board implements the board/task state mutations.
//
// Every operation takes the full boards collection and returns a new one.
// The input collection is never modified. Indices are trusted: callers
// derive them from the same snapshot they pass in, and an out-of-range
// index is a programming error.
package board

import (
	"github.com/google/uuid"

	"kanban-board/internal/model"
)

// DefaultColumns are offered for a new board.
var DefaultColumns = []string{"Todo", "Doing"}

// ColumnSpec describes one column of an added or edited board.
//
// From, when set, names the index of an existing column whose tasks the
// edited column keeps. When unset, an edited column keeps the tasks of the
// column at the same position if that column has the same name.
type ColumnSpec struct {
	Name string
	From *int
}

// ActiveBoard returns the index of the active board, or -1.
func ActiveBoard(boards []model.Board) int {
	for i, b := range boards {
		if b.IsActive {
			return i
		}
	}
	return -1
}

// AddBoard appends a new active board with empty columns. Every other
// board becomes inactive.
func AddBoard(boards []model.Board, name string, columns []ColumnSpec) []model.Board {
	next := deactivateAll(model.CloneBoards(boards))
	b := model.Board{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
		Columns:  make([]model.Column, len(columns)),
	}
	for i, spec := range columns {
		b.Columns[i] = model.Column{Name: spec.Name, Tasks: []model.Task{}}
	}
	return append(next, b)
}

// EditBoard replaces the name and columns of the board at boardIndex. The
// active flag is kept. Columns dropped by the edit lose their tasks.
func EditBoard(boards []model.Board, boardIndex int, name string, columns []ColumnSpec) []model.Board {
	next := model.CloneBoards(boards)
	old := next[boardIndex]

	edited := make([]model.Column, len(columns))
	for i, spec := range columns {
		col := model.Column{Name: spec.Name, Tasks: []model.Task{}}
		switch {
		case spec.From != nil:
			col.Tasks = old.Columns[*spec.From].Clone().Tasks
		case i < len(old.Columns) && old.Columns[i].Name == spec.Name:
			col.Tasks = old.Columns[i].Clone().Tasks
		}
		for j := range col.Tasks {
			col.Tasks[j].Status = spec.Name
		}
		edited[i] = col
	}

	old.Name = name
	old.Columns = edited
	next[boardIndex] = old
	return next
}

// DeleteBoard removes the board at boardIndex. When the removed board was
// active, the first remaining board becomes active.
func DeleteBoard(boards []model.Board, boardIndex int) []model.Board {
	wasActive := boards[boardIndex].IsActive
	next := make([]model.Board, 0, len(boards)-1)
	for i, b := range boards {
		if i != boardIndex {
			next = append(next, b.Clone())
		}
	}
	if wasActive && len(next) > 0 {
		next[0].IsActive = true
	}
	return next
}

// SetBoardActive makes the board at index the only active board. An index
// out of range leaves the collection as it is.
func SetBoardActive(boards []model.Board, index int) []model.Board {
	next := model.CloneBoards(boards)
	if index < 0 || index >= len(next) {
		return next
	}
	next = deactivateAll(next)
	next[index].IsActive = true
	return next
}

// EnsureActive activates the first board when the collection is non-empty
// and no board is active.
func EnsureActive(boards []model.Board) []model.Board {
	if len(boards) == 0 || ActiveBoard(boards) >= 0 {
		return model.CloneBoards(boards)
	}
	return SetBoardActive(boards, 0)
}

func deactivateAll(boards []model.Board) []model.Board {
	for i := range boards {
		boards[i].IsActive = false
	}
	return boards
}
