package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"kanban-board/internal/board"
	"kanban-board/internal/events"
	"kanban-board/internal/model"
)

func (s *Store) AddBoard(ctx context.Context, userID uuid.UUID, name string, columns []board.ColumnSpec) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "add_board",
		check: func(boards []model.Board) error {
			for _, spec := range columns {
				if spec.From != nil {
					return fmt.Errorf("%w: a new board has no column %d", ErrIndexOutOfRange, *spec.From)
				}
			}
			return nil
		},
		apply: func(boards []model.Board) []model.Board {
			return board.AddBoard(boards, name, columns)
		},
		event: activeBoardEvent(events.BoardAdded),
	})
}

func (s *Store) EditBoard(ctx context.Context, userID uuid.UUID, boardIndex int, name string, columns []board.ColumnSpec) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "edit_board",
		check: func(boards []model.Board) error {
			if err := checkBoard(boards, boardIndex); err != nil {
				return err
			}
			sources := make(map[int]bool)
			for _, spec := range columns {
				if spec.From == nil {
					continue
				}
				if err := checkColumn(boards[boardIndex], *spec.From); err != nil {
					return err
				}
				if sources[*spec.From] {
					return fmt.Errorf("%w: column %d", ErrDuplicateColumnSource, *spec.From)
				}
				sources[*spec.From] = true
			}
			return nil
		},
		apply: func(boards []model.Board) []model.Board {
			return board.EditBoard(boards, boardIndex, name, columns)
		},
		event: boardEvent(events.BoardEdited, boardIndex),
	})
}

func (s *Store) DeleteBoard(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "delete_board",
		check: func(boards []model.Board) error {
			return checkBoard(boards, boardIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.DeleteBoard(boards, boardIndex)
		},
		event: boardEvent(events.BoardDeleted, boardIndex),
	})
}

// SetBoardActive rejects an out-of-range index instead of silently
// ignoring it.
func (s *Store) SetBoardActive(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "set_board_active",
		check: func(boards []model.Board) error {
			return checkBoard(boards, boardIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.SetBoardActive(boards, boardIndex)
		},
		event: boardEvent(events.BoardActivated, boardIndex),
	})
}

func (s *Store) AddTask(ctx context.Context, userID uuid.UUID, p board.AddTaskParams) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "add_task",
		check: func(boards []model.Board) error {
			b, err := activeBoard(boards)
			if err != nil {
				return err
			}
			return checkColumn(b, p.NewColIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.AddTask(boards, p)
		},
		event: appendedTaskEvent(events.TaskAdded, p.NewColIndex),
	})
}

func (s *Store) EditTask(ctx context.Context, userID uuid.UUID, p board.EditTaskParams) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "edit_task",
		check: func(boards []model.Board) error {
			b, err := activeBoard(boards)
			if err != nil {
				return err
			}
			if err := checkTask(b, p.PrevColIndex, p.TaskIndex); err != nil {
				return err
			}
			return checkColumn(b, p.NewColIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.EditTask(boards, p)
		},
		event: movedTaskEvent(events.TaskEdited, p.PrevColIndex, p.NewColIndex, p.TaskIndex),
	})
}

func (s *Store) DeleteTask(ctx context.Context, userID uuid.UUID, p board.DeleteTaskParams) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "delete_task",
		check: func(boards []model.Board) error {
			b, err := activeBoard(boards)
			if err != nil {
				return err
			}
			return checkTask(b, p.ColIndex, p.TaskIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.DeleteTask(boards, p)
		},
		event: taskEvent(events.TaskDeleted, p.ColIndex, p.TaskIndex),
	})
}

func (s *Store) SetSubtaskCompleted(ctx context.Context, userID uuid.UUID, p board.SubtaskParams) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "set_subtask_completed",
		check: func(boards []model.Board) error {
			b, err := activeBoard(boards)
			if err != nil {
				return err
			}
			if err := checkTask(b, p.ColIndex, p.TaskIndex); err != nil {
				return err
			}
			subtasks := b.Columns[p.ColIndex].Tasks[p.TaskIndex].Subtasks
			if p.SubtaskIndex < 0 || p.SubtaskIndex >= len(subtasks) {
				return fmt.Errorf("%w: subtask %d", ErrIndexOutOfRange, p.SubtaskIndex)
			}
			return nil
		},
		apply: func(boards []model.Board) []model.Board {
			return board.SetSubtaskCompleted(boards, p)
		},
		event: taskEvent(events.SubtaskCompleted, p.ColIndex, p.TaskIndex),
	})
}

func (s *Store) SetTaskStatus(ctx context.Context, userID uuid.UUID, p board.MoveTaskParams) ([]model.Board, error) {
	return s.mutate(ctx, userID, mutation{
		op: "set_task_status",
		check: func(boards []model.Board) error {
			b, err := activeBoard(boards)
			if err != nil {
				return err
			}
			if err := checkTask(b, p.PrevColIndex, p.TaskIndex); err != nil {
				return err
			}
			return checkColumn(b, p.NewColIndex)
		},
		apply: func(boards []model.Board) []model.Board {
			return board.SetTaskStatus(boards, p)
		},
		event: movedTaskEvent(events.TaskMoved, p.PrevColIndex, p.NewColIndex, p.TaskIndex),
	})
}

func boardEvent(typ string, boardIndex int) func([]model.Board) events.Event {
	return func([]model.Board) events.Event {
		return events.Event{Type: typ, BoardIndex: boardIndex}
	}
}

func activeBoardEvent(typ string) func([]model.Board) events.Event {
	return func(next []model.Board) events.Event {
		return events.Event{Type: typ, BoardIndex: board.ActiveBoard(next)}
	}
}

// taskEvent addresses a task by its position in the active board. For a
// deletion the position is where the task used to be.
func taskEvent(typ string, colIndex, taskIndex int) func([]model.Board) events.Event {
	return func(next []model.Board) events.Event {
		return events.Event{
			Type:       typ,
			BoardIndex: board.ActiveBoard(next),
			ColIndex:   &colIndex,
			TaskIndex:  &taskIndex,
		}
	}
}

// appendedTaskEvent addresses the last task of column colIndex.
func appendedTaskEvent(typ string, colIndex int) func([]model.Board) events.Event {
	return func(next []model.Board) events.Event {
		active := board.ActiveBoard(next)
		taskIndex := len(next[active].Columns[colIndex].Tasks) - 1
		return taskEvent(typ, colIndex, taskIndex)(next)
	}
}

// movedTaskEvent follows a task that may have been relocated to the end of
// another column.
func movedTaskEvent(typ string, prevCol, newCol, taskIndex int) func([]model.Board) events.Event {
	if prevCol == newCol {
		return taskEvent(typ, newCol, taskIndex)
	}
	return appendedTaskEvent(typ, newCol)
}

func activeBoard(boards []model.Board) (model.Board, error) {
	i := board.ActiveBoard(boards)
	if i < 0 {
		return model.Board{}, ErrNoActiveBoard
	}
	return boards[i], nil
}

func checkBoard(boards []model.Board, i int) error {
	if i < 0 || i >= len(boards) {
		return fmt.Errorf("%w: board %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func checkColumn(b model.Board, i int) error {
	if i < 0 || i >= len(b.Columns) {
		return fmt.Errorf("%w: column %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func checkTask(b model.Board, col, task int) error {
	if err := checkColumn(b, col); err != nil {
		return err
	}
	if task < 0 || task >= len(b.Columns[col].Tasks) {
		return fmt.Errorf("%w: task %d", ErrIndexOutOfRange, task)
	}
	return nil
}
