package board

import "kanban-board/internal/model"

// TaskFields are the user-editable fields of a task.
type TaskFields struct {
	Title       string
	Description string
	Subtasks    []string
}

type AddTaskParams struct {
	TaskFields
	NewColIndex int
}

type EditTaskParams struct {
	TaskFields
	TaskIndex    int
	PrevColIndex int
	NewColIndex  int
}

type DeleteTaskParams struct {
	TaskIndex int
	ColIndex  int
}

type SubtaskParams struct {
	TaskIndex    int
	ColIndex     int
	SubtaskIndex int
	IsCompleted  bool
}

type MoveTaskParams struct {
	TaskIndex    int
	PrevColIndex int
	NewColIndex  int
}

// All task operations address the active board. Without an active board
// they return an unchanged copy.

// AddTask appends a task to the active board's column at NewColIndex.
func AddTask(boards []model.Board, p AddTaskParams) []model.Board {
	next, b := activeCopy(boards)
	if b == nil {
		return next
	}
	col := &b.Columns[p.NewColIndex]
	task := model.Task{
		Title:       p.Title,
		Description: p.Description,
		Status:      col.Name,
		Subtasks:    newSubtasks(p.Subtasks, nil),
	}
	col.Tasks = append(col.Tasks, task)
	return next
}

// EditTask updates a task and, when the column changes, moves it to the end
// of the new column. Subtask completion flags are kept by position.
func EditTask(boards []model.Board, p EditTaskParams) []model.Board {
	next, b := activeCopy(boards)
	if b == nil {
		return next
	}
	prev := &b.Columns[p.PrevColIndex]
	task := &prev.Tasks[p.TaskIndex]
	task.Title = p.Title
	task.Description = p.Description
	task.Subtasks = newSubtasks(p.Subtasks, task.Subtasks)

	if p.NewColIndex == p.PrevColIndex {
		return next
	}
	relocate(b, p.TaskIndex, p.PrevColIndex, p.NewColIndex)
	return next
}

// DeleteTask removes the task at TaskIndex of column ColIndex.
func DeleteTask(boards []model.Board, p DeleteTaskParams) []model.Board {
	next, b := activeCopy(boards)
	if b == nil {
		return next
	}
	col := &b.Columns[p.ColIndex]
	col.Tasks = append(col.Tasks[:p.TaskIndex], col.Tasks[p.TaskIndex+1:]...)
	return next
}

// SetSubtaskCompleted sets the completion flag of a single subtask.
func SetSubtaskCompleted(boards []model.Board, p SubtaskParams) []model.Board {
	next, b := activeCopy(boards)
	if b == nil {
		return next
	}
	task := &b.Columns[p.ColIndex].Tasks[p.TaskIndex]
	task.Subtasks[p.SubtaskIndex].IsCompleted = p.IsCompleted
	return next
}

// SetTaskStatus moves a task to another column without touching its
// content. Moving within the same column is a no-op.
func SetTaskStatus(boards []model.Board, p MoveTaskParams) []model.Board {
	next, b := activeCopy(boards)
	if b == nil || p.NewColIndex == p.PrevColIndex {
		return next
	}
	relocate(b, p.TaskIndex, p.PrevColIndex, p.NewColIndex)
	return next
}

func activeCopy(boards []model.Board) ([]model.Board, *model.Board) {
	next := model.CloneBoards(boards)
	i := ActiveBoard(next)
	if i < 0 {
		return next, nil
	}
	return next, &next[i]
}

// relocate moves a task between columns of b and rewrites its status.
func relocate(b *model.Board, taskIndex, from, to int) {
	src := &b.Columns[from]
	task := src.Tasks[taskIndex]
	src.Tasks = append(src.Tasks[:taskIndex], src.Tasks[taskIndex+1:]...)

	dst := &b.Columns[to]
	task.Status = dst.Name
	dst.Tasks = append(dst.Tasks, task)
}

func newSubtasks(titles []string, prev []model.Subtask) []model.Subtask {
	out := make([]model.Subtask, len(titles))
	for i, title := range titles {
		out[i] = model.Subtask{Title: title}
		if i < len(prev) {
			out[i].IsCompleted = prev[i].IsCompleted
		}
	}
	return out
}
