package board

import (
	"strings"

	"kanban-board/internal/model"
)

// TaskMatch is a task of the active board together with its position.
type TaskMatch struct {
	ColIndex  int
	TaskIndex int
	Task      model.Task
}

// SearchTasks returns the tasks of the active board whose title or
// description contains query, ignoring case. A blank query matches every
// task. Matches are ordered by column, then by position in the column.
// Without an active board the result is empty.
func SearchTasks(boards []model.Board, query string) []TaskMatch {
	active := ActiveBoard(boards)
	if active < 0 {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var matches []TaskMatch
	for ci, col := range boards[active].Columns {
		for ti, task := range col.Tasks {
			if q != "" &&
				!strings.Contains(strings.ToLower(task.Title), q) &&
				!strings.Contains(strings.ToLower(task.Description), q) {
				continue
			}
			matches = append(matches, TaskMatch{ColIndex: ci, TaskIndex: ti, Task: task.Clone()})
		}
	}
	return matches
}
