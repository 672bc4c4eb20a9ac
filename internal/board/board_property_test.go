package board_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"kanban-board/internal/board"
	"kanban-board/internal/model"
)

// applyScript drives the mutation API with a sequence of opcodes, deriving
// every index from the current snapshot the way a client would.
func applyScript(script []int) []model.Board {
	var boards []model.Board
	for step, code := range script {
		op := code % 9
		arg := code / 9
		active := board.ActiveBoard(boards)

		switch op {
		case 0:
			boards = board.AddBoard(boards, fmt.Sprintf("board-%d", step), columns("Todo", "Doing", "Done"))
		case 1:
			if len(boards) > 0 {
				boards = board.DeleteBoard(boards, arg%len(boards))
			}
		case 2:
			boards = board.SetBoardActive(boards, arg%(len(boards)+1))
		case 3:
			if len(boards) > 0 {
				i := arg % len(boards)
				specs := []board.ColumnSpec{{Name: "Todo"}, {Name: fmt.Sprintf("col-%d", step)}}
				if n := len(boards[i].Columns); n > 0 {
					specs[1].From = from(arg % n)
				}
				boards = board.EditBoard(boards, i, boards[i].Name, specs)
			}
		case 4:
			if active >= 0 && len(boards[active].Columns) > 0 {
				boards = board.AddTask(boards, board.AddTaskParams{
					TaskFields:  board.TaskFields{Title: fmt.Sprintf("task-%d", step), Subtasks: []string{"a", "b"}},
					NewColIndex: arg % len(boards[active].Columns),
				})
			}
		case 5, 6, 7, 8:
			if active < 0 {
				continue
			}
			cols := boards[active].Columns
			colIndex, taskIndex, ok := pickTask(cols, arg)
			if !ok {
				continue
			}
			switch op {
			case 5:
				boards = board.SetTaskStatus(boards, board.MoveTaskParams{
					TaskIndex: taskIndex, PrevColIndex: colIndex, NewColIndex: (arg / 7) % len(cols),
				})
			case 6:
				boards = board.EditTask(boards, board.EditTaskParams{
					TaskFields:   board.TaskFields{Title: "edited", Subtasks: []string{"a"}},
					TaskIndex:    taskIndex,
					PrevColIndex: colIndex,
					NewColIndex:  (arg / 5) % len(cols),
				})
			case 7:
				boards = board.DeleteTask(boards, board.DeleteTaskParams{TaskIndex: taskIndex, ColIndex: colIndex})
			case 8:
				if len(cols[colIndex].Tasks[taskIndex].Subtasks) > 0 {
					boards = board.SetSubtaskCompleted(boards, board.SubtaskParams{
						TaskIndex: taskIndex, ColIndex: colIndex, SubtaskIndex: 0, IsCompleted: arg%2 == 0,
					})
				}
			}
		}
	}
	return boards
}

func pickTask(cols []model.Column, arg int) (int, int, bool) {
	for k := 0; k < len(cols); k++ {
		c := (arg + k) % len(cols)
		if n := len(cols[c].Tasks); n > 0 {
			return c, arg % n, true
		}
	}
	return 0, 0, false
}

func TestProperty_SingleActiveBoard(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("exactly one board is active whenever boards exist", prop.ForAll(
		func(script []int) bool {
			boards := applyScript(script)
			if len(boards) == 0 {
				return true
			}
			return activeCount(boards) == 1
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_StatusMatchesColumn(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every task's status names its column", prop.ForAll(
		func(script []int) bool {
			for _, b := range applyScript(script) {
				for _, col := range b.Columns {
					for _, task := range col.Tasks {
						if task.Status != col.Name {
							return false
						}
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
	))

	properties.TestingRun(t)
}

func TestProperty_MoveRelocatesTask(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("a moved task leaves its column and lands last in the target", prop.ForAll(
		func(tasks int, pick int, target int) bool {
			boards := board.AddBoard(nil, "B", columns("Todo", "Doing", "Done"))
			for i := 0; i < tasks; i++ {
				boards = board.AddTask(boards, board.AddTaskParams{
					TaskFields: board.TaskFields{Title: fmt.Sprintf("t%d", i)},
				})
			}
			taskIndex := pick % tasks
			title := boards[0].Columns[0].Tasks[taskIndex].Title

			after := board.SetTaskStatus(boards, board.MoveTaskParams{
				TaskIndex: taskIndex, PrevColIndex: 0, NewColIndex: target,
			})

			for _, task := range after[0].Columns[0].Tasks {
				if task.Title == title {
					return false
				}
			}
			dst := after[0].Columns[target].Tasks
			last := dst[len(dst)-1]
			return len(after[0].Columns[0].Tasks) == tasks-1 &&
				last.Title == title &&
				last.Status == after[0].Columns[target].Name
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 100),
		gen.IntRange(1, 2),
	))

	properties.TestingRun(t)
}
