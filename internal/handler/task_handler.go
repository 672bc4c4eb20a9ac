package handler

import (
	"net/http"

	"kanban-board/internal/board"
	"kanban-board/internal/model"
	"kanban-board/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TaskHandler serves the task operations. They all address the user's
// active board.
type TaskHandler struct {
	store  BoardStore
	logger *zap.Logger
}

func NewTaskHandler(store BoardStore, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		store:  store,
		logger: logger,
	}
}

// SubtaskRequest sets a subtask's completion flag.
type SubtaskRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// MoveTaskRequest names the column a task is dropped into.
type MoveTaskRequest struct {
	NewColIndex *int `json:"newColIndex" binding:"required,min=0"`
}

// TaskMatchResponse is one search hit. ColIndex and TaskIndex address the
// task in the task routes.
type TaskMatchResponse struct {
	ColIndex          int        `json:"colIndex"`
	TaskIndex         int        `json:"taskIndex"`
	Task              model.Task `json:"task"`
	CompletedSubtasks int        `json:"completedSubtasks"`
}

// Search godoc
// @Summary      Search tasks
// @Description  Lists the active board's tasks whose title or description contains q, ignoring case. An empty q lists every task.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search text"
// @Success      200  {array}   handler.TaskMatchResponse
// @Failure      401  {object}  handler.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) Search(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	boards, err := h.store.Boards(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	matches := board.SearchTasks(boards, c.Query("q"))
	resp := make([]TaskMatchResponse, len(matches))
	for i, m := range matches {
		resp[i] = TaskMatchResponse{
			ColIndex:          m.ColIndex,
			TaskIndex:         m.TaskIndex,
			Task:              m.Task,
			CompletedSubtasks: m.Task.CompletedSubtasks(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Add task
// @Description  Appends a task to the active board's column at statusIndex
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        task  body      validation.TaskForm  true  "Task"
// @Success      201   {object}  handler.BoardsResponse
// @Failure      400   {object}  handler.ErrorResponse
// @Failure      404   {object}  handler.ErrorResponse
// @Failure      409   {object}  handler.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	form, ok := h.bindTaskForm(c)
	if !ok {
		return
	}

	boards, err := h.store.AddTask(c.Request.Context(), userID, board.AddTaskParams{
		TaskFields:  taskFields(form),
		NewColIndex: form.StatusIndex,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newBoardsResponse(boards))
}

// Update godoc
// @Summary      Edit task
// @Description  Updates the task in place, or moves it to the end of the statusIndex column
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        col   path      int                  true  "Column index"
// @Param        task  path      int                  true  "Task index"
// @Param        body  body      validation.TaskForm  true  "Task"
// @Success      200   {object}  handler.BoardsResponse
// @Failure      400   {object}  handler.ErrorResponse
// @Failure      404   {object}  handler.ErrorResponse
// @Router       /columns/{col}/tasks/{task} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	col, task, ok := taskParams(c)
	if !ok {
		return
	}

	form, ok := h.bindTaskForm(c)
	if !ok {
		return
	}

	boards, err := h.store.EditTask(c.Request.Context(), userID, board.EditTaskParams{
		TaskFields:   taskFields(form),
		TaskIndex:    task,
		PrevColIndex: col,
		NewColIndex:  form.StatusIndex,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// Delete godoc
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        col   path      int  true  "Column index"
// @Param        task  path      int  true  "Task index"
// @Success      200   {object}  handler.BoardsResponse
// @Failure      404   {object}  handler.ErrorResponse
// @Router       /columns/{col}/tasks/{task} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	col, task, ok := taskParams(c)
	if !ok {
		return
	}

	boards, err := h.store.DeleteTask(c.Request.Context(), userID, board.DeleteTaskParams{
		TaskIndex: task,
		ColIndex:  col,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// SetSubtaskCompleted godoc
// @Summary      Toggle subtask
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        col   path      int                     true  "Column index"
// @Param        task  path      int                     true  "Task index"
// @Param        sub   path      int                     true  "Subtask index"
// @Param        body  body      handler.SubtaskRequest  true  "Completion"
// @Success      200   {object}  handler.BoardsResponse
// @Failure      404   {object}  handler.ErrorResponse
// @Router       /columns/{col}/tasks/{task}/subtasks/{sub} [patch]
func (h *TaskHandler) SetSubtaskCompleted(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	col, task, ok := taskParams(c)
	if !ok {
		return
	}
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}

	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	boards, err := h.store.SetSubtaskCompleted(c.Request.Context(), userID, board.SubtaskParams{
		TaskIndex:    task,
		ColIndex:     col,
		SubtaskIndex: sub,
		IsCompleted:  *req.IsCompleted,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// Move godoc
// @Summary      Move task
// @Description  Moves the task to the end of another column and updates its status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        col   path      int                      true  "Column index"
// @Param        task  path      int                      true  "Task index"
// @Param        body  body      handler.MoveTaskRequest  true  "Target column"
// @Success      200   {object}  handler.BoardsResponse
// @Failure      404   {object}  handler.ErrorResponse
// @Router       /columns/{col}/tasks/{task}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	col, task, ok := taskParams(c)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	boards, err := h.store.SetTaskStatus(c.Request.Context(), userID, board.MoveTaskParams{
		TaskIndex:    task,
		PrevColIndex: col,
		NewColIndex:  *req.NewColIndex,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

func (h *TaskHandler) bindTaskForm(c *gin.Context) (validation.TaskForm, bool) {
	var form validation.TaskForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return form, false
	}
	if err := validation.Struct(form); err != nil {
		writeError(c, h.logger, err)
		return form, false
	}
	return form, true
}

func taskParams(c *gin.Context) (col, task int, ok bool) {
	if col, ok = indexParam(c, "col"); !ok {
		return
	}
	task, ok = indexParam(c, "task")
	return
}

func taskFields(form validation.TaskForm) board.TaskFields {
	return board.TaskFields{
		Title:       form.Title,
		Description: form.Description,
		Subtasks:    form.SubtaskTitles(),
	}
}
