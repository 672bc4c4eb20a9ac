package handler

import (
	"context"
	"net/http"

	"kanban-board/internal/board"
	"kanban-board/internal/model"
	"kanban-board/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardStore is the workspace store as seen by the HTTP layer.
type BoardStore interface {
	Boards(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	AddBoard(ctx context.Context, userID uuid.UUID, name string, columns []board.ColumnSpec) ([]model.Board, error)
	EditBoard(ctx context.Context, userID uuid.UUID, boardIndex int, name string, columns []board.ColumnSpec) ([]model.Board, error)
	DeleteBoard(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error)
	SetBoardActive(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error)
	AddTask(ctx context.Context, userID uuid.UUID, p board.AddTaskParams) ([]model.Board, error)
	EditTask(ctx context.Context, userID uuid.UUID, p board.EditTaskParams) ([]model.Board, error)
	DeleteTask(ctx context.Context, userID uuid.UUID, p board.DeleteTaskParams) ([]model.Board, error)
	SetSubtaskCompleted(ctx context.Context, userID uuid.UUID, p board.SubtaskParams) ([]model.Board, error)
	SetTaskStatus(ctx context.Context, userID uuid.UUID, p board.MoveTaskParams) ([]model.Board, error)
}

type BoardHandler struct {
	store  BoardStore
	logger *zap.Logger
}

func NewBoardHandler(store BoardStore, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		store:  store,
		logger: logger,
	}
}

type ActiveBoardResponse struct {
	Index int         `json:"index"`
	Board model.Board `json:"board"`
}

// GetAll godoc
// @Summary      List boards
// @Description  Returns the user's boards collection and the active board index
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handler.BoardsResponse
// @Failure      401  {object}  handler.ErrorResponse
// @Router       /boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	boards, err := h.store.Boards(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// GetActive godoc
// @Summary      Active board
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handler.ActiveBoardResponse
// @Failure      404  {object}  handler.ErrorResponse
// @Router       /boards/active [get]
func (h *BoardHandler) GetActive(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	boards, err := h.store.Boards(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	i := board.ActiveBoard(boards)
	if i < 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No active board"})
		return
	}

	c.JSON(http.StatusOK, ActiveBoardResponse{Index: i, Board: boards[i]})
}

// Create godoc
// @Summary      Add board
// @Description  Appends a board with the given columns and makes it active. Omitting columns creates Todo and Doing.
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        board  body      validation.BoardForm  true  "Board"
// @Success      201    {object}  handler.BoardsResponse
// @Failure      400    {object}  handler.ErrorResponse
// @Router       /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	form, ok := h.bindBoardForm(c)
	if !ok {
		return
	}

	columns := columnSpecs(form.Columns)
	if form.Columns == nil {
		columns = defaultColumnSpecs()
	}

	boards, err := h.store.AddBoard(c.Request.Context(), userID, form.Name, columns)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newBoardsResponse(boards))
}

// Update godoc
// @Summary      Edit board
// @Description  Renames the board and replaces its columns. A column with "from" keeps the tasks of that existing column.
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      int                   true  "Board index"
// @Param        board  body      validation.BoardForm  true  "Board"
// @Success      200    {object}  handler.BoardsResponse
// @Failure      400    {object}  handler.ErrorResponse
// @Failure      404    {object}  handler.ErrorResponse
// @Router       /boards/{index} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	index, ok := indexParam(c, "index")
	if !ok {
		return
	}

	form, ok := h.bindBoardForm(c)
	if !ok {
		return
	}

	boards, err := h.store.EditBoard(c.Request.Context(), userID, index, form.Name, columnSpecs(form.Columns))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// Delete godoc
// @Summary      Delete board
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      int  true  "Board index"
// @Success      200    {object}  handler.BoardsResponse
// @Failure      404    {object}  handler.ErrorResponse
// @Router       /boards/{index} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	index, ok := indexParam(c, "index")
	if !ok {
		return
	}

	boards, err := h.store.DeleteBoard(c.Request.Context(), userID, index)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

// Activate godoc
// @Summary      Set active board
// @Tags         boards
// @Produce      json
// @Security     BearerAuth
// @Param        index  path      int  true  "Board index"
// @Success      200    {object}  handler.BoardsResponse
// @Failure      404    {object}  handler.ErrorResponse
// @Router       /boards/{index}/activate [post]
func (h *BoardHandler) Activate(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	index, ok := indexParam(c, "index")
	if !ok {
		return
	}

	boards, err := h.store.SetBoardActive(c.Request.Context(), userID, index)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newBoardsResponse(boards))
}

func (h *BoardHandler) bindBoardForm(c *gin.Context) (validation.BoardForm, bool) {
	var form validation.BoardForm
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

func columnSpecs(forms []validation.ColumnForm) []board.ColumnSpec {
	specs := make([]board.ColumnSpec, len(forms))
	for i, f := range forms {
		specs[i] = board.ColumnSpec{Name: f.Name, From: f.From}
	}
	return specs
}

func defaultColumnSpecs() []board.ColumnSpec {
	specs := make([]board.ColumnSpec, len(board.DefaultColumns))
	for i, name := range board.DefaultColumns {
		specs[i] = board.ColumnSpec{Name: name}
	}
	return specs
}
