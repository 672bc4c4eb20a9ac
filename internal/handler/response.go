package handler

import (
	"errors"
	"net/http"
	"strconv"

	"kanban-board/internal/board"
	"kanban-board/internal/middleware"
	"kanban-board/internal/model"
	"kanban-board/internal/store"
	"kanban-board/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardsResponse is returned by every board and task mutation.
type BoardsResponse struct {
	Boards      []model.Board `json:"boards"`
	ActiveIndex int           `json:"activeIndex"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func newBoardsResponse(boards []model.Board) BoardsResponse {
	if boards == nil {
		boards = []model.Board{}
	}
	return BoardsResponse{Boards: boards, ActiveIndex: board.ActiveBoard(boards)}
}

// userIDFrom reads the user set by the auth middleware. It writes the
// error response itself when the user is missing.
func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// indexParam parses a path parameter holding a collection index.
func indexParam(c *gin.Context, name string) (int, bool) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name + " index"})
		return 0, false
	}
	return i, true
}

// writeError maps validation, index and storage errors to a response.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verrs})
	case errors.Is(err, store.ErrDuplicateColumnSource):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNoActiveBoard):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Board operation failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
