package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kanban-board/internal/board"
	"kanban-board/internal/handler"
	"kanban-board/internal/middleware"
	"kanban-board/internal/model"
	"kanban-board/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) result(args mock.Arguments) ([]model.Board, error) {
	boards, _ := args.Get(0).([]model.Board)
	return boards, args.Error(1)
}

func (m *MockStore) Boards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID))
}

func (m *MockStore) AddBoard(ctx context.Context, userID uuid.UUID, name string, columns []board.ColumnSpec) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, name, columns))
}

func (m *MockStore) EditBoard(ctx context.Context, userID uuid.UUID, boardIndex int, name string, columns []board.ColumnSpec) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, boardIndex, name, columns))
}

func (m *MockStore) DeleteBoard(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, boardIndex))
}

func (m *MockStore) SetBoardActive(ctx context.Context, userID uuid.UUID, boardIndex int) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, boardIndex))
}

func (m *MockStore) AddTask(ctx context.Context, userID uuid.UUID, p board.AddTaskParams) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, p))
}

func (m *MockStore) EditTask(ctx context.Context, userID uuid.UUID, p board.EditTaskParams) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, p))
}

func (m *MockStore) DeleteTask(ctx context.Context, userID uuid.UUID, p board.DeleteTaskParams) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, p))
}

func (m *MockStore) SetSubtaskCompleted(ctx context.Context, userID uuid.UUID, p board.SubtaskParams) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, p))
}

func (m *MockStore) SetTaskStatus(ctx context.Context, userID uuid.UUID, p board.MoveTaskParams) ([]model.Board, error) {
	return m.result(m.Called(ctx, userID, p))
}

func setupBoardRouter(userID uuid.UUID) (*gin.Engine, *MockStore) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockStore := new(MockStore)
	boards := handler.NewBoardHandler(mockStore, zap.NewNop())
	tasks := handler.NewTaskHandler(mockStore, zap.NewNop())

	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	r.GET("/boards", boards.GetAll)
	r.GET("/boards/active", boards.GetActive)
	r.POST("/boards", boards.Create)
	r.PUT("/boards/:index", boards.Update)
	r.DELETE("/boards/:index", boards.Delete)
	r.POST("/boards/:index/activate", boards.Activate)
	r.GET("/tasks", tasks.Search)
	r.POST("/tasks", tasks.Create)
	r.PUT("/columns/:col/tasks/:task", tasks.Update)
	r.DELETE("/columns/:col/tasks/:task", tasks.Delete)
	r.PATCH("/columns/:col/tasks/:task/subtasks/:sub", tasks.SetSubtaskCompleted)
	r.POST("/columns/:col/tasks/:task/move", tasks.Move)
	return r, mockStore
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func sampleBoards() []model.Board {
	return []model.Board{
		{ID: uuid.New(), Name: "Roadmap", Columns: []model.Column{{Name: "Todo"}}},
		{ID: uuid.New(), Name: "Launch", IsActive: true, Columns: []model.Column{
			{Name: "Todo", Tasks: []model.Task{{Title: "Write copy", Status: "Todo"}}},
			{Name: "Doing"},
		}},
	}
}

func TestGetAll_ReturnsActiveIndex(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	mockStore.On("Boards", mock.Anything, userID).Return(sampleBoards(), nil)

	resp := doJSON(router, "GET", "/boards", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.BoardsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Boards, 2)
	assert.Equal(t, 1, body.ActiveIndex)
	mockStore.AssertExpectations(t)
}

func TestGetAll_EmptyWorkspace(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	mockStore.On("Boards", mock.Anything, userID).Return(nil, nil)

	resp := doJSON(router, "GET", "/boards", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"boards":[],"activeIndex":-1}`, resp.Body.String())
}

func TestGetActive(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	mockStore.On("Boards", mock.Anything, userID).Return(sampleBoards(), nil).Once()
	mockStore.On("Boards", mock.Anything, userID).Return([]model.Board{}, nil).Once()

	resp := doJSON(router, "GET", "/boards/active", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.ActiveBoardResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Index)
	assert.Equal(t, "Launch", body.Board.Name)

	resp = doJSON(router, "GET", "/boards/active", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateBoard(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	specs := []board.ColumnSpec{{Name: "Todo"}, {Name: "Doing"}}
	mockStore.On("AddBoard", mock.Anything, userID, "Roadmap", specs).
		Return(board.AddBoard(nil, "Roadmap", specs), nil)

	resp := doJSON(router, "POST", "/boards", `{"name":"Roadmap","columns":[{"name":"Todo"},{"name":"Doing"}]}`)

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body handler.BoardsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Boards, 1)
	assert.True(t, body.Boards[0].IsActive)
	assert.Equal(t, 0, body.ActiveIndex)
	mockStore.AssertExpectations(t)
}

func TestCreateBoard_OmittedColumnsGetDefaults(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	specs := []board.ColumnSpec{{Name: "Todo"}, {Name: "Doing"}}
	mockStore.On("AddBoard", mock.Anything, userID, "Roadmap", specs).
		Return(board.AddBoard(nil, "Roadmap", specs), nil)

	resp := doJSON(router, "POST", "/boards", `{"name":"Roadmap"}`)

	assert.Equal(t, http.StatusCreated, resp.Code)
	mockStore.AssertExpectations(t)
}

func TestCreateBoard_EmptyColumnsStayEmpty(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	specs := []board.ColumnSpec{}
	mockStore.On("AddBoard", mock.Anything, userID, "Roadmap", specs).
		Return(board.AddBoard(nil, "Roadmap", specs), nil)

	resp := doJSON(router, "POST", "/boards", `{"name":"Roadmap","columns":[]}`)

	assert.Equal(t, http.StatusCreated, resp.Code)
	mockStore.AssertExpectations(t)
}

func TestCreateBoard_ValidationMessages(t *testing.T) {
	router, mockStore := setupBoardRouter(uuid.New())

	resp := doJSON(router, "POST", "/boards", `{"name":"","columns":[{"name":"Todo"},{"name":""}]}`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	messages := make([]string, len(body.Fields))
	for i, f := range body.Fields {
		messages[i] = f.Message
	}
	assert.ElementsMatch(t, []string{"Board Name is required", "Column Name is required"}, messages)
	mockStore.AssertNotCalled(t, "AddBoard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBoard_MalformedJSON(t *testing.T) {
	router, _ := setupBoardRouter(uuid.New())

	resp := doJSON(router, "POST", "/boards", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Invalid request")
}

func TestUpdateBoard_PassesColumnSources(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	from := 1
	specs := []board.ColumnSpec{{Name: "In progress", From: &from}, {Name: "Done"}}
	mockStore.On("EditBoard", mock.Anything, userID, 1, "Launch", specs).Return(sampleBoards(), nil)

	resp := doJSON(router, "PUT", "/boards/1", `{"name":"Launch","columns":[{"name":"In progress","from":1},{"name":"Done"}]}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	mockStore.AssertExpectations(t)
}

func TestBoardIndexErrors(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	mockStore.On("DeleteBoard", mock.Anything, userID, 7).
		Return(nil, fmt.Errorf("%w: board 7", store.ErrIndexOutOfRange))
	mockStore.On("SetBoardActive", mock.Anything, userID, 3).
		Return(nil, errors.New("connection refused"))
	mockStore.On("EditBoard", mock.Anything, userID, 1, "Launch", mock.Anything).
		Return(nil, fmt.Errorf("%w: column 0", store.ErrDuplicateColumnSource))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"non-numeric index", "DELETE", "/boards/abc", "", http.StatusBadRequest},
		{"index out of range", "DELETE", "/boards/7", "", http.StatusNotFound},
		{"storage failure", "POST", "/boards/3/activate", "", http.StatusInternalServerError},
		{"repeated column source", "PUT", "/boards/1", `{"name":"Launch","columns":[{"name":"A","from":0},{"name":"B","from":0}]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestActivateBoard(t *testing.T) {
	userID := uuid.New()
	router, mockStore := setupBoardRouter(userID)
	activated := board.SetBoardActive(sampleBoards(), 0)
	mockStore.On("SetBoardActive", mock.Anything, userID, 0).Return(activated, nil)

	resp := doJSON(router, "POST", "/boards/0/activate", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.BoardsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 0, body.ActiveIndex)
}

func TestBoardHandler_NotAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewBoardHandler(new(MockStore), zap.NewNop())
	r.GET("/boards", h.GetAll)

	resp := doJSON(r, "GET", "/boards", "")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
