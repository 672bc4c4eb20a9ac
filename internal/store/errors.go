package store

import "errors"

var (
	// ErrIndexOutOfRange is returned when a caller-supplied index does not
	// address anything in the current snapshot.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoActiveBoard is returned by task operations on an empty workspace.
	ErrNoActiveBoard = errors.New("no active board")

	// ErrDuplicateColumnSource is returned when an edit asks two columns to
	// take the tasks of the same existing column.
	ErrDuplicateColumnSource = errors.New("column source used more than once")
)
