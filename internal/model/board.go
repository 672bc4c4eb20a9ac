package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Board is the top-level container of columns. At most one board of a
// collection is active.
type Board struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
	Columns  []Column  `json:"columns"`
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := b
	out.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		out.Columns[i] = col.Clone()
	}
	return out
}

// CloneBoards deep-copies a boards collection. A nil collection stays nil.
func CloneBoards(boards []Board) []Board {
	if boards == nil {
		return nil
	}
	out := make([]Board, len(boards))
	for i, b := range boards {
		out[i] = b.Clone()
	}
	return out
}

// BoardRecord is the persisted form of a board. The column tree is stored
// as a single JSON document.
type BoardRecord struct {
	ID        uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Position  int                          `gorm:"not null"`
	Name      string                       `gorm:"not null"`
	IsActive  bool                         `gorm:"not null"`
	Columns   datatypes.JSONType[[]Column] `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BoardRecord) TableName() string {
	return "boards"
}

// NewBoardRecord converts a board at the given position into its row.
func NewBoardRecord(ownerID uuid.UUID, position int, b Board) BoardRecord {
	columns := b.Columns
	if columns == nil {
		columns = []Column{}
	}
	return BoardRecord{
		ID:       b.ID,
		OwnerID:  ownerID,
		Position: position,
		Name:     b.Name,
		IsActive: b.IsActive,
		Columns:  datatypes.NewJSONType(columns),
	}
}

// Board converts the row back into the domain tree.
func (r BoardRecord) Board() Board {
	columns := r.Columns.Data()
	if columns == nil {
		columns = []Column{}
	}
	return Board{
		ID:       r.ID,
		Name:     r.Name,
		IsActive: r.IsActive,
		Columns:  columns,
	}
}
