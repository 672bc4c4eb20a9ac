package repository

import (
	"context"
	"kanban-board/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BoardRepository persists each user's boards collection as ordered rows.
type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// LoadBoards returns the owner's boards in display order. An owner without
// boards gets an empty collection.
func (r *BoardRepository) LoadBoards(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	var records []model.BoardRecord
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("position").Find(&records).Error
	if err != nil {
		return nil, err
	}

	boards := make([]model.Board, len(records))
	for i, rec := range records {
		boards[i] = rec.Board()
	}
	return boards, nil
}

// SaveBoards replaces the owner's stored collection with boards.
func (r *BoardRepository) SaveBoards(ctx context.Context, ownerID uuid.UUID, boards []model.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&model.BoardRecord{}).Error; err != nil {
			return err
		}
		if len(boards) == 0 {
			return nil
		}

		records := make([]model.BoardRecord, len(boards))
		for i, b := range boards {
			records[i] = model.NewBoardRecord(ownerID, i, b)
		}
		return tx.Create(&records).Error
	})
}
