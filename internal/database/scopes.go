package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/warbler/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders messages by timestamp, most recent first.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("messages.timestamp DESC").Order("messages.id DESC")
}
