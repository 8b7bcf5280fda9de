package scope

import (
	"time"

	"gorm.io/gorm"
)

// Owner restricts a query to rows created by one user.
func Owner(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by = ?", userID)
	}
}

// Owners is Owner for a list of users.
func Owners(userIDs []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by IN ?", userIDs)
	}
}

// User restricts a query to rows belonging to one user.
func User(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Between is a half-open window [from, to) on column. column must be a
// trusted identifier, never user input.
func Between(column string, from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ? AND "+column+" < ?", from, to)
	}
}

func CreatedBetween(from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return Between("created_at", from, to)
}

func CreatedSince(from time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", from)
	}
}
