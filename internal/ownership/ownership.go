// Package ownership scopes writes on user-owned rows to their owner.
//
// A write is issued as a single conditional statement, WHERE id = ? AND
// user_id = ?, and its affected-row count decides the outcome. A missing
// row and a row owned by someone else both report ErrNotFoundOrForbidden.
// Admin paths skip the owner predicate and match by id alone.
package ownership

import (
	"gorm.io/gorm"

	"nearmex/internal/apperr"
)

// OwnerColumn is the owning user's column on every owned table.
const OwnerColumn = "user_id"

// OwnedBy is a gorm scope restricting a statement to rows owned by userID.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(OwnerColumn+" = ?", userID)
	}
}

// Owned restricts a statement to the row with the given id owned by userID.
func Owned(id any, userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id).Scopes(OwnedBy(userID))
	}
}

// Check translates the result of an owner-scoped write.
func Check(res *gorm.DB) error {
	return check(res, apperr.ErrNotFoundOrForbidden)
}

// CheckAny translates the result of an id-only admin write, where zero rows
// can only mean the row does not exist.
func CheckAny(res *gorm.DB) error {
	return check(res, apperr.ErrNotFound)
}

func check(res *gorm.DB, none error) error {
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return none
	}
	return nil
}
