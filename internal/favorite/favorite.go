package favorite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nearmex/internal/apperr"
	"nearmex/internal/destination"
	"nearmex/internal/ownership"
)

// Favorite marks a destination saved by a user. A pair appears at most once.
type Favorite struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_favorites_user_destination" json:"user_id"`
	DestinationID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_destination;index" json:"destination_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List returns the destinations userID has favorited, most recent first.
func (s *Store) List(ctx context.Context, userID uint) ([]destination.Destination, error) {
	dests := []destination.Destination{}
	err := s.db.WithContext(ctx).
		Select("destinations.*").
		Joins("JOIN favorites ON favorites.destination_id = destinations.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, favorites.id DESC").
		Find(&dests).Error
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return dests, nil
}

func (s *Store) IDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&Favorite{}).
		Scopes(ownership.OwnedBy(userID)).
		Order("id").
		Pluck("destination_id", &ids).Error
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return ids, nil
}

// Add favorites destinationID for userID. Adding an existing pair is a no-op.
func (s *Store) Add(ctx context.Context, userID, destinationID uint) error {
	if destinationID == 0 {
		return apperr.Invalid("destinationId is required")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&destination.Destination{}).Where("id = ?", destinationID).Count(&count).Error; err != nil {
			return apperr.Transient(err)
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		fav := &Favorite{UserID: userID, DestinationID: destinationID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error; err != nil {
			return apperr.Transient(fmt.Errorf("insert favorite: %w", err))
		}
		return nil
	})
}

// Remove unfavorites destinationID for userID.
func (s *Store) Remove(ctx context.Context, userID, destinationID uint) error {
	res := s.db.WithContext(ctx).
		Scopes(ownership.OwnedBy(userID)).
		Where("destination_id = ?", destinationID).
		Delete(&Favorite{})
	return ownership.Check(res)
}
