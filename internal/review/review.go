package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"nearmex/internal/apperr"
	"nearmex/internal/destination"
	"nearmex/internal/ownership"
	"nearmex/internal/user"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	DestinationID uint      `gorm:"index;not null" json:"destination_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	Comment       string    `gorm:"type:text" json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WithAuthor is a review as listed under a destination.
type WithAuthor struct {
	Review
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// WithDestination is a review as listed on its author's profile.
type WithDestination struct {
	Review
	DestinationName string `json:"destination_name"`
}

// Removed describes a review deleted by a moderator, for notifying its author.
type Removed struct {
	Review
	AuthorEmail     string
	AuthorUsername  string
	DestinationName string
}

type Input struct {
	DestinationID uint   `json:"destinationId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

func validateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return apperr.Invalid("Rating must be between 1 and 5")
	}
	return nil
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListByDestination returns a destination's reviews, newest first.
func (s *Store) ListByDestination(ctx context.Context, destinationID uint) ([]WithAuthor, error) {
	out := []WithAuthor{}
	err := s.db.WithContext(ctx).Model(&Review{}).
		Select("reviews.*, users.username, users.avatar").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.destination_id = ?", destinationID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return out, nil
}

// ListByUser returns the reviews written by userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID uint) ([]WithDestination, error) {
	out := []WithDestination{}
	err := s.db.WithContext(ctx).Model(&Review{}).
		Select("reviews.*, destinations.name AS destination_name").
		Joins("JOIN destinations ON destinations.id = reviews.destination_id").
		Scopes(ownership.OwnedBy(userID)).
		Order("reviews.created_at DESC, reviews.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.Transient(err)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, userID uint, in Input) (*Review, error) {
	if in.DestinationID == 0 {
		return nil, apperr.Invalid("destinationId is required")
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	r := &Review{
		UserID:        userID,
		DestinationID: in.DestinationID,
		Rating:        in.Rating,
		Comment:       strings.TrimSpace(in.Comment),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&destination.Destination{}).Where("id = ?", in.DestinationID).Count(&count).Error; err != nil {
			return apperr.Transient(err)
		}
		if count == 0 {
			return apperr.ErrNotFound
		}
		if err := tx.Create(r).Error; err != nil {
			return apperr.Transient(fmt.Errorf("insert review: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Update rewrites a review owned by userID.
func (s *Store) Update(ctx context.Context, id, userID uint, rating int, comment string) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&Review{}).
		Scopes(ownership.Owned(id, userID)).
		Updates(map[string]any{"rating": rating, "comment": strings.TrimSpace(comment)})
	return ownership.Check(res)
}

// Delete removes a review owned by userID.
func (s *Store) Delete(ctx context.Context, id, userID uint) error {
	return ownership.Check(s.db.WithContext(ctx).Scopes(ownership.Owned(id, userID)).Delete(&Review{}))
}

// DeleteAny removes a review regardless of owner and reports who wrote it.
func (s *Store) DeleteAny(ctx context.Context, id uint) (*Removed, error) {
	var removed Removed
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r Review
		if err := tx.First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return apperr.Transient(err)
		}
		removed.Review = r

		var author user.User
		if err := tx.Select("email", "username").First(&author, r.UserID).Error; err == nil {
			removed.AuthorEmail = author.Email
			removed.AuthorUsername = author.Username
		}
		var dest destination.Destination
		if err := tx.Select("name").First(&dest, r.DestinationID).Error; err == nil {
			removed.DestinationName = dest.Name
		}
		return ownership.CheckAny(tx.Delete(&Review{}, id))
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}
