package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"nearmex/internal/apperr"
)

// Store is the credential store. Every method acquires a pooled connection
// through gorm for the duration of one statement.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func lookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return apperr.Transient(err)
}

// Create inserts u. A unique violation on username or email is reported as
// ErrValidationConflict, which also covers two registrations racing.
func (s *Store) Create(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return apperr.ErrValidationConflict
		}
		return apperr.Transient(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// Taken reports whether any account already uses email or username.
func (s *Store) Taken(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, apperr.Transient(err)
	}
	return count > 0, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error; err != nil {
		return 0, apperr.Transient(err)
	}
	return count, nil
}

func (s *Store) GetByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, lookupErr(err)
	}
	return &u, nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return users, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uint, upd ProfileUpdate) error {
	cols := upd.columns()
	if len(cols) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) SetRole(ctx context.Context, id uint, role Role) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetResetToken stores a token digest and its expiry in one statement.
func (s *Store) SetResetToken(ctx context.Context, id uint, digest string, expiresAt time.Time) error {
	expiresAt = expiresAt.UTC()
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"reset_password_token":   digest,
		"reset_password_expires": expiresAt,
	})
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ConsumeResetToken swaps in passwordHash for the account holding digest,
// provided the token has not expired at now, and clears both token columns.
// It is a single conditional UPDATE, so of two concurrent callers at most
// one sees a matching row.
func (s *Store) ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("reset_password_token = ? AND reset_password_expires > ?", digest, now.UTC()).
		Updates(map[string]any{
			"password":               passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	if res.Error != nil {
		return apperr.Transient(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrInvalidOrExpiredToken
	}
	return nil
}
