package destination

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nearmex/internal/apperr"
	"nearmex/internal/ownership"
)

// dependentTables hold rows keyed by destination_id that go away with the
// destination.
var dependentTables = []string{"reviews", "favorites"}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]Destination, error) {
	dests := []Destination{}
	if err := s.db.WithContext(ctx).Order("id").Find(&dests).Error; err != nil {
		return nil, apperr.Transient(err)
	}
	return dests, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*Destination, error) {
	var d Destination
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Transient(err)
	}
	return &d, nil
}

func (s *Store) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Destination{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperr.Transient(err)
	}
	return count > 0, nil
}

func (s *Store) Create(ctx context.Context, in Input) (*Destination, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	d := in.destination()
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, apperr.Transient(fmt.Errorf("insert destination: %w", err))
	}
	return d, nil
}

func (s *Store) Update(ctx context.Context, id uint, in Input) (*Destination, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&Destination{}).Where("id = ?", id).Updates(in.columns())
	if err := ownership.CheckAny(res); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the destination together with its reviews and favorites.
func (s *Store) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range dependentTables {
			if err := tx.Exec("DELETE FROM "+table+" WHERE destination_id = ?", id).Error; err != nil {
				return apperr.Transient(fmt.Errorf("delete %s: %w", table, err))
			}
		}
		return ownership.CheckAny(tx.Delete(&Destination{}, id))
	})
}
