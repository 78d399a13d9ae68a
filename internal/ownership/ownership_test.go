package ownership

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nearmex/internal/apperr"
)

type note struct {
	ID     uint
	UserID uint
	Body   string
}

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:ownership_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&note{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Create(&note{ID: 1, UserID: 10, Body: "a"})
	db.Create(&note{ID: 2, UserID: 20, Body: "b"})
	return db
}

func TestOwnerCanUpdate(t *testing.T) {
	db := setup(t)
	res := db.Model(&note{}).Scopes(Owned(1, 10)).Update("body", "edited")
	if err := Check(res); err != nil {
		t.Fatalf("expected owner update to succeed, got %v", err)
	}
	var n note
	db.First(&n, 1)
	if n.Body != "edited" {
		t.Errorf("expected body to change, got %q", n.Body)
	}
}

func TestNonOwnerAndMissingAreIndistinguishable(t *testing.T) {
	db := setup(t)
	notMine := Check(db.Scopes(Owned(2, 10)).Delete(&note{}))
	missing := Check(db.Scopes(Owned(99, 10)).Delete(&note{}))
	if !errors.Is(notMine, apperr.ErrNotFoundOrForbidden) || !errors.Is(missing, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("expected ErrNotFoundOrForbidden for both, got %v and %v", notMine, missing)
	}
	if apperr.PublicMessage(notMine) != apperr.PublicMessage(missing) {
		t.Errorf("public messages must match")
	}
	var count int64
	db.Model(&note{}).Where("id = ?", 2).Count(&count)
	if count != 1 {
		t.Errorf("someone else's row must survive")
	}
}

func TestAdminPathMatchesByID(t *testing.T) {
	db := setup(t)
	if err := CheckAny(db.Where("id = ?", 2).Delete(&note{})); err != nil {
		t.Fatalf("expected delete by id to succeed, got %v", err)
	}
	if err := CheckAny(db.Where("id = ?", 2).Delete(&note{})); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a second delete, got %v", err)
	}
}

func TestOwnedByListsOnlyOwnRows(t *testing.T) {
	db := setup(t)
	var notes []note
	db.Scopes(OwnedBy(20)).Find(&notes)
	if len(notes) != 1 || notes[0].ID != 2 {
		t.Errorf("expected only note 2, got %+v", notes)
	}
}
