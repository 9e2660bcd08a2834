package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

// newTestDB opens a unique in-memory database per test. With migrate=true the
// full schema (including the partial unique index) is created.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection keeps the PRAGMA and the shared cache consistent.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedPet(t *testing.T, db *gorm.DB, owner string, mods ...func(*domain.Pet)) *domain.Pet {
	t.Helper()
	p := &domain.Pet{
		UserID:      owner,
		Name:        "Rex",
		Category:    domain.CategoryDog,
		ListingType: domain.ListingAdopt,
	}
	for _, m := range mods {
		m(p)
	}
	if err := CreatePet(context.Background(), db, p); err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return p
}

func seedRequest(t *testing.T, db *gorm.DB, user, petID string) *domain.AdoptionRequest {
	t.Helper()
	r := &domain.AdoptionRequest{UserID: user, PetID: petID, Message: "I have a big garden and lots of time."}
	if err := CreateRequest(context.Background(), db, r); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return r
}

func forSale(price string) func(*domain.Pet) {
	return func(p *domain.Pet) {
		d := decimal.RequireFromString(price)
		p.ListingType = domain.ListingSell
		p.Price = &d
	}
}
