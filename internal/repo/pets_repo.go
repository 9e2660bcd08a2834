// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Pet model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
// Ownership checks and status rules live in the service layer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

// PetFilter narrows pet listings. Zero values mean "any".
type PetFilter struct {
	Status      domain.PetStatus
	Category    domain.Category
	ListingType domain.ListingType
	OwnerID     string
}

func (f PetFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ListingType != "" {
		q = q.Where("listing_type = ?", f.ListingType)
	}
	if f.OwnerID != "" {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	return q
}

// CreatePet assigns an ID and timestamps and inserts p. New pets are always
// available regardless of the status set by the caller.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.Status = domain.PetAvailable
	p.CreatedAt = now
	p.UpdatedAt = now
	return db.WithContext(ctx).Create(p).Error
}

// GetPet fetches a pet by ID or returns ErrNotFound.
func GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPetForUpdate is GetPet with a row lock (SELECT ... FOR UPDATE). It must
// run inside a transaction. SQLite ignores the locking clause and relies on
// its single-writer lock instead.
func GetPetForUpdate(ctx context.Context, tx *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPets returns the number of pets matching f.
func CountPets(ctx context.Context, db *gorm.DB, f PetFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Pet{})).Count(&total).Error
	return total, err
}

// ListPetsPage returns a page of pets matching f, newest first.
func ListPetsPage(ctx context.Context, db *gorm.DB, f PetFilter, offset, limit int) ([]domain.Pet, error) {
	var out []domain.Pet
	err := f.apply(db.WithContext(ctx)).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPetsByOwner returns every pet listed by ownerID, newest first.
func ListPetsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// UpdatePetListing writes the editable listing fields of p. Owner and status
// are never touched here; a missing row yields ErrNotFound.
func UpdatePetListing(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	p.UpdatedAt = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Pet{}).
		Where("id = ?", p.ID).
		Select("pet_name", "category", "breed", "age", "gender", "color", "description",
			"allergies", "medications", "food_preferences", "listing_type", "price", "image", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPetStatus moves a pet from one status to another. The write is guarded
// on the current status, so a concurrent transition makes it return ErrStale.
func SetPetStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.PetStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Pet{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteAvailablePet removes a pet that is still available. Its adoption
// requests go with it through the FK cascade. An adopted pet yields ErrStale.
func DeleteAvailablePet(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.PetAvailable).
		Delete(&domain.Pet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
