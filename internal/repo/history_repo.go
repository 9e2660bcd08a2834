// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only AdoptionHistory ledger.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

// AppendHistory inserts h. There is no update or delete counterpart.
func AppendHistory(ctx context.Context, db *gorm.DB, h *domain.AdoptionHistory) error {
	h.ID = uuid.NewString()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(h).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// HistoryRow is a ledger entry joined with the adopted pet.
type HistoryRow struct {
	ID                string
	UserID            string
	PetID             string
	AdoptionRequestID string
	AdoptionDate      time.Time
	Notes             string
	CreatedAt         time.Time

	PetName         string
	PetCategory     domain.Category
	PetBreed        string
	PetAge          *int
	PetGender       string
	PetListingType  domain.ListingType
	PetPrice        *decimal.Decimal
	PetImage        string
	OriginalOwnerID string
}

// ListHistoryForUser returns entries where userID is the adopter or the
// pet's original owner, most recent adoption first.
func ListHistoryForUser(ctx context.Context, db *gorm.DB, userID string) ([]HistoryRow, error) {
	var out []HistoryRow
	err := db.WithContext(ctx).
		Table("adoption_history AS h").
		Select(`h.id, h.user_id, h.pet_id, h.adoption_request_id, h.adoption_date, h.notes, h.created_at,
			p.pet_name AS pet_name, p.category AS pet_category, p.breed AS pet_breed, p.age AS pet_age,
			p.gender AS pet_gender, p.listing_type AS pet_listing_type, p.price AS pet_price,
			p.image AS pet_image, p.user_id AS original_owner_id`).
		Joins("JOIN pets AS p ON p.id = h.pet_id").
		Where("h.user_id = ? OR p.user_id = ?", userID, userID).
		Order("h.adoption_date desc, h.id desc").
		Scan(&out).Error
	return out, err
}
