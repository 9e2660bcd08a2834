// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AdoptionRequest model.
//
// Every write that changes a request's status is guarded on status =
// 'pending' and checks RowsAffected, so concurrent approve, reject and cancel
// calls cannot both win: the loser gets ErrStale and leaves the row as is.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

// CreateRequest inserts r as a new pending request. A unique violation on the
// one-pending-per-(user, pet) index is reported as ErrDuplicate.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.AdoptionRequest) error {
	now := time.Now().UTC()
	r.ID = uuid.NewString()
	r.Status = domain.RequestPending
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetRequest fetches a request with its pet, or returns ErrNotFound.
func GetRequest(ctx context.Context, db *gorm.DB, id string) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	if err := db.WithContext(ctx).Preload("Pet").Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRequestForUpdate fetches and row-locks a request inside a transaction.
// The pet is not preloaded; lock it separately with GetPetForUpdate.
func GetRequestForUpdate(ctx context.Context, tx *gorm.DB, id string) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasPendingRequest reports whether userID already holds a pending request
// for petID.
func HasPendingRequest(ctx context.Context, db *gorm.DB, userID, petID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("user_id = ? AND pet_id = ? AND status = ?", userID, petID, domain.RequestPending).
		Count(&n).Error
	return n > 0, err
}

// ListRequestsByUser returns the requests filed by userID, newest first,
// with their pets preloaded.
func ListRequestsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.AdoptionRequest, error) {
	var out []domain.AdoptionRequest
	err := db.WithContext(ctx).
		Preload("Pet").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&out).Error
	return out, err
}

// ListRequestsForOwner returns the requests targeting pets listed by ownerID,
// newest first, with their pets preloaded.
func ListRequestsForOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.AdoptionRequest, error) {
	var out []domain.AdoptionRequest
	err := db.WithContext(ctx).
		Preload("Pet").
		Joins("JOIN pets ON pets.id = adoption_requests.pet_id").
		Where("pets.user_id = ?", ownerID).
		Order("adoption_requests.created_at desc, adoption_requests.id desc").
		Find(&out).Error
	return out, err
}

// GetRequestByDocument returns the request, with its pet, that references the
// stored identity document ref, or ErrNotFound.
func GetRequestByDocument(ctx context.Context, db *gorm.DB, ref string) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	err := db.WithContext(ctx).
		Preload("Pet").
		Where("valid_id_1 = ? OR valid_id_2 = ?", ref, ref).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRequestsForPet returns every request for petID regardless of status.
func ListRequestsForPet(ctx context.Context, db *gorm.DB, petID string) ([]domain.AdoptionRequest, error) {
	var out []domain.AdoptionRequest
	err := db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

// Transition describes a terminal status change of a pending request.
type Transition struct {
	To         domain.RequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	OwnerNotes *string
}

// TransitionRequest moves a pending request to t.To. It returns ErrStale when
// the request is no longer pending.
func TransitionRequest(ctx context.Context, db *gorm.DB, id string, t Transition) error {
	updates := map[string]any{
		"status":      t.To,
		"reviewed_by": t.ReviewedBy,
		"reviewed_at": t.ReviewedAt,
		"updated_at":  t.ReviewedAt,
	}
	if t.OwnerNotes != nil {
		updates["owner_notes"] = *t.OwnerNotes
	}
	res := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// RejectPendingSiblings rejects every other pending request for petID and
// returns how many rows changed.
func RejectPendingSiblings(ctx context.Context, db *gorm.DB, petID, exceptID, reviewer string, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("pet_id = ? AND id <> ? AND status = ?", petID, exceptID, domain.RequestPending).
		Updates(map[string]any{
			"status":      domain.RequestRejected,
			"reviewed_by": reviewer,
			"reviewed_at": at,
			"updated_at":  at,
		})
	return res.RowsAffected, res.Error
}

// DeletePendingRequest removes a request that is still pending, or returns
// ErrStale.
func DeletePendingRequest(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Delete(&domain.AdoptionRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
