// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) in the HTTP layer and for the
// admin monitoring endpoint.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

// PetsStats returns aggregate metadata for the pets matching f: the total
// number of rows and the maximum UpdatedAt timestamp among those rows.
//
// When nothing matches, the returned count is 0 and maxUpdatedAt is nil.
func PetsStats(ctx context.Context, db *gorm.DB, f PetFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	q := f.apply(db.WithContext(ctx).Model(&domain.Pet{}))

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	q = f.apply(db.WithContext(ctx).Model(&domain.Pet{}))
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// AdminStats summarises the marketplace for monitoring.
type AdminStats struct {
	Users             int64            `json:"users"`
	Pets              int64            `json:"pets"`
	PetsByStatus      map[string]int64 `json:"pets_by_status"`
	RequestsByStatus  map[string]int64 `json:"requests_by_status"`
	CompletedAdoption int64            `json:"completed_adoptions"`
}

type statusCount struct {
	Status string
	N      int64
}

// LoadAdminStats aggregates counts across pets, requests and history. Users
// are not stored locally; they are counted as the distinct ids seen as pet
// owners or requesters.
func LoadAdminStats(ctx context.Context, db *gorm.DB) (*AdminStats, error) {
	db = db.WithContext(ctx)
	out := &AdminStats{
		PetsByStatus:     map[string]int64{},
		RequestsByStatus: map[string]int64{},
	}

	var pets []statusCount
	if err := db.Model(&domain.Pet{}).Select("status, COUNT(*) AS n").Group("status").Scan(&pets).Error; err != nil {
		return nil, err
	}
	for _, c := range pets {
		out.PetsByStatus[c.Status] = c.N
		out.Pets += c.N
	}

	var reqs []statusCount
	if err := db.Model(&domain.AdoptionRequest{}).Select("status, COUNT(*) AS n").Group("status").Scan(&reqs).Error; err != nil {
		return nil, err
	}
	for _, c := range reqs {
		out.RequestsByStatus[c.Status] = c.N
	}

	if err := db.Model(&domain.AdoptionHistory{}).Count(&out.CompletedAdoption).Error; err != nil {
		return nil, err
	}

	err := db.Raw(`SELECT COUNT(*) FROM (
		SELECT user_id FROM pets
		UNION
		SELECT user_id FROM adoption_requests
	) AS u`).Scan(&out.Users).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
