package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// PetView is a pet as returned to clients: the stored image reference is
// replaced by a resolvable URL.
type PetView struct {
	domain.Pet
	ImageURL *string `json:"image_url"`
}

// RequestView is an adoption request as returned to clients, with document
// URLs and a summary of the requested pet.
type RequestView struct {
	domain.AdoptionRequest
	ValidID1URL *string  `json:"valid_id_1_url"`
	ValidID2URL *string  `json:"valid_id_2_url"`
	Pet         *PetView `json:"pet,omitempty"`
}

// HistoryRole says how the viewer took part in an adoption.
type HistoryRole string

const (
	RoleAdopter HistoryRole = "adopter"
	RoleOwner   HistoryRole = "owner"
)

// HistoryPet summarises the adopted pet inside a history entry.
type HistoryPet struct {
	ID          string             `json:"id"`
	Name        string             `json:"pet_name"`
	Category    domain.Category    `json:"category"`
	Breed       string             `json:"breed"`
	Age         *int               `json:"age,omitempty"`
	Gender      string             `json:"gender,omitempty"`
	ListingType domain.ListingType `json:"listing_type"`
	Price       *decimal.Decimal   `json:"price,omitempty"`
	ImageURL    *string            `json:"image_url"`
	OwnerID     string             `json:"original_owner_id"`
}

// HistoryEntry is one adoption as seen by a participant.
type HistoryEntry struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	PetID             string      `json:"pet_id"`
	AdoptionRequestID string      `json:"adoption_request_id"`
	AdoptionDate      time.Time   `json:"adoption_date"`
	Notes             string      `json:"notes"`
	CreatedAt         time.Time   `json:"created_at"`
	Role              HistoryRole `json:"role"`
	Pet               HistoryPet  `json:"pet"`
}

func petView(fs FileStore, p domain.Pet) PetView {
	return PetView{Pet: p, ImageURL: resolveURL(fs, &p.Image)}
}

func petViews(fs FileStore, pets []domain.Pet) []PetView {
	out := make([]PetView, 0, len(pets))
	for _, p := range pets {
		out = append(out, petView(fs, p))
	}
	return out
}

func requestView(fs FileStore, r domain.AdoptionRequest) RequestView {
	v := RequestView{
		AdoptionRequest: r,
		ValidID1URL:     resolveURL(fs, r.ValidID1),
		ValidID2URL:     resolveURL(fs, r.ValidID2),
	}
	if r.Pet.ID != "" {
		pv := petView(fs, r.Pet)
		v.Pet = &pv
	}
	return v
}

func requestViews(fs FileStore, rs []domain.AdoptionRequest) []RequestView {
	out := make([]RequestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, requestView(fs, r))
	}
	return out
}

func historyEntry(fs FileStore, viewer string, row repo.HistoryRow) HistoryEntry {
	role := RoleOwner
	if row.UserID == viewer {
		role = RoleAdopter
	}
	return HistoryEntry{
		ID:                row.ID,
		UserID:            row.UserID,
		PetID:             row.PetID,
		AdoptionRequestID: row.AdoptionRequestID,
		AdoptionDate:      row.AdoptionDate,
		Notes:             row.Notes,
		CreatedAt:         row.CreatedAt,
		Role:              role,
		Pet: HistoryPet{
			ID:          row.PetID,
			Name:        row.PetName,
			Category:    row.PetCategory,
			Breed:       row.PetBreed,
			Age:         row.PetAge,
			Gender:      row.PetGender,
			ListingType: row.PetListingType,
			Price:       row.PetPrice,
			ImageURL:    resolveURL(fs, &row.PetImage),
			OwnerID:     row.OriginalOwnerID,
		},
	}
}
