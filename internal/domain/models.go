// Package domain defines the persistence models for pets, adoption requests
// and the adoption history ledger. These types are mapped with GORM and form
// the core data layer of the adoption service.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the kind of animal being listed.
type Category string

const (
	CategoryDog Category = "dog"
	CategoryCat Category = "cat"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c == CategoryDog || c == CategoryCat }

// ListingType says whether a pet is offered for adoption or for sale.
type ListingType string

const (
	ListingAdopt ListingType = "adopt"
	ListingSell  ListingType = "sell"
)

// Valid reports whether l is a known listing type.
func (l ListingType) Valid() bool { return l == ListingAdopt || l == ListingSell }

// PetStatus is the availability of a pet. It moves from available to adopted
// once and never back.
type PetStatus string

const (
	PetAvailable PetStatus = "available"
	PetAdopted   PetStatus = "adopted"
)

// Valid reports whether s is a known pet status.
func (s PetStatus) Valid() bool { return s == PetAvailable || s == PetAdopted }

// RequestStatus is the state of an adoption request. Approved and rejected are
// terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool { return s == RequestApproved || s == RequestRejected }

// Pet is a listing owned by exactly one user.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: the lister; indexed for "my pets" queries.
//   - Price: set iff ListingType is sell; nil for adoptions.
//   - Status: available until an adoption request is approved.
//   - Image: storage reference, never serialized; clients get an image URL.
type Pet struct {
	ID              string           `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID          string           `json:"user_id"          gorm:"type:varchar(64);not null;index:idx_owner_pets"`
	Name            string           `json:"pet_name"         gorm:"column:pet_name;type:varchar(255);not null"`
	Category        Category         `json:"category"         gorm:"type:varchar(8);not null;check:category IN ('dog','cat')"`
	Breed           string           `json:"breed"            gorm:"type:varchar(255)"`
	Age             *int             `json:"age,omitempty"`
	Gender          string           `json:"gender,omitempty" gorm:"type:varchar(8)"`
	Color           string           `json:"color,omitempty"  gorm:"type:varchar(64)"`
	Description     string           `json:"description"      gorm:"type:text"`
	Allergies       string           `json:"allergies,omitempty"        gorm:"type:text"`
	Medications     string           `json:"medications,omitempty"      gorm:"type:text"`
	FoodPreferences string           `json:"food_preferences,omitempty" gorm:"type:text"`
	ListingType     ListingType      `json:"listing_type"     gorm:"type:varchar(8);not null;check:listing_type IN ('adopt','sell')"`
	Price           *decimal.Decimal `json:"price,omitempty"  gorm:"type:decimal(10,2)"`
	Status          PetStatus        `json:"status"           gorm:"type:varchar(16);not null;default:'available';index;check:status IN ('available','adopted')"`
	Image           string           `json:"-"                gorm:"type:varchar(512)"`
	CreatedAt       time.Time        `json:"created_at"       gorm:"index"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// AdoptionRequest is a user's request to adopt a pet. Only pending requests
// are mutable; a user holds at most one pending request per pet.
type AdoptionRequest struct {
	ID            string        `json:"id"                       gorm:"type:char(36);primaryKey"`
	UserID        string        `json:"user_id"                  gorm:"type:varchar(64);not null;index:idx_requests_user"`
	PetID         string        `json:"pet_id"                   gorm:"type:char(36);not null;index:idx_requests_pet_status,priority:1"`
	Message       string        `json:"message"                  gorm:"type:text;not null"`
	Status        RequestStatus `json:"status"                   gorm:"type:varchar(16);not null;default:'pending';index:idx_requests_pet_status,priority:2;check:status IN ('pending','approved','rejected')"`
	ApplicantName *string       `json:"applicant_name,omitempty" gorm:"type:varchar(255)"`
	PhoneNumber   *string       `json:"phone_number,omitempty"   gorm:"type:varchar(20)"`
	ValidID1      *string       `json:"-"                        gorm:"column:valid_id_1;type:varchar(512)"`
	ValidID2      *string       `json:"-"                        gorm:"column:valid_id_2;type:varchar(512)"`
	OwnerNotes    *string       `json:"owner_notes,omitempty"    gorm:"type:text"`
	AdminNotes    *string       `json:"admin_notes,omitempty"    gorm:"type:text"`
	ReviewedBy    *string       `json:"reviewed_by,omitempty"    gorm:"type:varchar(64)"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Pet is the requested listing. Requests are cascade-deleted with it.
	Pet Pet `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AdoptionRequest.
func (AdoptionRequest) TableName() string { return "adoption_requests" }

// Documents returns the stored identity-document references of r.
func (r *AdoptionRequest) Documents() []string {
	var out []string
	for _, ref := range []*string{r.ValidID1, r.ValidID2} {
		if ref != nil && *ref != "" {
			out = append(out, *ref)
		}
	}
	return out
}

// AdoptionHistory is an append-only ledger entry written once per approved
// request. Its foreign keys restrict deletion of the referenced pet and request.
type AdoptionHistory struct {
	ID                string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	UserID            string    `json:"user_id"             gorm:"type:varchar(64);not null;index"`
	PetID             string    `json:"pet_id"              gorm:"type:char(36);not null;index"`
	AdoptionRequestID string    `json:"adoption_request_id" gorm:"type:char(36);not null;uniqueIndex:ux_history_request"`
	AdoptionDate      time.Time `json:"adoption_date"       gorm:"not null;index"`
	Notes             string    `json:"notes"               gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`

	Pet             Pet             `json:"-" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	AdoptionRequest AdoptionRequest `json:"-" gorm:"foreignKey:AdoptionRequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for AdoptionHistory.
func (AdoptionHistory) TableName() string { return "adoption_history" }
