// Package services – PetService
//
// This file implements the Pet Registry: listing creation, lookup, filtered
// listings, owner edits and deletion. Pet status is read-only here; only the
// approval workflow moves a pet to adopted.
//
// Observability: public methods are OpenTelemetry-instrumented with pet and
// user identifiers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// PetInput is the editable part of a listing.
type PetInput struct {
	Name            string             `json:"pet_name"         validate:"required,max=255"`
	Category        domain.Category    `json:"category"         validate:"required,oneof=dog cat"`
	Breed           string             `json:"breed"            validate:"max=255"`
	Age             *int               `json:"age"              validate:"omitempty,min=0,max=100"`
	Gender          string             `json:"gender"           validate:"omitempty,oneof=male female"`
	Color           string             `json:"color"            validate:"max=64"`
	Description     string             `json:"description"      validate:"max=5000"`
	Allergies       string             `json:"allergies"        validate:"max=2000"`
	Medications     string             `json:"medications"      validate:"max=2000"`
	FoodPreferences string             `json:"food_preferences" validate:"max=2000"`
	ListingType     domain.ListingType `json:"listing_type"     validate:"required,oneof=adopt sell"`
	Price           *decimal.Decimal   `json:"price"            validate:"-"`
}

// PetListFilter narrows the public listing. An empty Status means
// available; "all" disables the status filter.
type PetListFilter struct {
	Status      string
	Category    string
	ListingType string
}

// PetService owns pet listings.
type PetService struct {
	DB    *gorm.DB
	Files FileStore

	// Locale drives title-casing of breed and color; zero means English.
	Locale language.Tag
}

// Create validates in, stores the optional image and persists a new
// available pet owned by ownerID.
func (s *PetService) Create(ctx context.Context, ownerID string, in PetInput, image *Upload) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	verr := s.checkInput(&in)
	img := readUpload("image", image, petImageRule, verr)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	ref, err := img.store(ctx, s.Files)
	if err != nil {
		return nil, err
	}
	p := &domain.Pet{UserID: ownerID}
	s.apply(p, in)
	if ref != nil {
		p.Image = *ref
	}
	if err := repo.CreatePet(ctx, s.DB, p); err != nil {
		if ref != nil {
			releaseFiles(ctx, s.Files, *ref)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("pet.id", p.ID))
	v := petView(s.Files, *p)
	return &v, nil
}

// Get returns a pet by id.
func (s *PetService) Get(ctx context.Context, id string) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("pet.id", id)))
	defer span.End()

	p, err := repo.GetPet(ctx, s.DB, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPetNotFound)
	}
	v := petView(s.Files, *p)
	return &v, nil
}

// List returns a page of pets matching f, newest first, plus the total.
func (s *PetService) List(ctx context.Context, f PetListFilter, page, pageSize int) ([]PetView, int64, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.status", f.Status),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	rf, err := f.resolve()
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountPets(ctx, s.DB, rf)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []PetView{}, 0, nil
	}
	pets, err := repo.ListPetsPage(ctx, s.DB, rf, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return petViews(s.Files, pets), total, nil
}

// ListStats returns the row count and newest update among pets matching f,
// for conditional GETs.
func (s *PetService) ListStats(ctx context.Context, f PetListFilter) (int64, *time.Time, error) {
	rf, err := f.resolve()
	if err != nil {
		return 0, nil, err
	}
	return repo.PetsStats(ctx, s.DB, rf)
}

// ListByOwner returns every pet listed by ownerID.
func (s *PetService) ListByOwner(ctx context.Context, ownerID string) ([]PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "ListByOwner", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	pets, err := repo.ListPetsByOwner(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	return petViews(s.Files, pets), nil
}

// Update replaces the listing fields of pet id. Only the owner may edit; the
// status is never changed. A new image replaces the old one, which is
// released after commit.
func (s *PetService) Update(ctx context.Context, actorID, id string, in PetInput, image *Upload) (*PetView, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.String("pet.id", id), attribute.String("user.id", actorID)),
	)
	defer span.End()

	verr := s.checkInput(&in)
	img := readUpload("image", image, petImageRule, verr)

	var (
		updated  *domain.Pet
		newRef   *string
		oldImage string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPetForUpdate(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, ErrPetNotFound)
		}
		if p.UserID != actorID {
			return ErrNotPetOwner
		}
		if err := verr.orNil(); err != nil {
			return err
		}
		s.apply(p, in)
		if newRef, err = img.store(ctx, s.Files); err != nil {
			return err
		}
		if newRef != nil {
			oldImage, p.Image = p.Image, *newRef
		}
		if err := repo.UpdatePetListing(ctx, tx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		if newRef != nil {
			releaseFiles(ctx, s.Files, *newRef)
		}
		return nil, err
	}
	releaseFiles(ctx, s.Files, oldImage)
	v := petView(s.Files, *updated)
	return &v, nil
}

// Delete removes pet id and its adoption requests. Only the owner may delete,
// and an adopted pet stays because the history ledger references it. The
// pet image and any identity documents are released after commit.
func (s *PetService) Delete(ctx context.Context, actorID, id string) error {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("pet.id", id), attribute.String("user.id", actorID)),
	)
	defer span.End()

	var release []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetPetForUpdate(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, ErrPetNotFound)
		}
		if p.UserID != actorID {
			return ErrNotPetOwner
		}
		if p.Status != domain.PetAvailable {
			return ErrPetAdopted
		}
		reqs, err := repo.ListRequestsForPet(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteAvailablePet(ctx, tx, id); err != nil {
			if errors.Is(err, repo.ErrStale) {
				return ErrPetAdopted
			}
			return err
		}
		release = append(release, p.Image)
		for i := range reqs {
			release = append(release, reqs[i].Documents()...)
		}
		return nil
	})
	if err != nil {
		countConflict("delete_pet", err)
		return err
	}
	releaseFiles(ctx, s.Files, release...)
	return nil
}

// checkInput normalises in and validates it, including the rule that price
// is required and non-negative for sales and absent for adoptions.
func (s *PetService) checkInput(in *PetInput) *ValidationError {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = domain.Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.ListingType = domain.ListingType(strings.ToLower(strings.TrimSpace(string(in.ListingType))))
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.Breed = s.title(in.Breed)
	in.Color = s.title(in.Color)
	in.Description = strings.TrimSpace(in.Description)

	verr := validateStruct(in)
	switch in.ListingType {
	case domain.ListingSell:
		if in.Price == nil {
			verr.add("price", "price is required when listing_type is sell")
		} else if in.Price.IsNegative() {
			verr.add("price", "price must be at least 0")
		} else if in.Price.GreaterThanOrEqual(maxPrice) {
			verr.add("price", "price must be less than 100000000")
		} else {
			p := in.Price.Round(2)
			in.Price = &p
		}
	case domain.ListingAdopt:
		in.Price = nil
	}
	return verr
}

var maxPrice = decimal.New(1, 8) // decimal(10,2)

func (s *PetService) title(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if v == "" {
		return ""
	}
	tag := s.Locale
	if tag == language.Und {
		tag = language.English
	}
	// Casers keep state, so one is built per call.
	return cases.Title(tag).String(v)
}

func (s *PetService) apply(p *domain.Pet, in PetInput) {
	p.Name = in.Name
	p.Category = in.Category
	p.Breed = in.Breed
	p.Age = in.Age
	p.Gender = in.Gender
	p.Color = in.Color
	p.Description = in.Description
	p.Allergies = strings.TrimSpace(in.Allergies)
	p.Medications = strings.TrimSpace(in.Medications)
	p.FoodPreferences = strings.TrimSpace(in.FoodPreferences)
	p.ListingType = in.ListingType
	p.Price = in.Price
}

func (f PetListFilter) resolve() (repo.PetFilter, error) {
	var out repo.PetFilter
	verr := &ValidationError{}
	switch st := strings.ToLower(strings.TrimSpace(f.Status)); st {
	case "":
		out.Status = domain.PetAvailable
	case "all":
	default:
		if !domain.PetStatus(st).Valid() {
			verr.add("status", "status must be one of [available adopted all]")
		}
		out.Status = domain.PetStatus(st)
	}
	if c := domain.Category(strings.ToLower(strings.TrimSpace(f.Category))); c != "" {
		if !c.Valid() {
			verr.add("category", "category must be one of [dog cat]")
		}
		out.Category = c
	}
	if l := domain.ListingType(strings.ToLower(strings.TrimSpace(f.ListingType))); l != "" {
		if !l.Valid() {
			verr.add("listing_type", "listing_type must be one of [adopt sell]")
		}
		out.ListingType = l
	}
	return out, verr.orNil()
}

// mapNotFound turns a repo not-found into the given service error and wraps
// anything else.
func mapNotFound(err, notFound error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("load: %w", err)
}
