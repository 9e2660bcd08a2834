// Package services – RequestService
//
// This file implements the Adoption Request Store: submitting a request for
// an available pet, cancelling a pending request, and the read projections
// for requesters and pet owners.
//
// Submission checks its preconditions in a fixed order inside one
// transaction (pet exists, pet available, no duplicate pending request, not
// the requester's own pet); the first failure is reported. Payload problems
// are reported after those preconditions so that, for example, requesting
// your own pet is refused whatever the payload says.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// RequestInput is the payload of a new adoption request.
type RequestInput struct {
	PetID         string  `json:"pet_id"         validate:"required,max=64"`
	Message       string  `json:"message"        validate:"required,min=20,max=5000"`
	ApplicantName string  `json:"applicant_name" validate:"max=255"`
	PhoneNumber   string  `json:"phone_number"   validate:"max=20"`
	ValidID1      *Upload `json:"valid_id_1"     validate:"-"`
	ValidID2      *Upload `json:"valid_id_2"     validate:"-"`
}

// RequestService owns adoption requests up to the owner's decision.
type RequestService struct {
	DB    *gorm.DB
	Files FileStore
}

// Create files a pending request by requesterID. See the file comment for
// the precondition order. Identity documents are stored once every check
// has passed and released again if the insert fails.
func (s *RequestService) Create(ctx context.Context, requesterID string, in RequestInput) (*RequestView, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", requesterID),
			attribute.String("pet.id", in.PetID),
		),
	)
	defer span.End()

	in.PetID = strings.TrimSpace(in.PetID)
	in.Message = strings.TrimSpace(in.Message)
	in.ApplicantName = strings.TrimSpace(in.ApplicantName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	verr := validateStruct(&in)
	doc1 := readUpload("valid_id_1", in.ValidID1, idDocumentRule, verr)
	doc2 := readUpload("valid_id_2", in.ValidID2, idDocumentRule, verr)

	var (
		created *domain.AdoptionRequest
		stored  []string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pet, err := repo.GetPetForUpdate(ctx, tx, in.PetID)
		if err != nil {
			return mapNotFound(err, ErrPetNotFound)
		}
		if pet.Status != domain.PetAvailable {
			return ErrPetUnavailable
		}
		dup, err := repo.HasPendingRequest(ctx, tx, requesterID, pet.ID)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicatePending
		}
		if pet.UserID == requesterID {
			return ErrSelfRequest
		}
		if err := verr.orNil(); err != nil {
			return err
		}

		r := &domain.AdoptionRequest{
			UserID:        requesterID,
			PetID:         pet.ID,
			Message:       in.Message,
			ApplicantName: optional(in.ApplicantName),
			PhoneNumber:   optional(in.PhoneNumber),
		}
		if r.ValidID1, err = doc1.store(ctx, s.Files); err != nil {
			return err
		}
		stored = r.Documents()
		if r.ValidID2, err = doc2.store(ctx, s.Files); err != nil {
			return err
		}
		stored = r.Documents()

		if err := repo.CreateRequest(ctx, tx, r); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicatePending
			}
			return err
		}
		r.Pet = *pet
		created = r
		return nil
	})
	if err != nil {
		releaseFiles(ctx, s.Files, stored...)
		countConflict("create_request", err)
		return nil, err
	}

	requestsTotal.WithLabelValues("created").Inc()
	span.SetAttributes(attribute.String("request.id", created.ID))
	v := requestView(s.Files, *created)
	return &v, nil
}

// Cancel deletes a pending request on behalf of its requester. Identity
// documents are released after commit; cleanup failures are only logged.
func (s *RequestService) Cancel(ctx context.Context, actorID, requestID string) error {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Cancel",
		trace.WithAttributes(
			attribute.String("user.id", actorID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var docs []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequestForUpdate(ctx, tx, requestID)
		if err != nil {
			return mapNotFound(err, ErrRequestNotFound)
		}
		if r.UserID != actorID {
			return ErrNotRequester
		}
		if r.Status != domain.RequestPending {
			return ErrAlreadyProcessed
		}
		if err := repo.DeletePendingRequest(ctx, tx, r.ID); err != nil {
			if errors.Is(err, repo.ErrStale) {
				return ErrAlreadyProcessed
			}
			return err
		}
		docs = r.Documents()
		return nil
	})
	if err != nil {
		countConflict("cancel_request", err)
		return err
	}
	requestsTotal.WithLabelValues("cancelled").Inc()
	releaseFiles(ctx, s.Files, docs...)
	return nil
}

// Get returns a request visible to actorID, who must be the requester or the
// owner of the requested pet.
func (s *RequestService) Get(ctx context.Context, actorID, requestID string) (*RequestView, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		return nil, mapNotFound(err, ErrRequestNotFound)
	}
	if r.UserID != actorID && r.Pet.UserID != actorID {
		return nil, ErrNotParticipant
	}
	v := requestView(s.Files, *r)
	return &v, nil
}

// AuthorizeDocument allows actorID to download the identity document ref
// when they filed the request carrying it or own the requested pet.
func (s *RequestService) AuthorizeDocument(ctx context.Context, actorID, ref string) error {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "AuthorizeDocument", trace.WithAttributes(attribute.String("user.id", actorID)))
	defer span.End()

	r, err := repo.GetRequestByDocument(ctx, s.DB, ref)
	if err != nil {
		return mapNotFound(err, ErrFileNotFound)
	}
	if actorID == "" || (r.UserID != actorID && r.Pet.UserID != actorID) {
		return ErrNotParticipant
	}
	return nil
}

// ListForRequester returns the requests filed by userID, newest first.
func (s *RequestService) ListForRequester(ctx context.Context, userID string) ([]RequestView, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ListForRequester", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	rs, err := repo.ListRequestsByUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return requestViews(s.Files, rs), nil
}

// ListForOwnerPets returns the requests made for pets listed by ownerID,
// newest first.
func (s *RequestService) ListForOwnerPets(ctx context.Context, ownerID string) ([]RequestView, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ListForOwnerPets", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	rs, err := repo.ListRequestsForOwner(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	return requestViews(s.Files, rs), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
