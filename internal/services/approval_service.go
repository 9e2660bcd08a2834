// Package services – ApprovalService
//
// This file implements the approval workflow, the state machine that moves a
// pending adoption request to approved or rejected:
//
//	pending ──approve──▶ approved   (terminal)
//	pending ──reject───▶ rejected   (terminal)
//
// Approve is one database transaction that approves the request, marks the
// pet adopted, rejects every other pending request for the pet and appends
// the history record. Rows are read with SELECT ... FOR UPDATE and every
// write is guarded on the expected status, so when two owners' clicks race
// the loser sees a processed request or an adopted pet and gets a conflict.
// Any failure rolls the whole unit back.
//
// Authorisation is a single predicate, authorizeOwner: only the owner of the
// requested pet decides, whatever their role.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
)

// MaxOwnerNotes caps the notes an owner can attach to a rejection.
const MaxOwnerNotes = 5000

// Decision is the outcome of an owner's decision on a request.
type Decision struct {
	Request          RequestView             `json:"request"`
	History          *domain.AdoptionHistory `json:"history,omitempty"`
	SiblingsRejected int64                   `json:"siblings_rejected"`
}

// ApprovalService applies owner decisions to adoption requests.
type ApprovalService struct {
	DB    *gorm.DB
	Files FileStore

	// Now is the clock; nil means time.Now in UTC.
	Now func() time.Time
}

// Approve approves requestID on behalf of actorID.
//
// Steps, all in one transaction:
//  1. lock the request (ErrRequestNotFound);
//  2. require pending (ErrAlreadyProcessed);
//  3. lock the pet and require actorID to own it (ErrNotPetOwner);
//  4. approve the request, stamping reviewer and time;
//  5. move the pet from available to adopted (ErrPetUnavailable);
//  6. reject all other pending requests for the pet;
//  7. append the adoption history record.
func (s *ApprovalService) Approve(ctx context.Context, actorID, requestID string) (*Decision, error) {
	tr := otel.Tracer("services/ApprovalService")
	ctx, span := tr.Start(ctx, "Approve",
		trace.WithAttributes(
			attribute.String("user.id", actorID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	now := s.now()
	var (
		req      *domain.AdoptionRequest
		history  *domain.AdoptionHistory
		siblings int64
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, pet, err := s.loadPending(ctx, tx, actorID, requestID)
		if err != nil {
			return err
		}

		if err := repo.TransitionRequest(ctx, tx, r.ID, repo.Transition{
			To:         domain.RequestApproved,
			ReviewedBy: actorID,
			ReviewedAt: now,
		}); err != nil {
			return guardErr(err, ErrAlreadyProcessed)
		}
		if err := repo.SetPetStatus(ctx, tx, pet.ID, domain.PetAvailable, domain.PetAdopted); err != nil {
			return guardErr(err, ErrPetUnavailable)
		}
		if siblings, err = repo.RejectPendingSiblings(ctx, tx, pet.ID, r.ID, actorID, now); err != nil {
			return fmt.Errorf("reject siblings: %w", err)
		}

		h := &domain.AdoptionHistory{
			UserID:            r.UserID,
			PetID:             pet.ID,
			AdoptionRequestID: r.ID,
			AdoptionDate:      now,
			Notes:             "Approved by pet owner " + actorID,
			CreatedAt:         now,
		}
		if err := repo.AppendHistory(ctx, tx, h); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrAlreadyProcessed
			}
			return fmt.Errorf("append history: %w", err)
		}

		r.Status = domain.RequestApproved
		r.ReviewedBy = &actorID
		r.ReviewedAt = &now
		r.UpdatedAt = now
		pet.Status = domain.PetAdopted
		pet.UpdatedAt = now
		r.Pet = *pet
		req, history = r, h
		return nil
	})
	if err != nil {
		s.fail(span, "approve", err)
		return nil, err
	}

	decisionsTotal.WithLabelValues("approved").Inc()
	siblingsRejected.Add(float64(siblings))
	span.SetAttributes(attribute.Int64("siblings_rejected", siblings))
	return &Decision{Request: requestView(s.Files, *req), History: history, SiblingsRejected: siblings}, nil
}

// Reject rejects requestID on behalf of actorID with optional notes. The pet
// and the other requests for it are left alone.
func (s *ApprovalService) Reject(ctx context.Context, actorID, requestID string, notes *string) (*Decision, error) {
	tr := otel.Tracer("services/ApprovalService")
	ctx, span := tr.Start(ctx, "Reject",
		trace.WithAttributes(
			attribute.String("user.id", actorID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// Notes are checked up front but reported after the preconditions.
	verr := &ValidationError{}
	if notes != nil {
		n := strings.TrimSpace(*notes)
		notes = optional(n)
		if len([]rune(n)) > MaxOwnerNotes {
			verr.add("owner_notes", fmt.Sprintf("owner_notes must be at most %d characters long", MaxOwnerNotes))
		}
	}

	now := s.now()
	var req *domain.AdoptionRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, pet, err := s.loadPending(ctx, tx, actorID, requestID)
		if err != nil {
			return err
		}
		if err := verr.orNil(); err != nil {
			return err
		}
		if err := repo.TransitionRequest(ctx, tx, r.ID, repo.Transition{
			To:         domain.RequestRejected,
			ReviewedBy: actorID,
			ReviewedAt: now,
			OwnerNotes: notes,
		}); err != nil {
			return guardErr(err, ErrAlreadyProcessed)
		}
		r.Status = domain.RequestRejected
		r.ReviewedBy = &actorID
		r.ReviewedAt = &now
		r.UpdatedAt = now
		if notes != nil {
			r.OwnerNotes = notes
		}
		r.Pet = *pet
		req = r
		return nil
	})
	if err != nil {
		s.fail(span, "reject", err)
		return nil, err
	}

	decisionsTotal.WithLabelValues("rejected").Inc()
	return &Decision{Request: requestView(s.Files, *req)}, nil
}

// loadPending locks the request and its pet and runs the shared
// preconditions in order: exists, pending, actor owns the pet.
func (s *ApprovalService) loadPending(ctx context.Context, tx *gorm.DB, actorID, requestID string) (*domain.AdoptionRequest, *domain.Pet, error) {
	r, err := repo.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrRequestNotFound)
	}
	if r.Status != domain.RequestPending {
		return nil, nil, ErrAlreadyProcessed
	}
	pet, err := repo.GetPetForUpdate(ctx, tx, r.PetID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrPetNotFound)
	}
	if err := authorizeOwner(pet, actorID); err != nil {
		return nil, nil, err
	}
	return r, pet, nil
}

// authorizeOwner is the only authorisation rule of the workflow: the acting
// user must own the pet the request is for.
func authorizeOwner(pet *domain.Pet, actorID string) error {
	if actorID == "" || pet.UserID != actorID {
		return ErrNotPetOwner
	}
	return nil
}

// guardErr maps a lost status guard to the given conflict.
func guardErr(err, conflict error) error {
	if errors.Is(err, repo.ErrStale) {
		return conflict
	}
	return err
}

func (s *ApprovalService) fail(span trace.Span, op string, err error) {
	countConflict(op, err)
	if Kind(err) == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
	}
}

func (s *ApprovalService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
