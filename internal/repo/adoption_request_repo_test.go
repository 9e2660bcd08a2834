package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-pet-adoption/internal/domain"
)

func TestCreateRequest_PendingAndPartialUniqueIndex(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")

	r := seedRequest(t, db, "u2", p.ID)
	if r.ID == "" || r.Status != domain.RequestPending {
		t.Fatalf("unexpected request: %+v", r)
	}

	pending, err := HasPendingRequest(ctx, db, "u2", p.ID)
	if err != nil || !pending {
		t.Fatalf("HasPendingRequest = (%v, %v); want true", pending, err)
	}

	// Second pending row for the same (user, pet) is refused by the index.
	dup := &domain.AdoptionRequest{UserID: "u2", PetID: p.ID, Message: "again and again and again"}
	if err := CreateRequest(ctx, db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Once resolved, a fresh pending request is allowed.
	if err := TransitionRequest(ctx, db, r.ID, Transition{To: domain.RequestRejected, ReviewedBy: "owner", ReviewedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	again := &domain.AdoptionRequest{UserID: "u2", PetID: p.ID, Message: "second attempt after rejection"}
	if err := CreateRequest(ctx, db, again); err != nil {
		t.Fatalf("expected new pending request after rejection, got %v", err)
	}
}

func TestCreateRequest_UnknownPetViolatesFK(t *testing.T) {
	db := newTestDB(t, true)
	r := &domain.AdoptionRequest{UserID: "u2", PetID: "missing", Message: "hello there, I would love this pet"}
	if err := CreateRequest(context.Background(), db, r); err == nil {
		t.Fatalf("expected FK violation")
	}
}

func TestGetRequest_PreloadsPet_AndForUpdate(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")
	r := seedRequest(t, db, "u2", p.ID)

	got, err := GetRequest(ctx, db, r.ID)
	if err != nil || got.Pet.ID != p.ID || got.Pet.UserID != "owner" {
		t.Fatalf("GetRequest = (%+v, %v)", got, err)
	}
	if _, err := GetRequest(ctx, db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		locked, err := GetRequestForUpdate(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		if locked.Status != domain.RequestPending {
			t.Fatalf("unexpected status %q", locked.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GetRequestForUpdate: %v", err)
	}
}

func TestListRequests_ByUserAndForOwner(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	mine := seedPet(t, db, "owner")
	other := seedPet(t, db, "someone")
	seedRequest(t, db, "u2", mine.ID)
	seedRequest(t, db, "u3", mine.ID)
	seedRequest(t, db, "u2", other.ID)

	byUser, err := ListRequestsByUser(ctx, db, "u2")
	if err != nil || len(byUser) != 2 {
		t.Fatalf("ListRequestsByUser = (%d, %v); want 2", len(byUser), err)
	}
	for _, r := range byUser {
		if r.Pet.ID != r.PetID {
			t.Fatalf("pet not preloaded: %+v", r)
		}
	}

	forOwner, err := ListRequestsForOwner(ctx, db, "owner")
	if err != nil || len(forOwner) != 2 {
		t.Fatalf("ListRequestsForOwner = (%d, %v); want 2", len(forOwner), err)
	}
	for _, r := range forOwner {
		if r.PetID != mine.ID || r.Pet.UserID != "owner" {
			t.Fatalf("unexpected request for owner: %+v", r)
		}
	}
}

func TestTransitionRequest_GuardedAndNotes(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")
	r := seedRequest(t, db, "u2", p.ID)

	notes := "not a good fit"
	at := time.Now().UTC()
	if err := TransitionRequest(ctx, db, r.ID, Transition{To: domain.RequestRejected, ReviewedBy: "owner", ReviewedAt: at, OwnerNotes: &notes}); err != nil {
		t.Fatalf("TransitionRequest: %v", err)
	}
	got, _ := GetRequest(ctx, db, r.ID)
	if got.Status != domain.RequestRejected || got.OwnerNotes == nil || *got.OwnerNotes != notes ||
		got.ReviewedBy == nil || *got.ReviewedBy != "owner" || got.ReviewedAt == nil {
		t.Fatalf("unexpected row after transition: %+v", got)
	}

	err := TransitionRequest(ctx, db, r.ID, Transition{To: domain.RequestApproved, ReviewedBy: "owner", ReviewedAt: at})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for terminal request, got %v", err)
	}
}

func TestRejectPendingSiblings(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")
	other := seedPet(t, db, "owner")

	winner := seedRequest(t, db, "u2", p.ID)
	s1 := seedRequest(t, db, "u3", p.ID)
	s2 := seedRequest(t, db, "u4", p.ID)
	elsewhere := seedRequest(t, db, "u3", other.ID)

	n, err := RejectPendingSiblings(ctx, db, p.ID, winner.ID, "owner", time.Now().UTC())
	if err != nil || n != 2 {
		t.Fatalf("RejectPendingSiblings = (%d, %v); want 2", n, err)
	}
	for id, want := range map[string]domain.RequestStatus{
		winner.ID:    domain.RequestPending,
		s1.ID:        domain.RequestRejected,
		s2.ID:        domain.RequestRejected,
		elsewhere.ID: domain.RequestPending,
	} {
		got, _ := GetRequest(ctx, db, id)
		if got.Status != want {
			t.Fatalf("request %s status = %q; want %q", id, got.Status, want)
		}
	}
}

func TestDeletePendingRequest_Guarded(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")

	r := seedRequest(t, db, "u2", p.ID)
	if err := DeletePendingRequest(ctx, db, r.ID); err != nil {
		t.Fatalf("DeletePendingRequest: %v", err)
	}
	if _, err := GetRequest(ctx, db, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted, got %v", err)
	}

	done := seedRequest(t, db, "u3", p.ID)
	if err := TransitionRequest(ctx, db, done.ID, Transition{To: domain.RequestApproved, ReviewedBy: "owner", ReviewedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := DeletePendingRequest(ctx, db, done.ID); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}

func TestGetRequestByDocument(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	p := seedPet(t, db, "owner")

	front, back := "valid_ids/front.pdf", "valid_ids/back.png"
	r := &domain.AdoptionRequest{UserID: "u2", PetID: p.ID, Message: "I have a big garden and lots of time.", ValidID1: &front, ValidID2: &back}
	if err := CreateRequest(ctx, db, r); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	seedRequest(t, db, "u3", p.ID)

	for _, ref := range []string{front, back} {
		got, err := GetRequestByDocument(ctx, db, ref)
		if err != nil || got.ID != r.ID || got.Pet.UserID != "owner" {
			t.Fatalf("GetRequestByDocument(%q) = (%+v, %v)", ref, got, err)
		}
	}
	if _, err := GetRequestByDocument(ctx, db, "valid_ids/unknown.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
