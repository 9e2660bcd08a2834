package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/repo"
)

type workflow struct {
	requests  *RequestService
	approvals *ApprovalService
	files     *failingDeletes
}

func newWorkflow(t *testing.T) (*workflow, func() time.Time) {
	t.Helper()
	db := newTestDB(t)
	files := &failingDeletes{LocalStore: newFiles()}
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return &workflow{
		requests:  &RequestService{DB: db, Files: files},
		approvals: &ApprovalService{DB: db, Files: files, Now: clock},
		files:     files,
	}, clock
}

func TestApprove_RejectsSiblingsAndRecordsHistory(t *testing.T) {
	w, clock := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	a := seedPending(t, w.requests, "U2", pet.ID)
	b := seedPending(t, w.requests, "U3", pet.ID)
	otherPet := seedPet(t, db, "U1")
	unrelated := seedPending(t, w.requests, "U3", otherPet.ID)

	d, err := w.approvals.Approve(ctx, "U1", a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestApproved, d.Request.Status)
	require.Equal(t, "U1", *d.Request.ReviewedBy)
	require.Equal(t, domain.PetAdopted, d.Request.Pet.Status)
	require.EqualValues(t, 1, d.SiblingsRejected)

	require.Equal(t, domain.RequestApproved, reload(t, db, a.ID).Status)
	rb := reload(t, db, b.ID)
	require.Equal(t, domain.RequestRejected, rb.Status)
	require.Equal(t, "U1", *rb.ReviewedBy)
	require.True(t, rb.ReviewedAt.Equal(clock()))
	require.Equal(t, domain.PetAdopted, reloadPet(t, db, pet.ID).Status)
	require.Equal(t, domain.RequestPending, reload(t, db, unrelated.ID).Status)

	h := historyFor(t, db, a.ID)
	require.NotNil(t, h)
	require.Equal(t, pet.ID, h.PetID)
	require.Equal(t, "U2", h.UserID)
	require.Equal(t, d.History.ID, h.ID)
	require.True(t, h.AdoptionDate.Equal(clock()))
	require.True(t, strings.Contains(h.Notes, "U1"))

	var n int64
	require.NoError(t, db.Model(&domain.AdoptionHistory{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestApprove_Preconditions(t *testing.T) {
	w, _ := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	a := seedPending(t, w.requests, "U2", pet.ID)
	b := seedPending(t, w.requests, "U3", pet.ID)

	_, err := w.approvals.Approve(ctx, "U1", "missing")
	require.ErrorIs(t, err, ErrRequestNotFound)

	// The requester of a sibling is not the owner.
	_, err = w.approvals.Approve(ctx, "U3", b.ID)
	require.ErrorIs(t, err, ErrNotPetOwner)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = w.approvals.Approve(ctx, "", b.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, domain.RequestPending, reload(t, db, b.ID).Status)

	_, err = w.approvals.Approve(ctx, "U1", a.ID)
	require.NoError(t, err)

	// Terminal states never move again.
	for requester, id := range map[string]string{"U2": a.ID, "U3": b.ID} {
		_, err = w.approvals.Approve(ctx, "U1", id)
		require.ErrorIs(t, err, ErrAlreadyProcessed)
		_, err = w.approvals.Reject(ctx, "U1", id, nil)
		require.ErrorIs(t, err, ErrAlreadyProcessed)
		require.ErrorIs(t, w.requests.Cancel(ctx, requester, id), ErrConflict)
	}
	require.Equal(t, domain.RequestApproved, reload(t, db, a.ID).Status)
	require.Equal(t, domain.RequestRejected, reload(t, db, b.ID).Status)

	// A new request on an adopted pet is refused.
	_, err = w.requests.Create(ctx, "U4", RequestInput{PetID: pet.ID, Message: goodMessage})
	require.ErrorIs(t, err, ErrPetUnavailable)
}

func TestApprove_PetAlreadyAdoptedRollsBack(t *testing.T) {
	w, _ := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	a := seedPending(t, w.requests, "U2", pet.ID)
	// Simulate a pet adopted outside this request's lifecycle.
	require.NoError(t, db.Model(&domain.Pet{}).Where("id = ?", pet.ID).Update("status", domain.PetAdopted).Error)

	_, err := w.approvals.Approve(ctx, "U1", a.ID)
	require.ErrorIs(t, err, ErrPetUnavailable)
	require.Equal(t, domain.RequestPending, reload(t, db, a.ID).Status, "approval rolled back")

	require.Nil(t, historyFor(t, db, a.ID))
}

func TestReject_LeavesPetAndSiblings(t *testing.T) {
	w, clock := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	a := seedPending(t, w.requests, "U2", pet.ID)
	b := seedPending(t, w.requests, "U3", pet.ID)

	_, err := w.approvals.Reject(ctx, "U3", a.ID, nil)
	require.ErrorIs(t, err, ErrNotPetOwner)

	long := strings.Repeat("x", MaxOwnerNotes+1)
	_, err = w.approvals.Reject(ctx, "U1", a.ID, &long)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, []string{"owner_notes"}, fieldNames(err))
	require.Equal(t, domain.RequestPending, reload(t, db, a.ID).Status)

	notes := "  Not a good fit for a flat.  "
	d, err := w.approvals.Reject(ctx, "U1", a.ID, &notes)
	require.NoError(t, err)
	require.Equal(t, domain.RequestRejected, d.Request.Status)
	require.Nil(t, d.History)
	require.Zero(t, d.SiblingsRejected)

	ra := reload(t, db, a.ID)
	require.Equal(t, "Not a good fit for a flat.", *ra.OwnerNotes)
	require.True(t, ra.ReviewedAt.Equal(clock()))
	require.Equal(t, domain.RequestPending, reload(t, db, b.ID).Status)
	require.Equal(t, domain.PetAvailable, reloadPet(t, db, pet.ID).Status)

	blank := "   "
	d, err = w.approvals.Reject(ctx, "U1", b.ID, &blank)
	require.NoError(t, err)
	require.Nil(t, reload(t, db, b.ID).OwnerNotes)
	require.Nil(t, d.Request.OwnerNotes)

	// Oversized notes never mask a failed precondition.
	_, err = w.approvals.Reject(ctx, "U1", "missing", &long)
	require.ErrorIs(t, err, ErrRequestNotFound)
	_, err = w.approvals.Reject(ctx, "U1", a.ID, &long)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	c := seedPending(t, w.requests, "U4", pet.ID)
	_, err = w.approvals.Reject(ctx, "U3", c.ID, &long)
	require.ErrorIs(t, err, ErrNotPetOwner)

	// A rejected requester may try again.
	again := seedPending(t, w.requests, "U2", pet.ID)
	require.Equal(t, domain.RequestPending, again.Status)
}

func TestCancel_RemovesRecordAndTriesFiles(t *testing.T) {
	w, _ := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	a, err := w.requests.Create(ctx, "U2", RequestInput{
		PetID: pet.ID, Message: goodMessage,
		ValidID1: upload("a.png", pngBytes), ValidID2: upload("b.pdf", pdfBytes),
	})
	require.NoError(t, err)

	require.NoError(t, w.requests.Cancel(ctx, "U2", a.ID))
	_, err = repo.GetRequest(ctx, db, a.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.ElementsMatch(t, []string{*a.ValidID1, *a.ValidID2}, w.files.tried)
}

// Whatever the number of pending requests and the one picked, approval
// leaves exactly one approved request, the rest rejected and one history row.
func TestApprove_SingleWinnerProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "requests")
		pick := rapid.IntRange(0, n-1).Draw(rt, "pick")

		db, err := openDB("prop")
		if err != nil {
			rt.Fatalf("open db: %v", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		ctx := context.Background()
		reqs := &RequestService{DB: db}
		approvals := &ApprovalService{DB: db}

		pet := &domain.Pet{UserID: "owner", Name: "Rex", Category: domain.CategoryDog, ListingType: domain.ListingAdopt}
		if err := repo.CreatePet(ctx, db, pet); err != nil {
			rt.Fatalf("seed pet: %v", err)
		}
		ids := make([]string, n)
		for i := range ids {
			v, err := reqs.Create(ctx, "user-"+string(rune('a'+i)), RequestInput{PetID: pet.ID, Message: goodMessage})
			if err != nil {
				rt.Fatalf("create request %d: %v", i, err)
			}
			ids[i] = v.ID
		}

		d, err := approvals.Approve(ctx, "owner", ids[pick])
		if err != nil {
			rt.Fatalf("approve: %v", err)
		}
		if d.SiblingsRejected != int64(n-1) {
			rt.Fatalf("siblings rejected = %d, want %d", d.SiblingsRejected, n-1)
		}

		counts := map[domain.RequestStatus]int{}
		for _, id := range ids {
			r, err := repo.GetRequest(ctx, db, id)
			if err != nil {
				rt.Fatalf("reload: %v", err)
			}
			counts[r.Status]++
		}
		if counts[domain.RequestApproved] != 1 || counts[domain.RequestRejected] != n-1 || counts[domain.RequestPending] != 0 {
			rt.Fatalf("unexpected statuses %v", counts)
		}

		var hist int64
		if err := db.Model(&domain.AdoptionHistory{}).Where("pet_id = ?", pet.ID).Count(&hist).Error; err != nil {
			rt.Fatalf("count history: %v", err)
		}
		if hist != 1 {
			rt.Fatalf("history rows = %d, want 1", hist)
		}
	})
}

func TestApprove_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	w, _ := newWorkflow(t)
	db := w.approvals.DB
	ctx := context.Background()

	pet := seedPet(t, db, "U1")
	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = seedPending(t, w.requests, "user-"+string(rune('a'+i)), pet.ID).ID
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := w.approvals.Approve(ctx, "U1", id)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}(id)
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	for _, err := range errs {
		require.ErrorIs(t, err, ErrConflict)
	}

	var hist int64
	require.NoError(t, db.Model(&domain.AdoptionHistory{}).Count(&hist).Error)
	require.EqualValues(t, 1, hist)
	require.Equal(t, domain.PetAdopted, reloadPet(t, db, pet.ID).Status)
}
