// Package handlers exposes the pet adoption API over HTTP.
//
// Handlers are transport-thin: they bind path, query and multipart input,
// take the acting user from the identity middleware, call the services and
// translate results and errors into responses. They never decide business
// rules themselves.
package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/http/middleware"
	"github.com/tbourn/go-pet-adoption/internal/repo"
	"github.com/tbourn/go-pet-adoption/internal/services"
	"github.com/tbourn/go-pet-adoption/internal/utils"
)

//
// Service contracts (context-aware)
//

// PetService manages pet listings.
type PetService interface {
	Create(ctx context.Context, ownerID string, in services.PetInput, image *services.Upload) (*services.PetView, error)
	Get(ctx context.Context, id string) (*services.PetView, error)
	List(ctx context.Context, f services.PetListFilter, page, pageSize int) ([]services.PetView, int64, error)
	// ListStats returns the count and newest update of the matching pets,
	// used to build the listing ETag.
	ListStats(ctx context.Context, f services.PetListFilter) (int64, *time.Time, error)
	ListByOwner(ctx context.Context, ownerID string) ([]services.PetView, error)
	Update(ctx context.Context, actorID, id string, in services.PetInput, image *services.Upload) (*services.PetView, error)
	Delete(ctx context.Context, actorID, id string) error
}

// RequestService manages adoption requests until the owner decides.
type RequestService interface {
	Create(ctx context.Context, requesterID string, in services.RequestInput) (*services.RequestView, error)
	Cancel(ctx context.Context, actorID, requestID string) error
	Get(ctx context.Context, actorID, requestID string) (*services.RequestView, error)
	ListForRequester(ctx context.Context, userID string) ([]services.RequestView, error)
	ListForOwnerPets(ctx context.Context, ownerID string) ([]services.RequestView, error)
	AuthorizeDocument(ctx context.Context, actorID, ref string) error
}

// ApprovalService applies owner decisions.
type ApprovalService interface {
	Approve(ctx context.Context, actorID, requestID string) (*services.Decision, error)
	Reject(ctx context.Context, actorID, requestID string, notes *string) (*services.Decision, error)
}

// HistoryService reads the adoption ledger.
type HistoryService interface {
	ListForUser(ctx context.Context, userID string) ([]services.HistoryEntry, error)
}

// AdminService backs monitoring.
type AdminService interface {
	Stats(ctx context.Context) (*repo.AdminStats, error)
}

// IdempotencyRecorder remembers the resource created for an
// Idempotency-Key so retries can be replayed.
type IdempotencyRecorder interface {
	Remember(ctx context.Context, userID, scope, key, resourceID string, status int) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	Pets        PetService
	Requests    RequestService
	Approvals   ApprovalService
	History     HistoryService
	Admin       AdminService
	Idempotency IdempotencyRecorder // optional
}

// Handlers groups the API endpoints.
type Handlers struct {
	pets      PetService
	requests  RequestService
	approvals ApprovalService
	history   HistoryService
	admin     AdminService
	idem      IdempotencyRecorder
}

// New constructs Handlers bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		pets:      s.Pets,
		requests:  s.Requests,
		approvals: s.Approvals,
		history:   s.History,
		admin:     s.Admin,
		idem:      s.Idempotency,
	}
}

// actor returns the acting user id. Routes that need one are mounted behind
// middleware.RequireIdentity, so an empty result only reaches public routes.
func actor(c *gin.Context) string {
	id, _ := middleware.IdentityFrom(c)
	return id.UserID
}

//
// Pagination
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPagination parses page and page_size, bounding them to sane values.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page = max(utils.AtoiDefault(c.Query("page"), defaultPage), 1)
	pageSize = min(max(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1), maxPageSize)
	return page, pageSize
}

func newPagination(page, pageSize int, total int64) Pagination {
	pages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

//
// Multipart helpers
//

var errBodyTooLarge = errors.New("request body too large")

// bindErr classifies a form binding failure: an oversized body is a 413,
// anything else a malformed request.
func bindErr(c *gin.Context, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		respondErr(c, errBodyTooLarge)
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed form body")
}

// formUpload opens the named multipart file. A missing file (or a
// non-multipart body) yields nil; the returned closer is always safe to call.
func formUpload(c *gin.Context, field string) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Upload{Filename: fh.Filename, Content: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

// readNotes reads the optional {"owner_notes": "..."} JSON body of a
// rejection. An empty body means no notes.
func readNotes(c *gin.Context) (*string, error) {
	var body RejectRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return body.OwnerNotes, nil
}
