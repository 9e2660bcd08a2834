package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/http/middleware"
	"github.com/tbourn/go-pet-adoption/internal/repo"
	"github.com/tbourn/go-pet-adoption/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type stubPets struct {
	create    func(ownerID string, in services.PetInput, image *services.Upload) (*services.PetView, error)
	get       func(id string) (*services.PetView, error)
	list      func(f services.PetListFilter, page, size int) ([]services.PetView, int64, error)
	listStats func(f services.PetListFilter) (int64, *time.Time, error)
	byOwner   func(ownerID string) ([]services.PetView, error)
	update    func(actorID, id string, in services.PetInput, image *services.Upload) (*services.PetView, error)
	del       func(actorID, id string) error
}

func (s *stubPets) Create(_ context.Context, ownerID string, in services.PetInput, image *services.Upload) (*services.PetView, error) {
	return s.create(ownerID, in, image)
}
func (s *stubPets) Get(_ context.Context, id string) (*services.PetView, error) { return s.get(id) }
func (s *stubPets) List(_ context.Context, f services.PetListFilter, page, size int) ([]services.PetView, int64, error) {
	return s.list(f, page, size)
}
func (s *stubPets) ListStats(_ context.Context, f services.PetListFilter) (int64, *time.Time, error) {
	return s.listStats(f)
}
func (s *stubPets) ListByOwner(_ context.Context, ownerID string) ([]services.PetView, error) {
	return s.byOwner(ownerID)
}
func (s *stubPets) Update(_ context.Context, actorID, id string, in services.PetInput, image *services.Upload) (*services.PetView, error) {
	return s.update(actorID, id, in, image)
}
func (s *stubPets) Delete(_ context.Context, actorID, id string) error { return s.del(actorID, id) }

type stubRequests struct {
	create      func(requesterID string, in services.RequestInput) (*services.RequestView, error)
	cancel      func(actorID, id string) error
	get         func(actorID, id string) (*services.RequestView, error)
	byRequester func(userID string) ([]services.RequestView, error)
	forOwner    func(ownerID string) ([]services.RequestView, error)
	authorize   func(actorID, ref string) error
}

func (s *stubRequests) Create(_ context.Context, requesterID string, in services.RequestInput) (*services.RequestView, error) {
	return s.create(requesterID, in)
}
func (s *stubRequests) Cancel(_ context.Context, actorID, id string) error { return s.cancel(actorID, id) }
func (s *stubRequests) Get(_ context.Context, actorID, id string) (*services.RequestView, error) {
	return s.get(actorID, id)
}
func (s *stubRequests) ListForRequester(_ context.Context, userID string) ([]services.RequestView, error) {
	return s.byRequester(userID)
}
func (s *stubRequests) ListForOwnerPets(_ context.Context, ownerID string) ([]services.RequestView, error) {
	return s.forOwner(ownerID)
}
func (s *stubRequests) AuthorizeDocument(_ context.Context, actorID, ref string) error {
	return s.authorize(actorID, ref)
}

type stubApprovals struct {
	approve func(actorID, id string) (*services.Decision, error)
	reject  func(actorID, id string, notes *string) (*services.Decision, error)
}

func (s *stubApprovals) Approve(_ context.Context, actorID, id string) (*services.Decision, error) {
	return s.approve(actorID, id)
}
func (s *stubApprovals) Reject(_ context.Context, actorID, id string, notes *string) (*services.Decision, error) {
	return s.reject(actorID, id, notes)
}

type stubHistory struct {
	list func(userID string) ([]services.HistoryEntry, error)
}

func (s *stubHistory) ListForUser(_ context.Context, userID string) ([]services.HistoryEntry, error) {
	return s.list(userID)
}

type stubAdmin struct {
	stats *repo.AdminStats
	err   error
}

func (s *stubAdmin) Stats(context.Context) (*repo.AdminStats, error) { return s.stats, s.err }

type remembered struct {
	userID, scope, key, resourceID string
	status                         int
}

type stubIdem struct {
	calls []remembered
	err   error
}

func (s *stubIdem) Remember(_ context.Context, userID, scope, key, resourceID string, status int) error {
	s.calls = append(s.calls, remembered{userID, scope, key, resourceID, status})
	return s.err
}

// newTestRouter mounts h the way the production router does, with dev
// identity headers and an optional idempotency lookup.
func newTestRouter(h *Handlers, lookup middleware.IdempotencyLookup) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Authenticate(nil, true), middleware.Idempotency(middleware.IdempotencyOptions{}, lookup))

	r.GET("/pets", h.ListPets)
	r.GET("/pets/:id", h.GetPet)

	authd := r.Group("/", middleware.RequireIdentity())
	authd.GET("/my-pets", h.MyPets)
	authd.POST("/pets", h.CreatePet)
	authd.PUT("/pets/:id", h.UpdatePet)
	authd.DELETE("/pets/:id", h.DeletePet)
	authd.POST("/adoption-requests", h.CreateAdoptionRequest)
	authd.GET("/adoption-requests/:id", h.GetAdoptionRequest)
	authd.DELETE("/adoption-requests/:id", h.CancelAdoptionRequest)
	authd.GET("/my-adoption-requests", h.MyAdoptionRequests)
	authd.GET("/my-pet-requests", h.MyPetRequests)
	authd.POST("/pet-requests/:id/approve", h.ApproveRequest)
	authd.POST("/pet-requests/:id/reject", h.RejectRequest)
	authd.GET("/my-adoption-history", h.MyAdoptionHistory)

	r.GET("/admin/stats", middleware.RequireAdmin(), h.AdminStats)
	return r
}

func serve(t *testing.T, r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// as marks req as sent by userID.
func as(req *http.Request, userID string) *http.Request {
	req.Header.Set(middleware.HeaderUserID, userID)
	return req
}

type part struct {
	field, filename string
	data            []byte
}

// multipartReq builds a multipart request from plain fields and file parts.
func multipartReq(t *testing.T, method, target string, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
