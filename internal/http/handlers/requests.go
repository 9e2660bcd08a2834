// Adoption request HTTP handlers.
//
// This file exposes the requester side of the workflow:
//   - POST   /adoption-requests        (submit, multipart, Idempotency-Key)
//   - GET    /my-adoption-requests     (requests filed by the current user)
//   - GET    /adoption-requests/{id}   (requester or pet owner)
//   - DELETE /adoption-requests/{id}   (cancel while pending)
//
// Idempotency:
// When the client sends an Idempotency-Key and a previous submission with the
// same key created a request, the middleware marks the call as a replay and
// the handler returns that request with `Idempotency-Replayed: true`.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-pet-adoption/internal/http/middleware"
	"github.com/tbourn/go-pet-adoption/internal/services"
)

//
// DTOs
//

// AdoptionRequestForm is the multipart form of a new request. Identity
// documents travel as the "valid_id_1" and "valid_id_2" file parts.
type AdoptionRequestForm struct {
	PetID         string `form:"pet_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	Message       string `form:"message" example:"We have a fenced garden and lots of time for walks."`
	ApplicantName string `form:"applicant_name" example:"Ada Lovelace"`
	PhoneNumber   string `form:"phone_number" example:"+302101234567"`
}

// RequestsResponse wraps a list of adoption requests.
type RequestsResponse struct {
	Requests []services.RequestView `json:"requests"`
}

//
// Handlers
//

// CreateAdoptionRequest godoc
// @ID          createAdoptionRequest
// @Summary     Request to adopt or buy a pet
// @Description Files a pending request. Fails when the pet is gone, unavailable, already requested by the caller, or owned by the caller.
// @Description Identity documents may be jpeg, png or pdf up to 5 MB each.
// @Tags        Adoption requests
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header    string  false  "Key for safe retries"
// @Param       pet_id           formData  string  true   "Pet ID"
// @Param       message          formData  string  true   "Why you want this pet (20 to 5000 characters)"
// @Param       applicant_name   formData  string  false  "Applicant name"
// @Param       phone_number     formData  string  false  "Phone number"
// @Param       valid_id_1       formData  file    false  "Identity document"
// @Param       valid_id_2       formData  file    false  "Second identity document"
//
// @Success     201  {object} services.RequestView
// @Header      201  {string} Idempotency-Replayed "true when served from a previous submission"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Own pet"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     409  {object} handlers.ErrorResponse "Pet unavailable or duplicate pending request"
// @Router      /adoption-requests [post]
func (h *Handlers) CreateAdoptionRequest(c *gin.Context) {
	ctx := c.Request.Context()
	uid := actor(c)

	if rid, replay := middleware.ReplayOf(c); replay {
		if prev, err := h.requests.Get(ctx, uid, rid); err == nil {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusCreated, prev)
			return
		}
		// The recorded request is gone (cancelled); treat as a new submission.
	}

	var form AdoptionRequestForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		bindErr(c, err)
		return
	}
	doc1, close1, err := formUpload(c, "valid_id_1")
	if err != nil {
		bindErr(c, err)
		return
	}
	defer close1()
	doc2, close2, err := formUpload(c, "valid_id_2")
	if err != nil {
		bindErr(c, err)
		return
	}
	defer close2()

	r, err := h.requests.Create(ctx, uid, services.RequestInput{
		PetID:         form.PetID,
		Message:       form.Message,
		ApplicantName: form.ApplicantName,
		PhoneNumber:   form.PhoneNumber,
		ValidID1:      doc1,
		ValidID2:      doc2,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		if err := h.idem.Remember(ctx, uid, middleware.IdempotencyScope(c), key, r.ID, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, r)
}

// MyAdoptionRequests godoc
// @ID          myAdoptionRequests
// @Summary     List my adoption requests
// @Tags        Adoption requests
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.RequestsResponse
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Router      /my-adoption-requests [get]
func (h *Handlers) MyAdoptionRequests(c *gin.Context) {
	items, err := h.requests.ListForRequester(c.Request.Context(), actor(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, RequestsResponse{Requests: items})
}

// GetAdoptionRequest godoc
// @ID          getAdoptionRequest
// @Summary     Get an adoption request
// @Description Visible to the requester and to the owner of the pet.
// @Tags        Adoption requests
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string  true  "Request ID (UUID)"  format(uuid)
// @Success     200  {object} services.RequestView
// @Failure     403  {object} handlers.ErrorResponse "Not a participant"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /adoption-requests/{id} [get]
func (h *Handlers) GetAdoptionRequest(c *gin.Context) {
	r, err := h.requests.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// CancelAdoptionRequest godoc
// @ID          cancelAdoptionRequest
// @Summary     Cancel a pending adoption request
// @Description Deletes the request and its identity documents. Only the requester may cancel, and only while pending.
// @Tags        Adoption requests
// @Security    BearerAuth
// @Param       id   path  string  true  "Request ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the requester"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Already processed"
// @Router      /adoption-requests/{id} [delete]
func (h *Handlers) CancelAdoptionRequest(c *gin.Context) {
	if err := h.requests.Cancel(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	noContent(c)
}
