// Owner-side HTTP handlers.
//
// This file exposes the decisions a pet owner takes on incoming requests:
//   - GET  /my-pet-requests              (requests for the current user's pets)
//   - POST /pet-requests/{id}/approve
//   - POST /pet-requests/{id}/reject
//
// Approving a request adopts the pet, rejects every other pending request for
// it and records the adoption, all or nothing.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RejectRequestBody is the optional JSON body of a rejection.
type RejectRequestBody struct {
	OwnerNotes *string `json:"owner_notes" example:"We are looking for a home with a garden."`
}

// MyPetRequests godoc
// @ID          myPetRequests
// @Summary     List requests for my pets
// @Tags        Decisions
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.RequestsResponse
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Router      /my-pet-requests [get]
func (h *Handlers) MyPetRequests(c *gin.Context) {
	items, err := h.requests.ListForOwnerPets(c.Request.Context(), actor(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, RequestsResponse{Requests: items})
}

// ApproveRequest godoc
// @ID          approveRequest
// @Summary     Approve an adoption request
// @Description Marks the request approved and the pet adopted, rejects the other pending requests for the pet and appends the adoption history, in one transaction.
// @Tags        Decisions
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string  true  "Request ID (UUID)"  format(uuid)
// @Success     200  {object} services.Decision
// @Failure     403  {object} handlers.ErrorResponse "Not the pet owner"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Already processed or pet unavailable"
// @Router      /pet-requests/{id}/approve [post]
func (h *Handlers) ApproveRequest(c *gin.Context) {
	d, err := h.approvals.Approve(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// RejectRequest godoc
// @ID          rejectRequest
// @Summary     Reject an adoption request
// @Description Marks the request rejected with optional owner notes. The pet and other requests are untouched.
// @Tags        Decisions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string                      true   "Request ID (UUID)"  format(uuid)
// @Param       body  body  handlers.RejectRequestBody  false  "Optional notes"
// @Success     200  {object} services.Decision
// @Failure     400  {object} handlers.ErrorResponse "Malformed body or notes too long"
// @Failure     403  {object} handlers.ErrorResponse "Not the pet owner"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Failure     409  {object} handlers.ErrorResponse "Already processed"
// @Router      /pet-requests/{id}/reject [post]
func (h *Handlers) RejectRequest(c *gin.Context) {
	notes, err := readNotes(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.approvals.Reject(c.Request.Context(), actor(c), c.Param("id"), notes)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}
