// History and monitoring HTTP handlers.
//
//   - GET /my-adoption-history   (adoptions the current user took part in)
//   - GET /admin/stats           (admin role only)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pet-adoption/internal/services"
)

// HistoryResponse wraps the caller's adoption history.
type HistoryResponse struct {
	History []services.HistoryEntry `json:"history"`
}

// MyAdoptionHistory godoc
// @ID          myAdoptionHistory
// @Summary     List my adoption history
// @Description Adoptions where the caller was the adopter or the original owner, most recent first. Each entry carries the caller's role.
// @Tags        History
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.HistoryResponse
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Router      /my-adoption-history [get]
func (h *Handlers) MyAdoptionHistory(c *gin.Context) {
	items, err := h.history.ListForUser(c.Request.Context(), actor(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, HistoryResponse{History: items})
}

// AdminStats godoc
// @ID          adminStats
// @Summary     Marketplace statistics
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} repo.AdminStats
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Failure     403  {object} handlers.ErrorResponse "Admin role required"
// @Router      /admin/stats [get]
func (h *Handlers) AdminStats(c *gin.Context) {
	st, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}
