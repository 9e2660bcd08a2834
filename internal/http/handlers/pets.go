// Pet HTTP handlers.
//
// This file exposes the pet registry:
//   - GET    /pets          (public listing, paginated, ETag support)
//   - GET    /pets/{id}     (public)
//   - GET    /my-pets       (listings of the current user)
//   - POST   /pets          (create, multipart with optional image)
//   - PUT    /pets/{id}     (owner edit, multipart with optional image)
//   - DELETE /pets/{id}     (owner delete)
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-pet-adoption/internal/domain"
	"github.com/tbourn/go-pet-adoption/internal/services"
)

//
// DTOs
//

// PetForm is the multipart form of a pet listing. The image travels as the
// "image" file part.
type PetForm struct {
	Name            string `form:"pet_name" example:"Rex"`
	Category        string `form:"category" example:"dog"`
	Breed           string `form:"breed" example:"golden retriever"`
	Age             string `form:"age" example:"3"`
	Gender          string `form:"gender" example:"male"`
	Color           string `form:"color" example:"golden"`
	Description     string `form:"description"`
	Allergies       string `form:"allergies"`
	Medications     string `form:"medications"`
	FoodPreferences string `form:"food_preferences"`
	ListingType     string `form:"listing_type" example:"sell"`
	Price           string `form:"price" example:"150.00"`
}

// ListPetsResponse wraps a page of pets and pagination information.
type ListPetsResponse struct {
	Pets       []services.PetView `json:"pets"`
	Pagination Pagination         `json:"pagination"`
}

// PetsResponse wraps an unpaginated list of pets.
type PetsResponse struct {
	Pets []services.PetView `json:"pets"`
}

// input converts the form into service input. Numbers that do not parse are
// reported as field errors.
func (f PetForm) input() (services.PetInput, []services.FieldError) {
	in := services.PetInput{
		Name:            f.Name,
		Category:        domain.Category(f.Category),
		Breed:           f.Breed,
		Gender:          f.Gender,
		Color:           f.Color,
		Description:     f.Description,
		Allergies:       f.Allergies,
		Medications:     f.Medications,
		FoodPreferences: f.FoodPreferences,
		ListingType:     domain.ListingType(f.ListingType),
	}
	var fields []services.FieldError
	if s := strings.TrimSpace(f.Age); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fields = append(fields, services.FieldError{Field: "age", Message: "age must be an integer"})
		} else {
			in.Age = &n
		}
	}
	if s := strings.TrimSpace(f.Price); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			fields = append(fields, services.FieldError{Field: "price", Message: "price must be a number"})
		} else {
			in.Price = &d
		}
	}
	return in, fields
}

// bindPet reads the listing form and image. It writes the error response
// and returns ok=false when the request cannot proceed.
func bindPet(c *gin.Context) (in services.PetInput, image *services.Upload, done func(), bound bool) {
	var form PetForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		bindErr(c, err)
		return in, nil, nil, false
	}
	in, fields := form.input()
	if len(fields) > 0 {
		fail(c, http.StatusBadRequest, ErrCodeValidation, services.ErrValidation.Error(), fields...)
		return in, nil, nil, false
	}
	image, done, err := formUpload(c, "image")
	if err != nil {
		bindErr(c, err)
		return in, nil, nil, false
	}
	return in, image, done, true
}

//
// Handlers
//

// ListPets godoc
// @ID          listPets
// @Summary     List pets (paginated)
// @Description Public listing, newest first. Shows available pets unless status is given ("all" disables the filter). Supports weak ETag via If-None-Match.
// @Tags        Pets
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       status         query   string  false "available, adopted or all"  default(available)
// @Param       category       query   string  false "dog or cat"
// @Param       listing_type   query   string  false "adopt or sell"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListPetsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Invalid filter"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	ctx := c.Request.Context()
	f := services.PetListFilter{
		Status:      c.Query("status"),
		Category:    c.Query("category"),
		ListingType: c.Query("listing_type"),
	}
	page, pageSize := clampPagination(c)

	count, maxTS, err := h.pets.ListStats(ctx, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"pets:%s:%s:%s:%d:%d:%d:%d"`, f.Status, f.Category, f.ListingType, page, pageSize, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}

	items, total, err := h.pets.List(ctx, f, page, pageSize)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListPetsResponse{Pets: items, Pagination: newPagination(page, pageSize, total)})
}

// GetPet godoc
// @ID          getPet
// @Summary     Get a pet
// @Tags        Pets
// @Produce     json
// @Param       id   path  string  true  "Pet ID (UUID)"  format(uuid)
// @Success     200  {object} services.PetView
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Router      /pets/{id} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	p, err := h.pets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// MyPets godoc
// @ID          myPets
// @Summary     List my pets
// @Description Every listing created by the current user, whatever its status.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} handlers.PetsResponse
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Router      /my-pets [get]
func (h *Handlers) MyPets(c *gin.Context) {
	items, err := h.pets.ListByOwner(c.Request.Context(), actor(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, PetsResponse{Pets: items})
}

// CreatePet godoc
// @ID          createPet
// @Summary     List a pet for adoption or sale
// @Description price is required for listing_type=sell and ignored for adopt. The image may be jpeg, png or gif up to 2 MB.
// @Tags        Pets
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
//
// @Param       pet_name          formData  string  true   "Name"
// @Param       category          formData  string  true   "dog or cat"
// @Param       listing_type      formData  string  true   "adopt or sell"
// @Param       price             formData  number  false  "Required when selling"
// @Param       breed             formData  string  false  "Breed"
// @Param       age               formData  int     false  "Age in years"
// @Param       gender            formData  string  false  "male or female"
// @Param       color             formData  string  false  "Color"
// @Param       description       formData  string  false  "Description"
// @Param       allergies         formData  string  false  "Allergies"
// @Param       medications       formData  string  false  "Medications"
// @Param       food_preferences  formData  string  false  "Food preferences"
// @Param       image             formData  file    false  "Photo"
//
// @Success     201  {object} services.PetView
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Not authenticated"
// @Failure     413  {object} handlers.ErrorResponse "Body too large"
// @Router      /pets [post]
func (h *Handlers) CreatePet(c *gin.Context) {
	in, image, done, bound := bindPet(c)
	if !bound {
		return
	}
	defer done()

	p, err := h.pets.Create(c.Request.Context(), actor(c), in, image)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// UpdatePet godoc
// @ID          updatePet
// @Summary     Edit a pet listing
// @Description Only the owner may edit. Status is not editable. A new image replaces the old one.
// @Tags        Pets
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       id                path      string  true   "Pet ID (UUID)"  format(uuid)
// @Param       pet_name          formData  string  true   "Name"
// @Param       category          formData  string  true   "dog or cat"
// @Param       listing_type      formData  string  true   "adopt or sell"
// @Param       price             formData  number  false  "Required when selling"
// @Param       image             formData  file    false  "Photo"
// @Success     200  {object} services.PetView
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Router      /pets/{id} [put]
func (h *Handlers) UpdatePet(c *gin.Context) {
	in, image, done, bound := bindPet(c)
	if !bound {
		return
	}
	defer done()

	p, err := h.pets.Update(c.Request.Context(), actor(c), c.Param("id"), in, image)
	if err != nil {
		respondErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePet godoc
// @ID          deletePet
// @Summary     Delete a pet listing
// @Description Only the owner may delete, and adopted pets stay for the history ledger. Pending requests for the pet are removed with it.
// @Tags        Pets
// @Security    BearerAuth
// @Param       id   path  string  true  "Pet ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Pet not found"
// @Failure     409  {object} handlers.ErrorResponse "Pet already adopted"
// @Router      /pets/{id} [delete]
func (h *Handlers) DeletePet(c *gin.Context) {
	if err := h.pets.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	noContent(c)
}
