// Package docs holds the OpenAPI document served at /swagger. It mirrors the
// swag annotations on cmd/petadopt and the HTTP handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/pets": {
            "get": {
                "description": "Public listing, newest first. Shows available pets unless status is given (\"all\" disables the filter). Supports weak ETag via If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Pets"],
                "summary": "List pets (paginated)",
                "operationId": "listPets",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"type": "string", "default": "available", "description": "available, adopted or all", "name": "status", "in": "query"},
                    {"type": "string", "description": "dog or cat", "name": "category", "in": "query"},
                    {"type": "string", "description": "adopt or sell", "name": "listing_type", "in": "query"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListPetsResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "price is required for listing_type=sell and ignored for adopt. The image may be jpeg, png or gif up to 2 MB.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Pets"],
                "summary": "List a pet for adoption or sale",
                "operationId": "createPet",
                "parameters": [
                    {"type": "string", "description": "Name", "name": "pet_name", "in": "formData", "required": true},
                    {"type": "string", "description": "dog or cat", "name": "category", "in": "formData", "required": true},
                    {"type": "string", "description": "adopt or sell", "name": "listing_type", "in": "formData", "required": true},
                    {"type": "number", "description": "Required when selling", "name": "price", "in": "formData"},
                    {"type": "string", "description": "Breed", "name": "breed", "in": "formData"},
                    {"type": "integer", "description": "Age in years", "name": "age", "in": "formData"},
                    {"type": "string", "description": "male or female", "name": "gender", "in": "formData"},
                    {"type": "string", "description": "Color", "name": "color", "in": "formData"},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Allergies", "name": "allergies", "in": "formData"},
                    {"type": "string", "description": "Medications", "name": "medications", "in": "formData"},
                    {"type": "string", "description": "Food preferences", "name": "food_preferences", "in": "formData"},
                    {"type": "file", "description": "Photo", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.PetView"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Body too large", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/pets/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Pets"],
                "summary": "Get a pet",
                "operationId": "getPet",
                "parameters": [{"type": "string", "format": "uuid", "description": "Pet ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.PetView"}},
                    "404": {"description": "Pet not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Only the owner may edit. Status is not editable. A new image replaces the old one.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Pets"],
                "summary": "Edit a pet listing",
                "operationId": "updatePet",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Pet ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Name", "name": "pet_name", "in": "formData", "required": true},
                    {"type": "string", "description": "dog or cat", "name": "category", "in": "formData", "required": true},
                    {"type": "string", "description": "adopt or sell", "name": "listing_type", "in": "formData", "required": true},
                    {"type": "number", "description": "Required when selling", "name": "price", "in": "formData"},
                    {"type": "file", "description": "Photo", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.PetView"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Pet not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Only the owner may delete, and adopted pets stay for the history ledger. Pending requests for the pet are removed with it.",
                "tags": ["Pets"],
                "summary": "Delete a pet listing",
                "operationId": "deletePet",
                "parameters": [{"type": "string", "format": "uuid", "description": "Pet ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Pet not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Pet already adopted", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/my-pets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Every listing created by the current user, whatever its status.",
                "produces": ["application/json"],
                "tags": ["Pets"],
                "summary": "List my pets",
                "operationId": "myPets",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.PetsResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/adoption-requests": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Files a pending request. Fails when the pet is gone, unavailable, already requested by the caller, or owned by the caller.\nIdentity documents may be jpeg, png or pdf up to 5 MB each.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Adoption requests"],
                "summary": "Request to adopt or buy a pet",
                "operationId": "createAdoptionRequest",
                "parameters": [
                    {"type": "string", "description": "Key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Pet ID", "name": "pet_id", "in": "formData", "required": true},
                    {"type": "string", "description": "Why you want this pet (20 to 5000 characters)", "name": "message", "in": "formData", "required": true},
                    {"type": "string", "description": "Applicant name", "name": "applicant_name", "in": "formData"},
                    {"type": "string", "description": "Phone number", "name": "phone_number", "in": "formData"},
                    {"type": "file", "description": "Identity document", "name": "valid_id_1", "in": "formData"},
                    {"type": "file", "description": "Second identity document", "name": "valid_id_2", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.RequestView"}, "headers": {"Idempotency-Replayed": {"type": "string", "description": "true when served from a previous submission"}}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Own pet", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Pet not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Pet unavailable or duplicate pending request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/adoption-requests/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Visible to the requester and to the owner of the pet.",
                "produces": ["application/json"],
                "tags": ["Adoption requests"],
                "summary": "Get an adoption request",
                "operationId": "getAdoptionRequest",
                "parameters": [{"type": "string", "format": "uuid", "description": "Request ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.RequestView"}},
                    "403": {"description": "Not a participant", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes the request and its identity documents. Only the requester may cancel, and only while pending.",
                "tags": ["Adoption requests"],
                "summary": "Cancel a pending adoption request",
                "operationId": "cancelAdoptionRequest",
                "parameters": [{"type": "string", "format": "uuid", "description": "Request ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "403": {"description": "Not the requester", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/my-adoption-requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Adoption requests"],
                "summary": "List my adoption requests",
                "operationId": "myAdoptionRequests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RequestsResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/my-pet-requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Decisions"],
                "summary": "List requests for my pets",
                "operationId": "myPetRequests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RequestsResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/pet-requests/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Marks the request approved and the pet adopted, rejects the other pending requests for the pet and appends the adoption history, in one transaction.",
                "produces": ["application/json"],
                "tags": ["Decisions"],
                "summary": "Approve an adoption request",
                "operationId": "approveRequest",
                "parameters": [{"type": "string", "format": "uuid", "description": "Request ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Decision"}},
                    "403": {"description": "Not the pet owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Already processed or pet unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/pet-requests/{id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Marks the request rejected with optional owner notes. The pet and other requests are untouched.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Decisions"],
                "summary": "Reject an adoption request",
                "operationId": "rejectRequest",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Request ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Optional notes", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.RejectRequestBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Decision"}},
                    "400": {"description": "Malformed body or notes too long", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Not the pet owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Already processed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/my-adoption-history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Adoptions where the caller was the adopter or the original owner, most recent first. Each entry carries the caller's role.",
                "produces": ["application/json"],
                "tags": ["History"],
                "summary": "List my adoption history",
                "operationId": "myAdoptionHistory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HistoryResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Marketplace statistics",
                "operationId": "adminStats",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/repo.AdminStats"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Admin role required", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"description": "Stable, machine-readable code (see errors.go constants)", "type": "string", "example": "not_found"},
                "fields": {"description": "Field-level detail for validation_failed", "type": "array", "items": {"$ref": "#/definitions/services.FieldError"}},
                "message": {"description": "Human-readable message (safe to show to users)", "type": "string", "example": "pet not found"},
                "request_id": {"description": "Correlates server logs and client errors", "type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.HistoryResponse": {
            "type": "object",
            "properties": {"history": {"type": "array", "items": {"$ref": "#/definitions/services.HistoryEntry"}}}
        },
        "handlers.ListPetsResponse": {
            "type": "object",
            "properties": {
                "pagination": {"$ref": "#/definitions/handlers.Pagination"},
                "pets": {"type": "array", "items": {"$ref": "#/definitions/services.PetView"}}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handlers.PetsResponse": {
            "type": "object",
            "properties": {"pets": {"type": "array", "items": {"$ref": "#/definitions/services.PetView"}}}
        },
        "handlers.RejectRequestBody": {
            "type": "object",
            "properties": {"owner_notes": {"type": "string", "example": "We are looking for a home with a garden."}}
        },
        "handlers.RequestsResponse": {
            "type": "object",
            "properties": {"requests": {"type": "array", "items": {"$ref": "#/definitions/services.RequestView"}}}
        },
        "repo.AdminStats": {
            "type": "object",
            "properties": {
                "completed_adoptions": {"type": "integer"},
                "pets": {"type": "integer"},
                "pets_by_status": {"type": "object", "additionalProperties": {"type": "integer", "format": "int64"}},
                "requests_by_status": {"type": "object", "additionalProperties": {"type": "integer", "format": "int64"}},
                "users": {"type": "integer"}
            }
        },
        "domain.AdoptionHistory": {
            "type": "object",
            "properties": {
                "adoption_date": {"type": "string"},
                "adoption_request_id": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "notes": {"type": "string"},
                "pet_id": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "services.Decision": {
            "type": "object",
            "properties": {
                "history": {"$ref": "#/definitions/domain.AdoptionHistory"},
                "request": {"$ref": "#/definitions/services.RequestView"},
                "siblings_rejected": {"type": "integer"}
            }
        },
        "services.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "services.HistoryEntry": {
            "type": "object",
            "properties": {
                "adoption_date": {"type": "string"},
                "adoption_request_id": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "notes": {"type": "string"},
                "pet": {"$ref": "#/definitions/services.HistoryPet"},
                "pet_id": {"type": "string"},
                "role": {"type": "string", "enum": ["adopter", "owner"]},
                "user_id": {"type": "string"}
            }
        },
        "services.HistoryPet": {
            "type": "object",
            "properties": {
                "age": {"type": "integer"},
                "breed": {"type": "string"},
                "category": {"type": "string", "enum": ["dog", "cat"]},
                "gender": {"type": "string"},
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "listing_type": {"type": "string", "enum": ["adopt", "sell"]},
                "original_owner_id": {"type": "string"},
                "pet_name": {"type": "string"},
                "price": {"type": "number"}
            }
        },
        "services.PetView": {
            "type": "object",
            "properties": {
                "age": {"type": "integer"},
                "allergies": {"type": "string"},
                "breed": {"type": "string"},
                "category": {"type": "string", "enum": ["dog", "cat"]},
                "color": {"type": "string"},
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "food_preferences": {"type": "string"},
                "gender": {"type": "string"},
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "listing_type": {"type": "string", "enum": ["adopt", "sell"]},
                "medications": {"type": "string"},
                "pet_name": {"type": "string"},
                "price": {"type": "number"},
                "status": {"type": "string", "enum": ["available", "adopted"]},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "services.RequestView": {
            "type": "object",
            "properties": {
                "admin_notes": {"type": "string"},
                "applicant_name": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"},
                "owner_notes": {"type": "string"},
                "pet": {"$ref": "#/definitions/services.PetView"},
                "pet_id": {"type": "string"},
                "phone_number": {"type": "string"},
                "reviewed_at": {"type": "string"},
                "reviewed_by": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"},
                "valid_id_1_url": {"type": "string"},
                "valid_id_2_url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the token issued by the identity provider.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Pet Adoption API",
	Description:      "Pet listings, adoption requests and owner decisions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
