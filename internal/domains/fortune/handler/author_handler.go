package handler

import (
	"github.com/gin-gonic/gin"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/internal/shared/response"
)

type AuthorHandler struct {
	service fortune.Service
}

func NewAuthorHandler(svc fortune.Service) *AuthorHandler {
	return &AuthorHandler{service: svc}
}

// List handles GET /api/authors.
func (h *AuthorHandler) List(c *gin.Context) {
	items, err := h.service.ListAuthors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, items)
}

// Get handles GET /api/authors/:id.
func (h *AuthorHandler) Get(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

// Patch handles PATCH /api/authors/:id.
func (h *AuthorHandler) Patch(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}

	var req fortune.PatchAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Unprocessable(c, validationDetail(err))
		return
	}

	resp, err := h.service.PatchAuthor(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}
