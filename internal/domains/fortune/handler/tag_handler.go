package handler

import (
	"github.com/gin-gonic/gin"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/internal/shared/response"
)

type TagHandler struct {
	service fortune.Service
}

func NewTagHandler(svc fortune.Service) *TagHandler {
	return &TagHandler{service: svc}
}

// List handles GET /api/tags.
func (h *TagHandler) List(c *gin.Context) {
	items, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, items)
}

// Get handles GET /api/tags/:id.
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

// Patch handles PATCH /api/tags/:id.
func (h *TagHandler) Patch(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}

	var req fortune.PatchTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Unprocessable(c, validationDetail(err))
		return
	}

	resp, err := h.service.PatchTag(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}
