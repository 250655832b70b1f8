package handler

import (
	"github.com/gin-gonic/gin"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/internal/shared/response"
)

type FortuneHandler struct {
	service fortune.Service
}

func NewFortuneHandler(svc fortune.Service) *FortuneHandler {
	return &FortuneHandler{service: svc}
}

// List handles GET /api/fortunes.
func (h *FortuneHandler) List(c *gin.Context) {
	items, err := h.service.ListFortunes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.List(c, items)
}

// Get handles GET /api/fortunes/:id.
func (h *FortuneHandler) Get(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetFortune(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

// Create handles POST /api/fortunes.
func (h *FortuneHandler) Create(c *gin.Context) {
	var req fortune.CreateFortuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Unprocessable(c, validationDetail(err))
		return
	}

	resp, err := h.service.CreateFortune(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

// Patch handles PATCH /api/fortunes/:id. At least one mutable field must
// be present; an empty patch never reaches the store.
func (h *FortuneHandler) Patch(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}

	var req fortune.PatchFortuneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Unprocessable(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.Unprocessable(c, validationDetail(err))
		return
	}

	resp, err := h.service.PatchFortune(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}
