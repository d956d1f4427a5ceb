package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/transport-ledger/service-transport/internal/application"
	"github.com/transport-ledger/service-transport/internal/common/response"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
)

// OpenPickerRequest names the field a point selection targets.
type OpenPickerRequest struct {
	Field string `json:"field" binding:"required"`
}

// SelectPointRequest is a clicked or searched map coordinate.
type SelectPointRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// DraftHandler handles HTTP requests for in-progress record forms.
type DraftHandler struct {
	service *application.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(service *application.DraftService) *DraftHandler {
	return &DraftHandler{service: service}
}

// RegisterRoutes registers the draft routes on the given router group.
func (h *DraftHandler) RegisterRoutes(r *gin.RouterGroup) {
	drafts := r.Group("/drafts")
	{
		drafts.POST("", h.CreateDraft)
		drafts.GET("/:id", h.GetDraft)
		drafts.PATCH("/:id", h.PatchDraft)
		drafts.DELETE("/:id", h.DiscardDraft)
		drafts.POST("/:id/picker", h.OpenPicker)
		drafts.POST("/:id/picker/point", h.SelectPoint)
		drafts.DELETE("/:id/picker", h.CancelPicker)
		drafts.POST("/:id/submit", h.SubmitDraft)
	}
}

// CreateDraft handles POST /drafts.
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	response.Created(c, h.service.Create())
}

// GetDraft handles GET /drafts/:id.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	result, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err, "Failed to fetch draft")
		return
	}
	response.Success(c, result)
}

// PatchDraft handles PATCH /drafts/:id with a partial set of field values.
func (h *DraftHandler) PatchDraft(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}
	result, err := h.service.Patch(c.Param("id"), raw)
	if err != nil {
		response.Error(c, err, "Failed to update draft")
		return
	}
	response.Success(c, result)
}

// DiscardDraft handles DELETE /drafts/:id.
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	if err := h.service.Discard(c.Param("id")); err != nil {
		response.Error(c, err, "Failed to discard draft")
		return
	}
	response.Message(c, "Draft discarded")
}

// OpenPicker handles POST /drafts/:id/picker.
func (h *DraftHandler) OpenPicker(c *gin.Context) {
	var req OpenPickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.OpenPicker(c.Param("id"), req.Field)
	if err != nil {
		response.Error(c, err, "Failed to open point selection")
		return
	}
	response.Success(c, result)
}

// SelectPoint handles POST /drafts/:id/picker/point.
func (h *DraftHandler) SelectPoint(c *gin.Context) {
	var req SelectPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	result, err := h.service.SelectPoint(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.Error(c, err, "Failed to select point")
		return
	}
	response.Success(c, result)
}

// CancelPicker handles DELETE /drafts/:id/picker.
func (h *DraftHandler) CancelPicker(c *gin.Context) {
	result, err := h.service.CancelPicker(c.Param("id"))
	if err != nil {
		response.Error(c, err, "Failed to cancel point selection")
		return
	}
	response.Success(c, result)
}

// SubmitDraft handles POST /drafts/:id/submit.
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err, "Failed to add transport record")
		return
	}
	response.Created(c, result)
}
