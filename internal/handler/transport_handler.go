package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/transport-ledger/service-transport/internal/application"
	"github.com/transport-ledger/service-transport/internal/common/response"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TransportHandler handles HTTP requests for transport records.
type TransportHandler struct {
	service *application.TransportService
}

// NewTransportHandler creates a new TransportHandler.
func NewTransportHandler(service *application.TransportService) *TransportHandler {
	return &TransportHandler{service: service}
}

// RegisterRoutes registers the record routes on the given router group.
func (h *TransportHandler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/transport")
	{
		records.GET("", h.ListRecords)
		records.GET("/export", h.ExportRecords)
		records.GET("/:id", h.GetRecord)
		records.POST("", h.CreateRecord)
		records.PUT("/:id", h.UpdateRecord)
		records.DELETE("/:id", h.DeleteRecord)
	}
}

// ListRecords handles GET /transport.
func (h *TransportHandler) ListRecords(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err, "Failed to fetch transport records")
		return
	}
	response.Success(c, result)
}

// GetRecord handles GET /transport/:id.
func (h *TransportHandler) GetRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	result, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Failed to fetch transport record")
		return
	}
	response.Success(c, result)
}

// CreateRecord handles POST /transport.
func (h *TransportHandler) CreateRecord(c *gin.Context) {
	in, ok := decodeInput(c)
	if !ok {
		return
	}
	result, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err, "Failed to add transport record")
		return
	}
	response.Created(c, result)
}

// UpdateRecord handles PUT /transport/:id. The body replaces every field.
func (h *TransportHandler) UpdateRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	in, ok := decodeInput(c)
	if !ok {
		return
	}
	result, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err, "Failed to update transport record")
		return
	}
	response.Success(c, result)
}

// DeleteRecord handles DELETE /transport/:id.
func (h *TransportHandler) DeleteRecord(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err, "Failed to delete record")
		return
	}
	response.Message(c, "Record deleted successfully")
}

// ExportRecords handles GET /transport/export.
func (h *TransportHandler) ExportRecords(c *gin.Context) {
	buf, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err, "Failed to export transport records")
		return
	}
	filename := application.ExportFilename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid record ID")
		return 0, false
	}
	return id, true
}

func decodeInput(c *gin.Context) (transport.Input, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return transport.Input{}, false
	}
	var in transport.Input
	if err := transport.DecodeInput(raw, &in); err != nil {
		response.Error(c, err, "invalid request body")
		return transport.Input{}, false
	}
	return in, true
}
