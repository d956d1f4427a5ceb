package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/transport-ledger/service-transport/internal/application"
	"github.com/transport-ledger/service-transport/internal/common/response"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
)

// GeoHandler proxies address and distance lookups to the configured provider.
type GeoHandler struct {
	service *application.GeoService
}

// NewGeoHandler creates a new GeoHandler.
func NewGeoHandler(service *application.GeoService) *GeoHandler {
	return &GeoHandler{service: service}
}

// RegisterRoutes registers the geo routes on the given router group.
func (h *GeoHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/geo")
	{
		g.GET("/reverse", h.Reverse)
		g.GET("/distance", h.Distance)
	}
}

// Reverse handles GET /geo/reverse?lat=&lng=.
func (h *GeoHandler) Reverse(c *gin.Context) {
	p, ok := queryPoint(c, "lat", "lng")
	if !ok {
		return
	}
	result, err := h.service.ReverseGeocode(c.Request.Context(), p.Lat, p.Lng)
	if err != nil {
		response.Error(c, err, "Failed to resolve address")
		return
	}
	response.Success(c, result)
}

// Distance handles GET /geo/distance?start_lat=&start_lng=&end_lat=&end_lng=.
func (h *GeoHandler) Distance(c *gin.Context) {
	start, ok := queryPoint(c, "start_lat", "start_lng")
	if !ok {
		return
	}
	end, ok := queryPoint(c, "end_lat", "end_lng")
	if !ok {
		return
	}
	result, err := h.service.Distance(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err, "Failed to compute distance")
		return
	}
	response.Success(c, result)
}

func queryPoint(c *gin.Context, latKey, lngKey string) (geo.Point, bool) {
	lat, err := strconv.ParseFloat(c.Query(latKey), 64)
	if err != nil {
		response.BadRequest(c, "invalid "+latKey)
		return geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(c.Query(lngKey), 64)
	if err != nil {
		response.BadRequest(c, "invalid "+lngKey)
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}
