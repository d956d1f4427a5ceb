package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves liveness information for the service.
type Handler struct {
	db      Pinger
	service string
	started time.Time
}

// NewHandler creates a health handler. db may be nil when the service runs without a database.
func NewHandler(db Pinger, service string) *Handler {
	return &Handler{db: db, service: service, started: time.Now()}
}

// NewGormHandler creates a health handler that pings the given gorm connection.
func NewGormHandler(db *gorm.DB, service string) (*Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return NewHandler(sqlDB, service), nil
}

// RegisterRoutes registers GET /health.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Check)
}

// Check handles GET /health.
func (h *Handler) Check(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "ok",
		"service": h.service,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}

	c.JSON(status, body)
}
