package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transport-ledger/service-transport/internal/common/domain"
)

// Success writes v as a 200 JSON body.
func Success(c *gin.Context, v interface{}) {
	c.JSON(http.StatusOK, v)
}

// Created writes v as a 201 JSON body.
func Created(c *gin.Context, v interface{}) {
	c.JSON(http.StatusCreated, v)
}

// Message writes {"message": msg} with a 200 status.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Error maps err to a status code. Infrastructure failures are reported with
// fallback only; the cause stays in the logs.
func Error(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}

	switch appErr.Kind {
	case domain.KindValidation:
		body := gin.H{"error": appErr.Message}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": appErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
