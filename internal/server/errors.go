package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tgienger/kanban/internal/board"
	"github.com/tgienger/kanban/internal/dto"
	"github.com/tgienger/kanban/internal/models"
)

// respondWithError sends an error envelope
func respondWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.Fail(code, message))
}

func badRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	respondWithError(c, http.StatusBadRequest, dto.CodeInvalidInput, message)
}

func unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	respondWithError(c, http.StatusUnauthorized, dto.CodeUnauthorized, message)
}

// fail maps a store error to a status code and error envelope
func (s *Server) fail(c *gin.Context, err error) {
	var e *board.Error
	switch {
	case errors.Is(err, models.ErrInvalid):
		badRequest(c, err.Error())
	case errors.As(err, &e) && e.Kind == board.KindValidation:
		badRequest(c, e.Message)
	case errors.As(err, &e) && e.Kind == board.KindNotFound:
		respondWithError(c, http.StatusNotFound, dto.CodeNotFound, e.Message)
	case errors.As(err, &e) && e.Kind == board.KindUnauthorized:
		unauthorized(c, e.Message)
	default:
		s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		respondWithError(c, http.StatusInternalServerError, dto.CodeInternal, "Internal server error")
	}
}

// requireToken checks the bearer token when the server has one configured
func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			unauthorized(c, "")
			return
		}
		c.Next()
	}
}
