package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
// Internal failures hide their detail from the client.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(c, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		respondError(c, http.StatusServiceUnavailable, "collaborator_unavailable", err)
	case errors.Is(err, domain.ErrPersistence):
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "persistence_error", errors.New("could not save changes"))
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
