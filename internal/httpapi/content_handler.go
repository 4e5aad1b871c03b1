package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/service"
)

type ContentHandler struct {
	content service.ContentService
}

func NewContentHandler(content service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GET /api/content?subject=
func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.content.List(c.Request.Context(), c.Query("subject"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /api/content/counts
func (h *ContentHandler) Counts(c *gin.Context) {
	counts, err := h.content.Counts(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": counts})
}

// POST /api/content
func (h *ContentHandler) Import(c *gin.Context) {
	var items []domain.ContentItem
	if err := c.ShouldBindJSON(&items); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	n, err := h.content.Import(c.Request.Context(), items)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": n})
}
