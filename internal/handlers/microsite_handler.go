package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/service"
)

// EditTokenHeader carries the capability token for microsite edits.
const EditTokenHeader = "X-Edit-Token"

type MicrositeHandler struct {
	microsites service.MicrositeUseCase
}

func NewMicrositeHandler(microsites service.MicrositeUseCase) *MicrositeHandler {
	return &MicrositeHandler{microsites: microsites}
}

func editToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(EditTokenHeader)); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// writeMicrositeError maps service errors to status codes.
func writeMicrositeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMicrositeNotFound), errors.Is(err, microsite.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidEditToken):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSlug), errors.Is(err, microsite.ErrInvalidReorder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *MicrositeHandler) Create(c *gin.Context) {
	req := models.CreateMicrositeRequest{Config: microsite.DefaultConfig()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.microsites.Create(c.Request.Context(), req)
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *MicrositeHandler) Get(c *gin.Context) {
	site, err := h.microsites.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.microsites.Response(site, ""))
}

func (h *MicrositeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sites, total, err := h.microsites.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"microsites": sites, "total": total})
}

func (h *MicrositeHandler) Replace(c *gin.Context) {
	var req models.UpdateMicrositeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.microsites.Replace(c.Request.Context(), c.Param("slug"), editToken(c), req.Config)
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MicrositeHandler) Delete(c *gin.Context) {
	if err := h.microsites.Delete(c.Request.Context(), c.Param("slug"), editToken(c)); err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "microsite deleted"})
}

func (h *MicrositeHandler) RotateToken(c *gin.Context) {
	token, err := h.microsites.RotateEditToken(c.Request.Context(), c.Param("slug"), editToken(c))
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"edit_token": token})
}

// AddLink accepts a link, or an empty body plus ?preset=product to insert
// the builder's placeholder entries.
func (h *MicrositeHandler) AddLink(c *gin.Context) {
	var link microsite.Link
	switch c.Query("preset") {
	case "product":
		link = microsite.NewProductLink("")
	case "link":
		link = microsite.NewLink("")
	default:
		if err := c.ShouldBindJSON(&link); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	added, err := h.microsites.AddLink(c.Request.Context(), c.Param("slug"), editToken(c), link)
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"link": added})
}

func (h *MicrositeHandler) UpdateLink(c *gin.Context) {
	var link microsite.Link
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.microsites.UpdateLink(c.Request.Context(), c.Param("slug"), editToken(c), c.Param("linkId"), link)
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": updated})
}

func (h *MicrositeHandler) RemoveLink(c *gin.Context) {
	if err := h.microsites.RemoveLink(c.Request.Context(), c.Param("slug"), editToken(c), c.Param("linkId")); err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "link removed"})
}

func (h *MicrositeHandler) ReorderLinks(c *gin.Context) {
	var req models.ReorderLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	links, err := h.microsites.ReorderLinks(c.Request.Context(), c.Param("slug"), editToken(c), req.LinkIDs)
	if err != nil {
		writeMicrositeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}
