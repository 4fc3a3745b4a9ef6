package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/service"
)

type DesignHandler struct {
	designs service.DesignUseCase
}

func NewDesignHandler(designs service.DesignUseCase) *DesignHandler {
	return &DesignHandler{designs: designs}
}

func (h *DesignHandler) Create(c *gin.Context) {
	req := models.CreateDesignRequest{Options: models.DefaultVisualOptions()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := h.designs.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"design": design})
}

func (h *DesignHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid design id"})
		return
	}

	design, err := h.designs.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrDesignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"design": design})
}

func (h *DesignHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	designs, total, err := h.designs.List(c.Request.Context(), c.Query("kind"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"designs": designs, "total": total})
}

func (h *DesignHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid design id"})
		return
	}

	if err := h.designs.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrDesignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "design deleted"})
}
