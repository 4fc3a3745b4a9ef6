package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/render"
	"qrstudio-backend/internal/service"
)

type QRHandler struct {
	qr       service.QRUseCase
	renderer service.RenderUseCase
}

func NewQRHandler(qr service.QRUseCase, renderer service.RenderUseCase) *QRHandler {
	return &QRHandler{qr: qr, renderer: renderer}
}

func (h *QRHandler) Kinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"kinds": h.qr.Kinds(),
		"icons": microsite.Icons(),
	})
}

func (h *QRHandler) Payload(c *gin.Context) {
	var req models.GeneratePayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.qr.Generate(req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Render returns image bytes. ?raw=1 always answers with PNG, which is
// what clipboard writers accept.
func (h *QRHandler) Render(c *gin.Context) {
	req := models.RenderRequest{Options: models.DefaultVisualOptions()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, _ := strconv.ParseBool(c.Query("raw"))
	if raw {
		format = render.FormatPNG
	}

	payload, err := h.qr.ResolvePayload(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result *service.RenderResult
	if raw {
		result, err = h.renderer.RenderRaw(c.Request.Context(), payload, req.Options)
	} else {
		result, err = h.renderer.Render(c.Request.Context(), payload, req.Options, format)
	}
	if err != nil {
		switch {
		case errors.Is(err, render.ErrPayloadTooLarge), errors.Is(err, render.ErrUnsupportedFormat):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if result.Cached {
		c.Header("X-Render-Cache", "hit")
	}
	if result.LogoError != nil {
		c.Header("X-Logo-Error", result.LogoError.Error())
	}
	if c.Query("download") != "" {
		c.Header("Content-Disposition", `attachment; filename="qrcode`+format.Extension()+`"`)
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *QRHandler) DecodeMicrosite(c *gin.Context) {
	var req models.DecodeMicrositeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := req.Token
	if input == "" {
		input = req.URL
	}
	cfg, err := h.qr.DecodeMicrosite(input)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}
