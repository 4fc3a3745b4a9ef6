package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/service"
	"qrstudio-backend/pkg/logger"
	"qrstudio-backend/pkg/utils"
	"qrstudio-backend/pkg/validator"
)

//go:embed views/*.html
var viewFS embed.FS

const defaultAccent = "#4f46e5"

var iconGlyphs = map[string]string{
	microsite.IconLink:        "\U0001F517",
	microsite.IconInstagram:   "\U0001F4F7",
	microsite.IconTwitter:     "\U0001D54F",
	microsite.IconFacebook:    "f",
	microsite.IconYouTube:     "▶",
	microsite.IconGitHub:      "⌥",
	microsite.IconLinkedIn:    "in",
	microsite.IconMail:        "✉",
	microsite.IconPhone:       "☎",
	microsite.IconFile:        "\U0001F4C4",
	microsite.IconImage:       "\U0001F5BC",
	microsite.IconVideo:       "\U0001F3AC",
	microsite.IconDownload:    "⬇",
	microsite.IconShoppingBag: "\U0001F6CD",
}

func iconGlyph(name string) string {
	if glyph, ok := iconGlyphs[name]; ok {
		return glyph
	}
	return iconGlyphs[microsite.IconLink]
}

// ViewerHandler serves the public microsite page, either from a share
// token or from a stored microsite.
type ViewerHandler struct {
	qr         service.QRUseCase
	microsites service.MicrositeUseCase
	templates  *template.Template
	theme      string
}

func NewViewerHandler(qr service.QRUseCase, microsites service.MicrositeUseCase, theme string) (*ViewerHandler, error) {
	templates, err := utils.LoadTemplates(viewFS, "views", template.FuncMap{"iconGlyph": iconGlyph})
	if err != nil {
		return nil, err
	}
	if theme != "dark" {
		theme = "light"
	}
	return &ViewerHandler{qr: qr, microsites: microsites, templates: templates, theme: theme}, nil
}

// ShowToken renders GET /m?p=token. A token that does not decode gets a
// distinct error page, never a default microsite.
func (h *ViewerHandler) ShowToken(c *gin.Context) {
	cfg, err := h.qr.DecodeMicrosite(c.Query(microsite.QueryParam))
	if err != nil {
		h.renderInvalid(c, http.StatusBadRequest, "Invalid Page Data", "This link is damaged or incomplete. Ask the sender for a new code.")
		return
	}
	h.renderMicrosite(c, cfg)
}

// ShowStored renders GET /m/:slug.
func (h *ViewerHandler) ShowStored(c *gin.Context) {
	site, err := h.microsites.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrMicrositeNotFound) {
			h.renderInvalid(c, http.StatusNotFound, "Page Not Found", "This page does not exist or was removed.")
			return
		}
		logger.Error(err, "Failed to load microsite", map[string]interface{}{"slug": c.Param("slug")})
		h.renderInvalid(c, http.StatusInternalServerError, "Something Went Wrong", "Please try again later.")
		return
	}

	h.microsites.RecordView(c.Request.Context(), site)
	h.renderMicrosite(c, site.Config.Data())
}

func (h *ViewerHandler) renderMicrosite(c *gin.Context, cfg microsite.Config) {
	accent := cfg.ThemeColor
	if !validator.IsHexColor(accent) {
		accent = defaultAccent
	}

	buttonClass := "style-rounded"
	switch cfg.ButtonStyle {
	case microsite.ButtonPill:
		buttonClass = "style-pill"
	case microsite.ButtonSquare:
		buttonClass = "style-square"
	}

	h.render(c, http.StatusOK, "microsite", gin.H{
		"Title":           cfg.Title,
		"Description":     validator.SanitizeString(cfg.Description),
		"DescriptionHTML": service.RenderDescription(cfg.Description),
		"Config":          cfg,
		"ButtonClass":     buttonClass,
		"Accent":          accent,
	})
}

func (h *ViewerHandler) renderInvalid(c *gin.Context, status int, heading, message string) {
	h.render(c, status, "invalid", gin.H{
		"Title":   heading,
		"Heading": heading,
		"Message": message,
		"Accent":  "#f1f5f9",
	})
}

func (h *ViewerHandler) render(c *gin.Context, status int, content string, data gin.H) {
	data["Theme"] = h.theme

	var body bytes.Buffer
	if err := h.templates.ExecuteTemplate(&body, content, data); err != nil {
		logger.Error(err, "Failed to render content", map[string]interface{}{"template": content})
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	data["Content"] = template.HTML(body.String())

	var page bytes.Buffer
	if err := h.templates.ExecuteTemplate(&page, "base", data); err != nil {
		logger.Error(err, "Failed to render layout", map[string]interface{}{"template": "base"})
		c.String(http.StatusInternalServerError, "Template error")
		return
	}

	c.Data(status, "text/html; charset=utf-8", page.Bytes())
}
