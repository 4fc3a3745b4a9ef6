package validator

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	stripper  *bluemonday.Policy

	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	filenamePattern = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

func Init() {
	validate = validator.New()

	sanitizer = bluemonday.UGCPolicy()
	stripper = bluemonday.StrictPolicy()

	registerCustomValidations(validate)

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomValidations(engine)
	}
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("slug", validateSlug)
	v.RegisterValidation("no_html", validateNoHTML)
	v.RegisterValidation("hexcolor_or_empty", validateHexColorOrEmpty)
	v.RegisterValidation("hexcolor_or_transparent", validateHexColorOrTransparent)
}

func Validate(s interface{}) error {
	if validate == nil {
		Init()
	}
	return validate.Struct(s)
}

// SanitizeHTML keeps user generated markup that is safe to embed.
func SanitizeHTML(html string) string {
	if sanitizer == nil {
		Init()
	}
	return sanitizer.Sanitize(html)
}

// SanitizeString removes every tag.
func SanitizeString(s string) string {
	if stripper == nil {
		Init()
	}
	return stripper.Sanitize(s)
}

func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

func validateNoHTML(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return !strings.Contains(value, "<") && !strings.Contains(value, ">")
}

func validateHexColorOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || IsHexColor(value)
}

func validateHexColorOrTransparent(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.EqualFold(value, "transparent") || IsHexColor(value)
}

func SanitizeFilename(filename string) string {
	return filenamePattern.ReplaceAllString(filename, "_")
}

func ValidateFileSize(size int64, maxSize int64) bool {
	return size > 0 && size <= maxSize
}

// ValidateContentType validates that the provided MIME type is in the allowed list
func ValidateContentType(contentType string, allowedMimeTypes []string) bool {
	if contentType == "" || len(allowedMimeTypes) == 0 {
		return false
	}

	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	for _, allowed := range allowedMimeTypes {
		allowed = strings.ToLower(strings.TrimSpace(allowed))

		if mimeType == allowed {
			return true
		}

		// "image/*" matches "image/png"
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "/*")
			if strings.HasPrefix(mimeType, prefix+"/") {
				return true
			}
		}
	}

	return false
}

// DetectFileType sniffs the MIME type from magic numbers.
// Returns an empty string when nothing matches.
func DetectFileType(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x47, 0x49, 0x46, 0x38}):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) > 12 && bytes.HasPrefix(data[8:], []byte("WEBP")):
		return "image/webp"
	case bytes.HasPrefix(data, []byte("%PDF")):
		return "application/pdf"
	case bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}):
		return "application/zip"
	case len(data) > 12 && bytes.HasPrefix(data[4:], []byte("ftyp")):
		return "video/mp4"
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "video/webm"
	case bytes.HasPrefix(data, []byte("<?xml")), bytes.HasPrefix(data, []byte("<svg")):
		return "text/xml"
	case bytes.HasPrefix(data, []byte("<!DOCTYPE")), bytes.HasPrefix(data, []byte("<html")):
		return "text/html"
	}

	if isProbablyText(data) {
		return "text/plain"
	}
	return ""
}

// isProbablyText checks for null bytes in the first 512 bytes.
func isProbablyText(data []byte) bool {
	checkSize := 512
	if len(data) < checkSize {
		checkSize = len(data)
	}
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return false
		}
	}
	return true
}

// ValidateImageContentType accepts the raster formats a logo or product
// image can use. SVG is excluded because it can carry script.
func ValidateImageContentType(contentType string) bool {
	return ValidateContentType(contentType, []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	})
}

func ValidateVideoContentType(contentType string) bool {
	return ValidateContentType(contentType, []string{
		"video/mp4",
		"video/quicktime",
		"video/webm",
	})
}

func ValidateDocumentContentType(contentType string) bool {
	return ValidateContentType(contentType, []string{
		"application/pdf",
		"text/plain",
		"text/csv",
		"application/json",
		"application/zip",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	})
}
