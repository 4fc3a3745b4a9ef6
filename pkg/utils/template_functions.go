package utils

import (
	"fmt"
	"html/template"
	"net/url"
	"reflect"
	"strings"
)

// GetTemplateFuncs returns the helpers available to page templates.
func GetTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"hasPrefix": strings.HasPrefix,
		"contains":  strings.Contains,
		"truncate": func(s string, length int) string {
			runes := []rune(s)
			if len(runes) <= length {
				return s
			}
			return string(runes[:length]) + "..."
		},

		"default": func(defaultValue, value interface{}) interface{} {
			if isEmpty(value) {
				return defaultValue
			}
			return value
		},

		"safe":    func(s string) template.HTML { return template.HTML(s) },
		"safeURL": SafeURL,

		"formatBytes": FormatBytes,
	}
}

var allowedLinkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
	"sms":    true,
	"geo":    true,
}

// SafeURL lets user supplied links through only when they use a scheme
// that cannot execute script. Everything else collapses to "#".
func SafeURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return template.URL("#")
	}
	if strings.HasPrefix(raw, "data:image/") && !strings.HasPrefix(raw, "data:image/svg") {
		return template.URL(raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return template.URL("#")
	}
	if parsed.Scheme == "" {
		if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return template.URL(raw)
		}
		return template.URL("#")
	}
	if !allowedLinkSchemes[strings.ToLower(parsed.Scheme)] {
		return template.URL("#")
	}
	return template.URL(raw)
}

// FormatBytes renders a size the way upload descriptions show it.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	f := float64(n)
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for f >= 1024 && i < len(units)-1 {
		f = f / 1024
		i++
	}
	if units[i] == "B" {
		return fmt.Sprintf("%d %s", int64(f), units[i])
	}
	return fmt.Sprintf("%.2f %s", f, units[i])
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)

	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}

	zero := reflect.Zero(v.Type())
	return reflect.DeepEqual(value, zero.Interface())
}
