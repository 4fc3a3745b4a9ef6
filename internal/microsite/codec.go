package microsite

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"qrstudio-backend/internal/qrcontent"
)

// QueryParam is the single reserved query parameter carrying a token.
const QueryParam = "p"

// MaxTokenLength bounds the work spent on a foreign token.
const MaxTokenLength = 64 << 10

var (
	ErrInvalidToken = errors.New("invalid microsite token")
	ErrTokenTooLong = errors.New("microsite token exceeds maximum length")
)

// Tokens produced by older builders use the standard alphabet with padding,
// new tokens use the URL-safe alphabet without it.
var tokenEncodings = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// Serialize turns a config into a URL-safe token: JSON, then percent
// escaping so the text is pure ASCII, then base64.
func Serialize(cfg Config) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		// Config holds only strings and slices of them.
		return ""
	}
	escaped := qrcontent.EncodeURIComponent(string(raw))
	return base64.RawURLEncoding.EncodeToString([]byte(escaped))
}

// Deserialize reverses Serialize. ok is false for anything that is not a
// well formed token; it never panics.
func Deserialize(token string) (Config, bool) {
	cfg, err := Decode(token)
	return cfg, err == nil
}

// Decode is Deserialize with the failure reason.
func Decode(token string) (Config, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Config{}, ErrInvalidToken
	}
	if len(token) > MaxTokenLength {
		return Config{}, ErrTokenTooLong
	}
	// Form decoding turns '+' into a space.
	token = strings.ReplaceAll(token, " ", "+")

	decoded, err := decodeBase64(token)
	if err != nil {
		return Config{}, ErrInvalidToken
	}

	text, err := url.PathUnescape(string(decoded))
	if err != nil {
		return Config{}, ErrInvalidToken
	}
	// Escapes must spell UTF-8, otherwise JSON decoding would quietly
	// substitute U+FFFD.
	if !utf8.ValidString(text) {
		return Config{}, ErrInvalidToken
	}

	var cfg *Config
	if err := json.Unmarshal([]byte(text), &cfg); err != nil || cfg == nil {
		return Config{}, ErrInvalidToken
	}
	return *cfg, nil
}

func decodeBase64(token string) ([]byte, error) {
	var lastErr error
	for _, enc := range tokenEncodings {
		out, err := enc.DecodeString(token)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ComposeURL returns base with the token set as the reserved parameter.
// Any previous value of that parameter is replaced.
func ComposeURL(base, token string) string {
	parsed, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + QueryParam + "=" + url.QueryEscape(token)
	}
	query := parsed.Query()
	query.Set(QueryParam, token)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// TokenFromURL extracts the token from a share URL. A bare token without
// any URL structure is returned unchanged.
func TokenFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "?") {
		return raw, true
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	token := parsed.Query().Get(QueryParam)
	if token == "" {
		return "", false
	}
	return token, true
}
