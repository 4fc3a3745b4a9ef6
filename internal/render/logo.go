package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// MaxLogoBytes bounds decoded logo sources.
const MaxLogoBytes = 5 << 20

var ErrUnsupportedLogo = errors.New("unsupported logo reference")

// LogoLoader resolves the logo reference found in VisualOptions.
type LogoLoader interface {
	LoadLogo(ref string) (image.Image, error)
}

// LocalLogoLoader reads data URIs and files previously stored by the
// upload endpoint. Remote URLs are refused so renders never reach out to
// arbitrary hosts.
type LocalLogoLoader struct {
	UploadDir string
	URLPrefix string
}

func NewLocalLogoLoader(uploadDir, urlPrefix string) *LocalLogoLoader {
	if urlPrefix == "" {
		urlPrefix = "/uploads/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalLogoLoader{UploadDir: uploadDir, URLPrefix: urlPrefix}
}

func (l *LocalLogoLoader) LoadLogo(ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	if strings.HasPrefix(ref, "data:") {
		data, err := decodeDataURI(ref)
		if err != nil {
			return nil, err
		}
		return decodeLogo(data)
	}

	path := ref
	if parsed, err := url.Parse(ref); err == nil && parsed.Path != "" {
		if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedLogo, parsed.Scheme)
		}
		path = parsed.Path
	}
	if !strings.HasPrefix(path, l.URLPrefix) || l.UploadDir == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLogo, ref)
	}

	name := filepath.Base(filepath.Clean("/" + strings.TrimPrefix(path, l.URLPrefix)))
	if name == "/" || name == "." {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLogo, ref)
	}
	full := filepath.Join(l.UploadDir, name)

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("logo not found: %w", err)
	}
	if info.Size() > MaxLogoBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", MaxLogoBytes)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	return decodeLogo(data)
}

func decodeDataURI(ref string) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedLogo)
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URI must be base64", ErrUnsupportedLogo)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxLogoBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", MaxLogoBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
	}
	return data, nil
}

func decodeLogo(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}
	return img, nil
}
