package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/pkg/logger"
	"qrstudio-backend/pkg/media"
	"qrstudio-backend/pkg/utils"
	"qrstudio-backend/pkg/validator"
)

const (
	UploadKindImage = "image"
	UploadKindFile  = "file"
	UploadKindVideo = "video"

	uploadURLPrefix     = "/uploads/"
	defaultVideoMaxSize = 200 << 20
	sniffLength         = 512
)

var (
	ErrUploadMissing     = errors.New("no file uploaded")
	ErrUploadTooLarge    = errors.New("file size exceeds maximum allowed size")
	ErrUnsupportedUpload = errors.New("file type not allowed")
	ErrUploadNotFound    = errors.New("upload not found")
)

var extensionsByType = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
}

// UploadService stores builder assets on local disk and describes them the
// way the builder presents them as links.
type UploadService struct {
	uploadDir    string
	maxSize      int64
	videoMaxSize int64
}

func NewUploadService(uploadDir string, maxSize int64) *UploadService {
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			logger.Error(err, "Failed to create upload directory", map[string]interface{}{"dir": uploadDir})
		}
	}
	if maxSize <= 0 {
		maxSize = 10 << 20
	}

	videoMax := int64(defaultVideoMaxSize)
	if maxSize > videoMax {
		videoMax = maxSize
	}

	return &UploadService{
		uploadDir:    uploadDir,
		maxSize:      maxSize,
		videoMaxSize: videoMax,
	}
}

// Upload stores file as the requested kind. An empty kind is inferred from
// the sniffed content type.
func (s *UploadService) Upload(file *multipart.FileHeader, kind string) (*models.UploadResult, error) {
	if file == nil || file.Size <= 0 {
		return nil, ErrUploadMissing
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	contentType := validator.DetectFileType(head[:n])
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = inferUploadKind(contentType)
	}
	if err := s.checkKind(kind, contentType, file.Size); err != nil {
		return nil, err
	}

	ext := uploadExtension(file.Filename, contentType, kind)
	filename := s.generateFilename(file.Filename, ext)
	path := filepath.Join(s.uploadDir, filename)

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	result := &models.UploadResult{
		URL:         uploadURLPrefix + filename,
		Filename:    filename,
		Size:        file.Size,
		ContentType: contentType,
		Kind:        kind,
	}

	switch kind {
	case UploadKindImage:
		result.Label = "Image"
		result.Icon = microsite.DefaultIcon(microsite.LinkTypeImage)
	case UploadKindVideo:
		result.Label = "Video"
		result.Icon = microsite.DefaultIcon(microsite.LinkTypeVideo)
		if duration, err := media.VideoDuration(src, file.Size); err == nil && duration > 0 {
			result.SubLabel = "Duration: " + media.FormatDuration(duration)
		} else if err != nil {
			logger.Debug("Video duration unavailable", map[string]interface{}{"file": filename, "error": err.Error()})
		}
	default:
		result.Label = filepath.Base(file.Filename)
		result.Icon = microsite.DefaultIcon(microsite.LinkTypeFile)
		result.SubLabel = FileSizeLabel(file.Size)
	}

	return result, nil
}

// FileSizeLabel is the description the builder puts under file links.
func FileSizeLabel(size int64) string {
	return fmt.Sprintf("Size: %.2fMB", float64(size)/(1024*1024))
}

func (s *UploadService) checkKind(kind, contentType string, size int64) error {
	limit := s.maxSize
	allowed := false

	switch kind {
	case UploadKindImage:
		allowed = validator.ValidateImageContentType(contentType)
	case UploadKindVideo:
		limit = s.videoMaxSize
		allowed = validator.ValidateVideoContentType(contentType)
	case UploadKindFile:
		// Anything a browser would execute inline is refused.
		allowed = contentType != "text/html" && contentType != "text/xml"
	default:
		return fmt.Errorf("%w: unknown upload kind %q", ErrUnsupportedUpload, kind)
	}

	if !validator.ValidateFileSize(size, limit) {
		return ErrUploadTooLarge
	}
	if !allowed {
		return fmt.Errorf("%w: %s as %s", ErrUnsupportedUpload, contentType, kind)
	}
	return nil
}

func inferUploadKind(contentType string) string {
	switch {
	case validator.ValidateImageContentType(contentType):
		return UploadKindImage
	case validator.ValidateVideoContentType(contentType):
		return UploadKindVideo
	default:
		return UploadKindFile
	}
}

func uploadExtension(original, contentType, kind string) string {
	ext := strings.ToLower(filepath.Ext(original))
	canonical, known := extensionsByType[contentType]

	if kind != UploadKindFile && known {
		if ext == ".jpeg" && canonical == ".jpg" {
			return ext
		}
		if ext == ".m4v" || ext == ".mov" {
			if contentType == "video/mp4" {
				return ext
			}
		}
		return canonical
	}

	ext = validator.SanitizeFilename(ext)
	if ext == "" || ext == "." {
		if known {
			return canonical
		}
		return ".bin"
	}
	return ext
}

func (s *UploadService) generateFilename(originalName, ext string) string {
	baseName := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))

	cleaned := utils.GenerateSlug(baseName)
	if cleaned == "" {
		cleaned = uuid.New().String()
	}

	candidate := cleaned + ext
	if !s.fileExists(candidate) {
		return candidate
	}

	for i := 1; i < 1000; i++ {
		candidate = fmt.Sprintf("%s-%d%s", cleaned, i, ext)
		if !s.fileExists(candidate) {
			return candidate
		}
	}

	return uuid.New().String() + ext
}

func (s *UploadService) fileExists(name string) bool {
	_, err := os.Stat(filepath.Join(s.uploadDir, name))
	return err == nil
}

// resolve maps an upload URL to a path inside the upload directory.
func (s *UploadService) resolve(url string) (string, error) {
	name := filepath.Base(strings.TrimSpace(url))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", ErrUploadNotFound
	}

	dirAbs, err := filepath.Abs(s.uploadDir)
	if err != nil {
		return "", err
	}
	pathAbs, err := filepath.Abs(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(pathAbs, dirAbs+string(filepath.Separator)) {
		return "", ErrUploadNotFound
	}
	return pathAbs, nil
}

func (s *UploadService) Delete(url string) error {
	if !s.IsManagedURL(url) {
		return ErrUploadNotFound
	}
	path, err := s.resolve(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrUploadNotFound
		}
		return err
	}
	return nil
}

func (s *UploadService) IsManagedURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), uploadURLPrefix)
}

// List returns stored uploads, newest first.
func (s *UploadService) List() ([]models.UploadInfo, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, err
	}

	uploads := make([]models.UploadInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		uploads = append(uploads, models.UploadInfo{
			URL:      uploadURLPrefix + entry.Name(),
			Filename: entry.Name(),
			Size:     info.Size(),
			Kind:     kindFromExtension(entry.Name()),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].ModTime.Equal(uploads[j].ModTime) {
			return uploads[i].Filename < uploads[j].Filename
		}
		return uploads[i].ModTime.After(uploads[j].ModTime)
	})
	return uploads, nil
}

func kindFromExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return UploadKindImage
	case ".mp4", ".m4v", ".mov", ".webm":
		return UploadKindVideo
	default:
		return UploadKindFile
	}
}
