package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qrstudio-backend/internal/capacity"
	"qrstudio-backend/internal/microsite"
)

// Microsite is a stored landing page. The config column holds the same
// document a share token carries, so a stored page can always be
// re-exported as a self-contained link.
type Microsite struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Slug   string                               `gorm:"uniqueIndex;size:96;not null" json:"slug"`
	Title  string                               `gorm:"size:200" json:"title"`
	Config datatypes.JSONType[microsite.Config] `json:"config"`

	// EditVersion is embedded in edit tokens; bumping it revokes them.
	EditVersion int `gorm:"default:1" json:"-"`
	Views       int `gorm:"default:0" json:"views"`
}

// Design is a saved QR design: the content fields plus the visual options.
type Design struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name           string                                `gorm:"size:120;not null" json:"name"`
	Kind           string                                `gorm:"size:32;index;not null" json:"kind"`
	Fields         datatypes.JSONType[map[string]string] `json:"fields"`
	StrictEscaping bool                                  `json:"strict_escaping"`
	MicrositeSlug  string                                `gorm:"size:96" json:"microsite_slug,omitempty"`
	Payload        string                                `gorm:"type:text" json:"payload"`
	Options        datatypes.JSONType[VisualOptions]     `json:"options"`
}

type GeneratePayloadRequest struct {
	Kind           string            `json:"kind" binding:"required"`
	Fields         map[string]string `json:"fields"`
	Microsite      *microsite.Config `json:"microsite,omitempty"`
	StrictEscaping bool              `json:"strict_escaping"`
}

type PayloadResponse struct {
	Kind     string          `json:"kind"`
	Payload  string          `json:"payload"`
	Token    string          `json:"token,omitempty"`
	Capacity capacity.Report `json:"capacity"`
}

// RenderRequest renders either an explicit payload or one computed from
// kind and fields.
type RenderRequest struct {
	Payload        string            `json:"payload"`
	Kind           string            `json:"kind"`
	Fields         map[string]string `json:"fields"`
	Microsite      *microsite.Config `json:"microsite,omitempty"`
	StrictEscaping bool              `json:"strict_escaping"`
	Options        VisualOptions     `json:"options"`
}

type CreateMicrositeRequest struct {
	Slug   string           `json:"slug" binding:"omitempty,slug,max=64"`
	Config microsite.Config `json:"config"`
}

type UpdateMicrositeRequest struct {
	Config microsite.Config `json:"config"`
}

type ReorderLinksRequest struct {
	LinkIDs []string `json:"link_ids" binding:"required"`
}

type DecodeMicrositeRequest struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type MicrositeResponse struct {
	Microsite *Microsite      `json:"microsite"`
	EditToken string          `json:"edit_token,omitempty"`
	URL       string          `json:"url"`
	ShareURL  string          `json:"share_url"`
	Token     string          `json:"token"`
	Capacity  capacity.Report `json:"capacity"`
}

type CreateDesignRequest struct {
	Name           string            `json:"name" binding:"required,max=120,no_html"`
	Kind           string            `json:"kind" binding:"required"`
	Fields         map[string]string `json:"fields"`
	Microsite      *microsite.Config `json:"microsite,omitempty"`
	MicrositeSlug  string            `json:"microsite_slug" binding:"omitempty,slug"`
	StrictEscaping bool              `json:"strict_escaping"`
	Options        VisualOptions     `json:"options"`
}

// UploadResult carries what a builder needs to turn an upload into a link:
// Kind is the link type and Label, SubLabel and Icon are its defaults.
type UploadResult struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	SubLabel    string `json:"sub_label,omitempty"`
	Icon        string `json:"icon"`
}

type UploadInfo struct {
	URL      string    `json:"url"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Kind     string    `json:"kind"`
	ModTime  time.Time `json:"mod_time"`
}
