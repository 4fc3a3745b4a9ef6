package service

import (
	"context"
	"mime/multipart"

	"qrstudio-backend/internal/microsite"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/qrcontent"
	"qrstudio-backend/internal/render"
)

type QRUseCase interface {
	Kinds() []qrcontent.KindSpec
	Generate(models.GeneratePayloadRequest) (*models.PayloadResponse, error)
	ResolvePayload(models.RenderRequest) (string, error)
	DecodeMicrosite(string) (microsite.Config, error)
}

type RenderUseCase interface {
	Render(context.Context, string, models.VisualOptions, render.Format) (*RenderResult, error)
	RenderRaw(context.Context, string, models.VisualOptions) (*RenderResult, error)
}

type MicrositeUseCase interface {
	Create(context.Context, models.CreateMicrositeRequest) (*models.MicrositeResponse, error)
	Get(context.Context, string) (*models.Microsite, error)
	List(context.Context, int, int) ([]models.Microsite, int64, error)
	Response(*models.Microsite, string) *models.MicrositeResponse
	Replace(context.Context, string, string, microsite.Config) (*models.MicrositeResponse, error)
	AddLink(context.Context, string, string, microsite.Link) (microsite.Link, error)
	UpdateLink(context.Context, string, string, string, microsite.Link) (microsite.Link, error)
	RemoveLink(context.Context, string, string, string) error
	ReorderLinks(context.Context, string, string, []string) ([]microsite.Link, error)
	RotateEditToken(context.Context, string, string) (string, error)
	Delete(context.Context, string, string) error
	RecordView(context.Context, *models.Microsite)
}

type DesignUseCase interface {
	Create(context.Context, models.CreateDesignRequest) (*models.Design, error)
	Get(context.Context, uint) (*models.Design, error)
	List(context.Context, string, int, int) ([]models.Design, int64, error)
	Delete(context.Context, uint) error
}

type UploadUseCase interface {
	Upload(*multipart.FileHeader, string) (*models.UploadResult, error)
	List() ([]models.UploadInfo, error)
	Delete(string) error
}

var (
	_ QRUseCase        = (*QRService)(nil)
	_ RenderUseCase    = (*RenderService)(nil)
	_ MicrositeUseCase = (*MicrositeService)(nil)
	_ DesignUseCase    = (*DesignService)(nil)
	_ UploadUseCase    = (*UploadService)(nil)
)
