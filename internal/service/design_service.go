package service

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/repository"
)

var ErrDesignNotFound = errors.New("design not found")

// DesignService stores QR designs. The payload is always recomputed from
// the stored fields, never taken from the client.
type DesignService struct {
	repo repository.DesignRepository
	qr   *QRService
}

func NewDesignService(repo repository.DesignRepository, qr *QRService) *DesignService {
	return &DesignService{repo: repo, qr: qr}
}

func (s *DesignService) Create(ctx context.Context, req models.CreateDesignRequest) (*models.Design, error) {
	generated, err := s.qr.Generate(models.GeneratePayloadRequest{
		Kind:           req.Kind,
		Fields:         req.Fields,
		Microsite:      req.Microsite,
		StrictEscaping: req.StrictEscaping,
	})
	if err != nil {
		return nil, err
	}

	fields := req.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	design := &models.Design{
		Name:           req.Name,
		Kind:           generated.Kind,
		Fields:         datatypes.NewJSONType(fields),
		StrictEscaping: req.StrictEscaping,
		MicrositeSlug:  req.MicrositeSlug,
		Payload:        generated.Payload,
		Options:        datatypes.NewJSONType(req.Options.Normalized()),
	}
	if err := s.repo.Create(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

func (s *DesignService) Get(ctx context.Context, id uint) (*models.Design, error) {
	design, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDesignNotFound
		}
		return nil, err
	}
	return design, nil
}

func (s *DesignService) List(ctx context.Context, kind string, limit, offset int) ([]models.Design, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, kind, limit, offset)
}

func (s *DesignService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDesignNotFound
		}
		return err
	}
	return nil
}
