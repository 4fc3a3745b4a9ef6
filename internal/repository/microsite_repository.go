package repository

import (
	"context"

	"qrstudio-backend/internal/models"

	"gorm.io/gorm"
)

type MicrositeRepository interface {
	Create(ctx context.Context, site *models.Microsite) error
	Update(ctx context.Context, site *models.Microsite) error
	Delete(ctx context.Context, id uint) error
	GetBySlug(ctx context.Context, slug string) (*models.Microsite, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.Microsite, int64, error)
}

type micrositeRepository struct {
	db *gorm.DB
}

func NewMicrositeRepository(db *gorm.DB) MicrositeRepository {
	return &micrositeRepository{db: db}
}

func (r *micrositeRepository) Create(ctx context.Context, site *models.Microsite) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *micrositeRepository) Update(ctx context.Context, site *models.Microsite) error {
	return r.db.WithContext(ctx).Save(site).Error
}

func (r *micrositeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Microsite{}, id).Error
}

func (r *micrositeRepository) GetBySlug(ctx context.Context, slug string) (*models.Microsite, error) {
	var site models.Microsite
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *micrositeRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Microsite{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *micrositeRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Microsite{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *micrositeRepository) List(ctx context.Context, limit, offset int) ([]models.Microsite, int64, error) {
	var (
		sites []models.Microsite
		total int64
	)
	query := r.db.WithContext(ctx).Model(&models.Microsite{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&sites).Error; err != nil {
		return nil, 0, err
	}
	return sites, total, nil
}
