package repository

import (
	"context"

	"qrstudio-backend/internal/models"

	"gorm.io/gorm"
)

type DesignRepository interface {
	Create(ctx context.Context, design *models.Design) error
	GetByID(ctx context.Context, id uint) (*models.Design, error)
	List(ctx context.Context, kind string, limit, offset int) ([]models.Design, int64, error)
	Delete(ctx context.Context, id uint) error
}

type designRepository struct {
	db *gorm.DB
}

func NewDesignRepository(db *gorm.DB) DesignRepository {
	return &designRepository{db: db}
}

func (r *designRepository) Create(ctx context.Context, design *models.Design) error {
	return r.db.WithContext(ctx).Create(design).Error
}

func (r *designRepository) GetByID(ctx context.Context, id uint) (*models.Design, error) {
	var design models.Design
	if err := r.db.WithContext(ctx).First(&design, id).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

func (r *designRepository) List(ctx context.Context, kind string, limit, offset int) ([]models.Design, int64, error) {
	var (
		designs []models.Design
		total   int64
	)
	query := r.db.WithContext(ctx).Model(&models.Design{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&designs).Error; err != nil {
		return nil, 0, err
	}
	return designs, total, nil
}

func (r *designRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Design{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
