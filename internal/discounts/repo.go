package discounts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
)

// Repository defines discount code persistence.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	Create(ctx context.Context, dc *models.DiscountCode) (*models.DiscountCode, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context) ([]models.DiscountCode, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a discount repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = UPPER(?)", strings.TrimSpace(code)).
		First(&dc).Error
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

func (r *gormRepository) Create(ctx context.Context, dc *models.DiscountCode) (*models.DiscountCode, error) {
	if err := r.db.WithContext(ctx).Create(dc).Error; err != nil {
		return nil, err
	}
	return dc, nil
}

func (r *gormRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DiscountCode{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.DiscountCode{})
	return result.RowsAffected, result.Error
}

func (r *gormRepository) List(ctx context.Context) ([]models.DiscountCode, error) {
	var rows []models.DiscountCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
