package enquiries

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

// ListFilters narrows the admin enquiry listing.
type ListFilters struct {
	// Resolved filters by resolution state; nil returns everything.
	Resolved *bool
}

// Repository persists contact-form enquiries.
type Repository interface {
	Create(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Enquiry, string, error)
	MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs an enquiry repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, enquiry *models.Enquiry) (*models.Enquiry, error) {
	if err := r.db.WithContext(ctx).Create(enquiry).Error; err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (r *gormRepository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Enquiry, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.Enquiry{})
	if filters.Resolved != nil {
		query = query.Where("resolved = ?", *filters.Resolved)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Enquiry
	if err := query.
		Order("created_at DESC").Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}

func (r *gormRepository) MarkResolved(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Enquiry{}).
		Where("id = ? AND resolved = false", id).
		Updates(map[string]any{"resolved": true, "resolved_at": at})
	return result.RowsAffected, result.Error
}
