package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

// ListFilters narrows the admin user listing.
type ListFilters struct {
	Tag string
}

// Repository defines user persistence, including the bulk tag operations
// used by the push tooling.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.User, string, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	AddTags(ctx context.Context, ids []uuid.UUID, tags []string) (int64, error)
	RemoveTags(ctx context.Context, ids []uuid.UUID, tags []string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository constructs a user repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{db: tx}
}

func (r *gormRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.User, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.User{})
	if tag := strings.TrimSpace(filters.Tag); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.User
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

func (r *gormRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).
		Error
}

// AddTags unions the tag set into each user's tags, deduplicated.
func (r *gormRepository) AddTags(ctx context.Context, ids []uuid.UUID, tags []string) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE users
SET tags = ARRAY(SELECT DISTINCT t FROM unnest(tags || ?::text[]) AS t ORDER BY t), updated_at = now()
WHERE id IN ?`,
		pq.StringArray(tags), ids)
	return result.RowsAffected, result.Error
}

// RemoveTags strips every listed tag from each user's tags.
func (r *gormRepository) RemoveTags(ctx context.Context, ids []uuid.UUID, tags []string) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE users
SET tags = ARRAY(SELECT t FROM unnest(tags) AS t WHERE t <> ALL(?::text[])), updated_at = now()
WHERE id IN ?`,
		pq.StringArray(tags), ids)
	return result.RowsAffected, result.Error
}
