package repository

import (
	"context"
	"fmt"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionRepository interface {
	FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Permission], error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Permission, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error)
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

var permissionSortColumns = map[string]string{
	"resource": "resource",
	"action":   "action",
}

func (r *permissionRepository) FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Permission], error) {
	return paginate[models.Permission](ctx, r.db, q, permissionSortColumns)
}

func (r *permissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	var permission models.Permission
	if err := r.db.WithContext(ctx).First(&permission, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &permission, nil
}

// FindByIDs resolves every id or fails with NotFound naming the first missing one.
func (r *permissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	permissions := []models.Permission{}
	if len(ids) == 0 {
		return permissions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&permissions).Error; err != nil {
		return nil, translateError(err)
	}

	found := make(map[uuid.UUID]bool, len(permissions))
	for _, p := range permissions {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("permission %s: %w", id, apperrors.ErrNotFound)
		}
	}
	return permissions, nil
}
