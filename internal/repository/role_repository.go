package repository

import (
	"context"

	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Role], error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role, permissions []models.Permission) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, id uuid.UUID) (int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

var roleSortColumns = map[string]string{
	"name": "name",
}

func (r *roleRepository) FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Role], error) {
	return paginate[models.Role](ctx, r.db, q, roleSortColumns, "Permissions")
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return translateError(r.db.WithContext(ctx).Create(role).Error)
}

// Update saves the role columns and, when permissions is non-nil, replaces its permission set.
func (r *roleRepository) Update(ctx context.Context, role *models.Role, permissions []models.Permission) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Save(role).Error; err != nil {
			return err
		}
		if permissions == nil {
			return nil
		}
		if err := tx.Model(role).Association("Permissions").Replace(permissions); err != nil {
			return err
		}
		role.Permissions = permissions
		return nil
	}))
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role := models.Role{Base: models.Base{ID: id}}
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, "id = ?", id).Error
	}))
}

func (r *roleRepository) CountUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("role_id = ?", id).Count(&count).Error
	return count, translateError(err)
}
