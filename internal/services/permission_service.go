package services

import (
	"context"

	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
)

// PermissionService is read-only; permissions only come from the seed.
type PermissionService interface {
	GetPermissions(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Permission], error)
	GetPermissionByID(ctx context.Context, id uuid.UUID) (*models.Permission, error)
}

type permissionService struct {
	permissionRepo repository.PermissionRepository
}

func NewPermissionService(permissionRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permissionRepo: permissionRepo}
}

func (s *permissionService) GetPermissions(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Permission], error) {
	return s.permissionRepo.FindAll(ctx, q)
}

func (s *permissionService) GetPermissionByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	return s.permissionRepo.FindByID(ctx, id)
}
