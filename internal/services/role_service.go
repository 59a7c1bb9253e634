package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
)

type CreateRoleInput struct {
	Name          string      `json:"name" binding:"required,max=50"`
	Description   string      `json:"description" binding:"max=255"`
	IsActive      *bool       `json:"isActive"`
	PermissionIDs []uuid.UUID `json:"permissionIds"`
}

// UpdateRoleInput leaves the permission set untouched when PermissionIDs is
// absent; an empty list clears it.
type UpdateRoleInput struct {
	Name          *string     `json:"name" binding:"omitempty,max=50"`
	Description   *string     `json:"description" binding:"omitempty,max=255"`
	IsActive      *bool       `json:"isActive"`
	PermissionIDs []uuid.UUID `json:"permissionIds"`
}

type RoleService interface {
	CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error)
	GetRoles(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Role], error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*models.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
}

type roleService struct {
	roleRepo       repository.RoleRepository
	permissionRepo repository.PermissionRepository
}

func NewRoleService(roleRepo repository.RoleRepository, permissionRepo repository.PermissionRepository) RoleService {
	return &roleService{roleRepo: roleRepo, permissionRepo: permissionRepo}
}

func (s *roleService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	permissions, err := s.permissionRepo.FindByIDs(ctx, input.PermissionIDs)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
		Permissions: permissions,
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *roleService) GetRoles(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Role], error) {
	return s.roleRepo.FindAll(ctx, q)
}

func (s *roleService) GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.roleRepo.FindByID(ctx, id)
}

func (s *roleService) UpdateRole(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*models.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != role.Name {
			if err := s.ensureNameFree(ctx, name, role.ID); err != nil {
				return nil, err
			}
			role.Name = name
		}
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}

	var permissions []models.Permission
	if input.PermissionIDs != nil {
		permissions, err = s.permissionRepo.FindByIDs(ctx, input.PermissionIDs)
		if err != nil {
			return nil, err
		}
		if permissions == nil {
			permissions = []models.Permission{}
		}
	}

	if err := s.roleRepo.Update(ctx, role, permissions); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole refuses to orphan users still assigned to the role.
func (s *roleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if _, err := s.roleRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.roleRepo.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("role %s is assigned to %d users: %w", id, count, apperrors.ErrConflict)
	}
	return s.roleRepo.Delete(ctx, id)
}

func (s *roleService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.roleRepo.FindByName(ctx, name)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("role %s already exists: %w", name, apperrors.ErrConflict)
	}
	return nil
}
