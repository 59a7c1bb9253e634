package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
)

type CreateUserInput struct {
	Name     string    `json:"name" binding:"required,min=3,max=100"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=6"`
	RoleID   uuid.UUID `json:"roleId" binding:"required"`
	IsActive *bool     `json:"isActive"`
}

type UpdateUserInput struct {
	Name     *string    `json:"name" binding:"omitempty,min=3,max=100"`
	Email    *string    `json:"email" binding:"omitempty,email"`
	Password *string    `json:"password" binding:"omitempty,min=6"`
	RoleID   *uuid.UUID `json:"roleId"`
	IsActive *bool      `json:"isActive"`
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUsers(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.User], error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, input.RoleID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    email,
		Password: hashedPassword,
		IsActive: true,
		RoleID:   role.ID,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *userService) GetUsers(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.User], error) {
	return s.userRepo.FindAll(ctx, q)
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		hashedPassword, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}
	if input.RoleID != nil && *input.RoleID != user.RoleID {
		role, err := s.findRole(ctx, *input.RoleID)
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("email %s already registered: %w", email, apperrors.ErrConflict)
	}
	return nil
}

func (s *userService) findRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", id, err)
	}
	return role, nil
}
