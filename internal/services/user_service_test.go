package services

import (
	"context"
	"testing"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRoleRepo struct {
	roles       map[uuid.UUID]*models.Role
	users       map[uuid.UUID]int64
	permissions []models.Permission
}

func (r *memRoleRepo) FindAll(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Role], error) {
	return &repository.Page[models.Role]{}, nil
}

func (r *memRoleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memRoleRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memRoleRepo) Create(ctx context.Context, role *models.Role) error {
	role.ID = uuid.New()
	r.roles[role.ID] = role
	return nil
}

func (r *memRoleRepo) Update(ctx context.Context, role *models.Role, permissions []models.Permission) error {
	if permissions != nil {
		role.Permissions = permissions
	}
	r.roles[role.ID] = role
	return nil
}

func (r *memRoleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.roles, id)
	return nil
}

func (r *memRoleRepo) CountUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.users[id], nil
}

func TestCreateUser(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: uuid.New()}, Name: "USER", IsActive: true}
	roles := &memRoleRepo{roles: map[uuid.UUID]*models.Role{role.ID: role}}
	users := &stubUserRepo{users: map[string]*models.User{}}
	svc := NewUserService(users, roles)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana Lima", Email: " Ana@Neuron.dev ", Password: "segredo1", RoleID: role.ID})
	require.NoError(t, err)
	assert.Equal(t, "ana@neuron.dev", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "segredo1", user.Password)
	assert.NoError(t, auth.VerifyPassword(user.Password, "segredo1"))

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Ana Dois", Email: "ana@neuron.dev", Password: "segredo1", RoleID: role.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Bia", Email: "bia@neuron.dev", Password: "segredo1", RoleID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateUserKeepsOwnEmail(t *testing.T) {
	role := &models.Role{Base: models.Base{ID: uuid.New()}, Name: "USER", IsActive: true}
	roles := &memRoleRepo{roles: map[uuid.UUID]*models.Role{role.ID: role}}
	users := &stubUserRepo{users: map[string]*models.User{}}
	svc := NewUserService(users, roles)
	ctx := context.Background()

	ana, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana Lima", Email: "ana@neuron.dev", Password: "segredo1", RoleID: role.ID})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Bia Lima", Email: "bia@neuron.dev", Password: "segredo1", RoleID: role.ID})
	require.NoError(t, err)

	same := "ana@neuron.dev"
	inactive := false
	updated, err := svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Email: &same, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	taken := "bia@neuron.dev"
	_, err = svc.UpdateUser(ctx, ana.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRoleLifecycle(t *testing.T) {
	perm := models.Permission{Base: models.Base{ID: uuid.New()}, Resource: models.ResourceTickets, Action: models.ActionRead}
	roles := &memRoleRepo{roles: map[uuid.UUID]*models.Role{}, users: map[uuid.UUID]int64{}}
	svc := NewRoleService(roles, &memPermissionRepo{permissions: []models.Permission{perm}})
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{Name: "SUPPORT", PermissionIDs: []uuid.UUID{perm.ID}})
	require.NoError(t, err)
	assert.True(t, role.IsActive)
	assert.Equal(t, []string{"tickets:read"}, role.PermissionKeys())

	_, err = svc.CreateRole(ctx, CreateRoleInput{Name: "SUPPORT"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.CreateRole(ctx, CreateRoleInput{Name: "OTHER", PermissionIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := svc.UpdateRole(ctx, role.ID, UpdateRoleInput{PermissionIDs: []uuid.UUID{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Permissions)

	roles.users[role.ID] = 2
	assert.ErrorIs(t, svc.DeleteRole(ctx, role.ID), apperrors.ErrConflict)

	roles.users[role.ID] = 0
	assert.NoError(t, svc.DeleteRole(ctx, role.ID))
	assert.ErrorIs(t, svc.DeleteRole(ctx, role.ID), apperrors.ErrNotFound)
}

type memPermissionRepo struct {
	permissions []models.Permission
}

func (r *memPermissionRepo) FindAll(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Permission], error) {
	return &repository.Page[models.Permission]{Data: r.permissions}, nil
}

func (r *memPermissionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	for i := range r.permissions {
		if r.permissions[i].ID == id {
			return &r.permissions[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memPermissionRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	out := []models.Permission{}
	for _, id := range ids {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
