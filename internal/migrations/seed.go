package migrations

import (
	"errors"
	"fmt"
	"strings"

	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var resourceLabels = map[models.Resource]string{
	models.ResourceContacts:              "contatos",
	models.ResourceUsers:                 "usuários",
	models.ResourceRoles:                 "roles",
	models.ResourcePermissions:           "permissões",
	models.ResourceTickets:               "tickets",
	models.ResourceWhatsappConversations: "conversas do WhatsApp",
}

var actionVerbs = map[models.Action]string{
	models.ActionCreate: "criar",
	models.ActionRead:   "visualizar",
	models.ActionUpdate: "atualizar",
	models.ActionDelete: "remover",
}

type seedUser struct {
	name     string
	email    string
	password string
	role     string
	active   bool
}

var defaultUsers = []seedUser{
	{name: "Admin Neuron", email: "admin@neuron.dev", password: "Admin@123", role: models.AdminRoleName, active: true},
	{name: "Ivan Reis", email: "ivan@neuron.dev", password: "User@1234", role: "USER", active: true},
	{name: "Maria Silva", email: "maria@email.com", password: "User@1234", role: "USER", active: false},
}

// Seed upserts permissions, resets the two built-in roles to their permission
// sets and creates missing users. Existing users keep their passwords.
func Seed(db *gorm.DB, log *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		permissions, err := seedPermissions(tx)
		if err != nil {
			return err
		}

		var contactsRead []models.Permission
		for _, p := range permissions {
			if p.Resource == models.ResourceContacts && p.Action == models.ActionRead {
				contactsRead = append(contactsRead, p)
			}
		}

		roles := map[string]*models.Role{}
		for _, spec := range []struct {
			name        string
			description string
			permissions []models.Permission
		}{
			{models.AdminRoleName, "Administrador com acesso total ao sistema", permissions},
			{"USER", "Usuário padrão com permissões limitadas", contactsRead},
		} {
			role, err := seedRole(tx, spec.name, spec.description, spec.permissions)
			if err != nil {
				return err
			}
			roles[spec.name] = role
		}

		users := map[string]*models.User{}
		for _, spec := range defaultUsers {
			user, err := seedOneUser(tx, spec, roles[spec.role])
			if err != nil {
				return err
			}
			users[spec.email] = user
		}

		if err := seedTickets(tx, users["admin@neuron.dev"], users["ivan@neuron.dev"]); err != nil {
			return err
		}

		log.Info("seed applied",
			zap.Int("permissions", len(permissions)),
			zap.Int("roles", len(roles)),
			zap.Int("users", len(users)),
		)
		return nil
	})
}

func seedPermissions(tx *gorm.DB) ([]models.Permission, error) {
	var permissions []models.Permission
	for _, resource := range models.AllResources {
		for _, action := range models.AllActions {
			permissions = append(permissions, models.Permission{
				Resource:    resource,
				Action:      action,
				Description: fmt.Sprintf("Permite %s %s", actionVerbs[action], resourceLabels[resource]),
			})
		}
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
	}).Create(&permissions).Error
	if err != nil {
		return nil, fmt.Errorf("permissions: %w", err)
	}

	// Upserted rows keep their original ids, so read them back.
	var stored []models.Permission
	if err := tx.Order("resource, action").Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("permissions: %w", err)
	}
	return stored, nil
}

func seedRole(tx *gorm.DB, name, description string, permissions []models.Permission) (*models.Role, error) {
	role := models.Role{Name: name}
	err := tx.Where(models.Role{Name: name}).
		Attrs(models.Role{Description: description, IsActive: true}).
		Omit("Permissions").
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", name, err)
	}
	if err := tx.Model(&role).Association("Permissions").Replace(permissions); err != nil {
		return nil, fmt.Errorf("role %s permissions: %w", name, err)
	}
	return &role, nil
}

func seedOneUser(tx *gorm.DB, spec seedUser, role *models.Role) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", strings.ToLower(spec.email)).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %s: %w", spec.email, err)
	}

	hash, err := auth.HashPassword(spec.password)
	if err != nil {
		return nil, err
	}
	user = models.User{
		Name:     spec.name,
		Email:    spec.email,
		Password: hash,
		IsActive: spec.active,
		RoleID:   role.ID,
	}
	if err := tx.Omit("Role").Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", spec.email, err)
	}
	return &user, nil
}

func seedTickets(tx *gorm.DB, admin, regular *models.User) error {
	var count int64
	if err := tx.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tickets := []models.Ticket{
		{
			Title:       "Erro ao carregar dashboard",
			Description: "O dashboard não carrega os gráficos de desempenho após o login.",
			Priority:    models.PriorityHigh,
			Status:      models.TicketOpen,
			Links:       []string{"https://exemplo.com/logs/dashboard-error.txt"},
			UserID:      regular.ID,
		},
		{
			Title:       "Botão de exportação não funciona",
			Description: "Ao clicar no botão de exportar relatório em PDF, nada acontece.",
			Priority:    models.PriorityMedium,
			Status:      models.TicketInProgress,
			Links:       []string{},
			UserID:      regular.ID,
		},
		{
			Title:       "Atualizar dependências do projeto",
			Description: "Atualizar todas as dependências do projeto para as versões mais recentes.",
			Priority:    models.PriorityLow,
			Status:      models.TicketOpen,
			Links:       []string{"https://exemplo.com/docs/upgrade-guide.md", "https://exemplo.com/changelog.md"},
			UserID:      admin.ID,
		},
		{
			Title:       "Sistema fora do ar em produção",
			Description: "O servidor de produção retorna erro 502 Bad Gateway para todas as requisições.",
			Priority:    models.PriorityUrgent,
			Status:      models.TicketOpen,
			Links:       []string{"https://exemplo.com/monitoring/incident-001.png"},
			UserID:      admin.ID,
		},
		{
			Title:       "Melhoria no formulário de contato",
			Description: "Adicionar validação de telefone no formulário de contato do portfólio.",
			Priority:    models.PriorityLow,
			Status:      models.TicketClosed,
			Links:       []string{},
			UserID:      regular.ID,
		},
	}
	return tx.Omit("User").Create(&tickets).Error
}
