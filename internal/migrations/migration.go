package migrations

import (
	"fmt"

	"neuron_backoffice/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// tables in dependency order.
func tables() []interface{} {
	return []interface{}{
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.Contact{},
		&models.Ticket{},
		&models.WhatsappConversation{},
		&models.WhatsappMessage{},
	}
}

// oneActiveConversationIndex backs the engine's lock at the storage level.
const oneActiveConversationIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_conversation_one_active_per_contact
ON whatsapp_conversations (contact_id) WHERE status = 'ACTIVE'`

// RunMigrations brings the schema up to date and seeds the fixed data. Safe to run on every start.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(oneActiveConversationIndex).Error; err != nil {
		return fmt.Errorf("create active conversation index: %w", err)
	}

	if err := Seed(db, log); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}

// Reset drops every table, join table included.
func Reset(db *gorm.DB, log *zap.Logger) error {
	log.Warn("dropping all tables")
	return db.Migrator().DropTable(
		&models.WhatsappMessage{},
		&models.WhatsappConversation{},
		&models.Ticket{},
		&models.Contact{},
		&models.User{},
		"role_permissions",
		&models.Role{},
		&models.Permission{},
	)
}
