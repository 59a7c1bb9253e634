package repository

import (
	"context"

	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Contact], error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

var contactSortColumns = map[string]string{
	"name":  "name",
	"email": "email",
}

func (r *contactRepository) FindAll(ctx context.Context, q PaginationQuery) (*Page[models.Contact], error) {
	return paginate[models.Contact](ctx, r.db, q, contactSortColumns)
}

func (r *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &contact, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	return translateError(r.db.WithContext(ctx).Create(contact).Error)
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	return translateError(r.db.WithContext(ctx).Save(contact).Error)
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id).Error)
}
