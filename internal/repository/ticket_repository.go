package repository

import (
	"context"

	"neuron_backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketRepository interface {
	// FindAll lists every ticket when ownerID is nil, else only that user's tickets.
	FindAll(ctx context.Context, q PaginationQuery, ownerID *uuid.UUID) (*Page[models.Ticket], error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	Create(ctx context.Context, ticket *models.Ticket) error
	Update(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

var ticketSortColumns = map[string]string{
	"title":    "title",
	"priority": "priority",
	"status":   "status",
}

func (r *ticketRepository) FindAll(ctx context.Context, q PaginationQuery, ownerID *uuid.UUID) (*Page[models.Ticket], error) {
	scoped := r.db
	if ownerID != nil {
		scoped = scoped.Where("user_id = ?", *ownerID)
	}
	return paginate[models.Ticket](ctx, scoped, q, ticketSortColumns)
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(ticket).Error)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Save(ticket).Error)
}

func (r *ticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Delete(&models.Ticket{}, "id = ?", id).Error)
}
