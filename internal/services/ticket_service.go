package services

import (
	"context"
	"fmt"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/authz"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
)

type CreateTicketInput struct {
	Title       string                `json:"title" binding:"required,max=200"`
	Description string                `json:"description" binding:"required"`
	Priority    models.TicketPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status      models.TicketStatus   `json:"status" binding:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Links       []string              `json:"links" binding:"omitempty,dive,url"`
}

type UpdateTicketInput struct {
	Title       *string                `json:"title" binding:"omitempty,max=200"`
	Description *string                `json:"description"`
	Priority    *models.TicketPriority `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status      *models.TicketStatus   `json:"status" binding:"omitempty,oneof=OPEN IN_PROGRESS RESOLVED CLOSED"`
	Links       []string               `json:"links" binding:"omitempty,dive,url"`
}

// TicketService applies the ownership overlay on top of the route permission:
// ADMIN sees every ticket, anyone else only their own.
type TicketService interface {
	CreateTicket(ctx context.Context, claims *auth.Claims, input CreateTicketInput) (*models.Ticket, error)
	GetTickets(ctx context.Context, claims *auth.Claims, q repository.PaginationQuery) (*repository.Page[models.Ticket], error)
	GetTicketByID(ctx context.Context, claims *auth.Claims, id uuid.UUID) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, claims *auth.Claims, id uuid.UUID, input UpdateTicketInput) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, claims *auth.Claims, id uuid.UUID) error
}

type ticketService struct {
	ticketRepo repository.TicketRepository
}

func NewTicketService(ticketRepo repository.TicketRepository) TicketService {
	return &ticketService{ticketRepo: ticketRepo}
}

func (s *ticketService) CreateTicket(ctx context.Context, claims *auth.Claims, input CreateTicketInput) (*models.Ticket, error) {
	userID, err := subject(claims)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		Links:       input.Links,
		UserID:      userID,
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if ticket.Links == nil {
		ticket.Links = []string{}
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) GetTickets(ctx context.Context, claims *auth.Claims, q repository.PaginationQuery) (*repository.Page[models.Ticket], error) {
	if authz.IsAdmin(claims) {
		return s.ticketRepo.FindAll(ctx, q, nil)
	}
	userID, err := subject(claims)
	if err != nil {
		return nil, err
	}
	return s.ticketRepo.FindAll(ctx, q, &userID)
}

func (s *ticketService) GetTicketByID(ctx context.Context, claims *auth.Claims, id uuid.UUID) (*models.Ticket, error) {
	return s.findOwned(ctx, claims, id)
}

func (s *ticketService) UpdateTicket(ctx context.Context, claims *auth.Claims, id uuid.UUID, input UpdateTicketInput) (*models.Ticket, error) {
	ticket, err := s.findOwned(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		ticket.Title = *input.Title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Links != nil {
		ticket.Links = input.Links
	}

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) DeleteTicket(ctx context.Context, claims *auth.Claims, id uuid.UUID) error {
	if _, err := s.findOwned(ctx, claims, id); err != nil {
		return err
	}
	return s.ticketRepo.Delete(ctx, id)
}

func (s *ticketService) findOwned(ctx context.Context, claims *auth.Claims, id uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessOwned(claims, ticket.UserID) {
		return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrForbidden)
	}
	return ticket, nil
}

func subject(claims *auth.Claims) (uuid.UUID, error) {
	if claims == nil {
		return uuid.Nil, apperrors.ErrUnauthenticated
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad subject claim: %w", apperrors.ErrUnauthenticated)
	}
	return id, nil
}
