package services

import (
	"context"

	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"

	"github.com/google/uuid"
)

type CreateContactInput struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=30"`
	Description string  `json:"description" binding:"required"`
}

type UpdateContactInput struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=30"`
	Description *string `json:"description"`
}

// ContactCreatedNotifier is told about every stored contact.
type ContactCreatedNotifier interface {
	ContactCreated(contact models.Contact)
}

type ContactService interface {
	CreateContact(ctx context.Context, input CreateContactInput) (*models.Contact, error)
	GetContacts(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Contact], error)
	GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	UpdateContact(ctx context.Context, id uuid.UUID, input UpdateContactInput) (*models.Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) error
}

type contactService struct {
	contactRepo repository.ContactRepository
	notifier    ContactCreatedNotifier
}

func NewContactService(contactRepo repository.ContactRepository, notifier ContactCreatedNotifier) ContactService {
	return &contactService{contactRepo: contactRepo, notifier: notifier}
}

func (s *contactService) CreateContact(ctx context.Context, input CreateContactInput) (*models.Contact, error) {
	contact := &models.Contact{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Description: input.Description,
	}
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ContactCreated(*contact)
	}
	return contact, nil
}

func (s *contactService) GetContacts(ctx context.Context, q repository.PaginationQuery) (*repository.Page[models.Contact], error) {
	return s.contactRepo.FindAll(ctx, q)
}

func (s *contactService) GetContactByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return s.contactRepo.FindByID(ctx, id)
}

func (s *contactService) UpdateContact(ctx context.Context, id uuid.UUID, input UpdateContactInput) (*models.Contact, error) {
	contact, err := s.contactRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		contact.Name = *input.Name
	}
	if input.Email != nil {
		contact.Email = *input.Email
	}
	if input.Phone != nil {
		contact.Phone = input.Phone
	}
	if input.Description != nil {
		contact.Description = *input.Description
	}
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) DeleteContact(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contactRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, id)
}
