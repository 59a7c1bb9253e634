package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/lock"
	"neuron_backoffice/internal/metrics"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"
	"neuron_backoffice/pkg/llm"
	"neuron_backoffice/pkg/whatsapp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessagingChannel is the part of the WhatsApp service the engine depends on.
type MessagingChannel interface {
	IsReady() bool
	SendMessage(ctx context.Context, phone, message string) error
}

type ConversationConfig struct {
	Expiry          time.Duration
	FallbackEnabled bool
	Persona         Persona
}

// ConversationService drives the lead-qualification dialogue.
type ConversationService interface {
	HandleContactCreated(ctx context.Context, contact *models.Contact) error
	HandleInboundMessage(ctx context.Context, from, body string) error
	ExpireIdle(ctx context.Context) (int64, error)
	ListConversations(ctx context.Context, q repository.PaginationQuery, status *models.ConversationStatus) (*repository.Page[models.WhatsappConversation], error)
	GetConversation(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error)
}

type conversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	channel       MessagingChannel
	ai            AIProcessor
	notifier      NotificationService
	locker        lock.Locker
	config        ConversationConfig
	logger        *zap.Logger
	now           func() time.Time
}

func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	channel MessagingChannel,
	ai AIProcessor,
	notifier NotificationService,
	locker lock.Locker,
	config ConversationConfig,
	logger *zap.Logger,
) ConversationService {
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		channel:       channel,
		ai:            ai,
		notifier:      notifier,
		locker:        locker,
		config:        config,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleContactCreated opens a dialogue with a new lead and greets them.
func (s *conversationService) HandleContactCreated(ctx context.Context, contact *models.Contact) error {
	if contact == nil || !contact.HasPhone() {
		return nil
	}
	phone := NormalizePhone(*contact.Phone)
	if phone == "" {
		return nil
	}
	if !s.channel.IsReady() {
		s.logger.Warn("whatsapp not ready, skipping conversation start", zap.String("contact_id", contact.ID.String()))
		return nil
	}

	unlock, err := s.locker.Lock(ctx, "conversation:contact:"+contact.ID.String())
	if err != nil {
		return fmt.Errorf("lock contact %s: %w", contact.ID, err)
	}
	defer unlock()

	existing, err := s.conversations.FindActiveByContactID(ctx, contact.ID)
	switch {
	case err == nil:
		s.logger.Info("contact already has an active conversation",
			zap.String("contact_id", contact.ID.String()),
			zap.String("conversation_id", existing.ID.String()),
		)
		return nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	conversation := &models.WhatsappConversation{
		ContactID:   contact.ID,
		PhoneNumber: phone,
		Status:      models.ConversationActive,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return err
	}
	metrics.ObserveConversationTransition(string(models.ConversationActive))
	s.logger.Info("conversation started",
		zap.String("conversation_id", conversation.ID.String()),
		zap.String("phone", phone),
	)

	return s.sendAndSaveBot(ctx, conversation, s.config.Persona.Greeting(contact))
}

// HandleInboundMessage advances the dialogue the sender is part of, if any.
func (s *conversationService) HandleInboundMessage(ctx context.Context, from, body string) error {
	phone := NormalizePhone(whatsapp.PhoneFromJID(from))
	body = strings.TrimSpace(body)
	if phone == "" || body == "" {
		return nil
	}

	active, err := s.conversations.FindActiveByPhone(ctx, phone)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Debug("no active conversation for sender", zap.String("phone", phone))
		return nil
	}
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, "conversation:"+active.ID.String())
	if err != nil {
		return fmt.Errorf("lock conversation %s: %w", active.ID, err)
	}
	defer unlock()

	// The state may have moved while waiting on the lock.
	conversation, err := s.conversations.FindByID(ctx, active.ID)
	if err != nil {
		return err
	}
	if conversation.Status != models.ConversationActive {
		return nil
	}
	if conversation.Contact == nil {
		conversation.Contact = active.Contact
	}

	if s.now().Sub(conversation.UpdatedAt) > s.config.Expiry {
		if err := s.conversations.Expire(ctx, conversation.ID); err != nil {
			return err
		}
		metrics.ObserveConversationTransition(string(models.ConversationExpired))
		s.logger.Info("conversation expired", zap.String("conversation_id", conversation.ID.String()))
		return nil
	}

	if err := s.messages.Append(ctx, &models.WhatsappMessage{
		ConversationID: conversation.ID,
		Sender:         models.SenderContact,
		Content:        body,
	}); err != nil {
		return err
	}

	history, err := s.messages.FindByConversationID(ctx, conversation.ID)
	if err != nil {
		return err
	}

	response, err := s.ai.Generate(ctx, BuildAIMessages(conversation.Contact, history))
	if err != nil {
		s.logger.Error("ai generation failed",
			zap.String("conversation_id", conversation.ID.String()),
			zap.Error(err),
		)
		if s.config.FallbackEnabled {
			if sendErr := s.sendAndSaveBot(ctx, conversation, s.config.Persona.Apology()); sendErr != nil {
				s.logger.Warn("failed to send fallback message", zap.Error(sendErr))
			}
		}
		return nil
	}

	if call, ok := response.FunctionCall(FinalizeFunctionName); ok {
		return s.finalize(ctx, conversation, call)
	}

	text := strings.TrimSpace(response.Text)
	if text == "" {
		s.logger.Warn("ai returned an empty reply", zap.String("conversation_id", conversation.ID.String()))
		return nil
	}
	return s.sendAndSaveBot(ctx, conversation, text)
}

func (s *conversationService) finalize(ctx context.Context, conversation *models.WhatsappConversation, call *llm.FunctionCall) error {
	args := ParseFinalizeArgs(call.Args)

	name := args.ContactName
	if conversation.Contact != nil && conversation.Contact.Name != "" {
		name = conversation.Contact.Name
	}
	if err := s.sendAndSaveBot(ctx, conversation, s.config.Persona.Farewell(name)); err != nil {
		return err
	}

	brief := s.config.Persona.BuildBrief(conversation, args)
	if err := s.conversations.Complete(ctx, conversation.ID, brief, s.now()); err != nil {
		return err
	}
	metrics.ObserveConversationTransition(string(models.ConversationCompleted))
	s.logger.Info("conversation completed", zap.String("conversation_id", conversation.ID.String()))

	if err := s.notifier.NotifyBrief(ctx, brief); err != nil {
		s.logger.Error("failed to notify admin",
			zap.String("conversation_id", conversation.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *conversationService) sendAndSaveBot(ctx context.Context, conversation *models.WhatsappConversation, text string) error {
	if err := s.channel.SendMessage(ctx, conversation.PhoneNumber, text); err != nil {
		return err
	}
	return s.messages.Append(ctx, &models.WhatsappMessage{
		ConversationID: conversation.ID,
		Sender:         models.SenderBot,
		Content:        text,
	})
}

// ExpireIdle closes every ACTIVE conversation silent for longer than the expiry window.
func (s *conversationService) ExpireIdle(ctx context.Context) (int64, error) {
	n, err := s.conversations.ExpireIdle(ctx, s.now().Add(-s.config.Expiry))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.ObserveConversationTransitions(string(models.ConversationExpired), n)
		s.logger.Info("idle conversations expired", zap.Int64("count", n))
	}
	return n, nil
}

func (s *conversationService) ListConversations(ctx context.Context, q repository.PaginationQuery, status *models.ConversationStatus) (*repository.Page[models.WhatsappConversation], error) {
	return s.conversations.FindAll(ctx, q, status)
}

func (s *conversationService) GetConversation(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error) {
	return s.conversations.FindByIDWithMessages(ctx, id)
}
