package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/repository"
	"neuron_backoffice/pkg/llm"

	"github.com/google/uuid"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// store backs both conversation and message fakes so Append can touch updated_at.
type store struct {
	mu            sync.Mutex
	clock         *clock
	contacts      map[uuid.UUID]*models.Contact
	conversations map[uuid.UUID]*models.WhatsappConversation
	messages      []models.WhatsappMessage
}

func newStore(c *clock) *store {
	return &store{
		clock:         c,
		contacts:      map[uuid.UUID]*models.Contact{},
		conversations: map[uuid.UUID]*models.WhatsappConversation{},
	}
}

type fakeConversationRepo struct{ s *store }

func (r *fakeConversationRepo) withContact(c models.WhatsappConversation) *models.WhatsappConversation {
	c.Contact = r.s.contacts[c.ContactID]
	return &c
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, q repository.PaginationQuery, status *models.ConversationStatus) (*repository.Page[models.WhatsappConversation], error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	page := &repository.Page[models.WhatsappConversation]{Data: []models.WhatsappConversation{}}
	for _, c := range r.s.conversations {
		if status == nil || c.Status == *status {
			page.Data = append(page.Data, *c)
		}
	}
	page.Meta.TotalItems = int64(len(page.Data))
	return page, nil
}

func (r *fakeConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.withContact(*c), nil
}

func (r *fakeConversationRepo) FindByIDWithMessages(ctx context.Context, id uuid.UUID) (*models.WhatsappConversation, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.ConversationID == id {
			c.Messages = append(c.Messages, m)
		}
	}
	sort.SliceStable(c.Messages, func(i, j int) bool { return c.Messages[i].CreatedAt.Before(c.Messages[j].CreatedAt) })
	return c, nil
}

func (r *fakeConversationRepo) findActive(match func(*models.WhatsappConversation) bool) (*models.WhatsappConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *models.WhatsappConversation
	for _, c := range r.s.conversations {
		if c.Status == models.ConversationActive && match(c) {
			if found == nil || c.UpdatedAt.After(found.UpdatedAt) {
				found = c
			}
		}
	}
	if found == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.withContact(*found), nil
}

func (r *fakeConversationRepo) FindActiveByContactID(ctx context.Context, contactID uuid.UUID) (*models.WhatsappConversation, error) {
	return r.findActive(func(c *models.WhatsappConversation) bool { return c.ContactID == contactID })
}

func (r *fakeConversationRepo) FindActiveByPhone(ctx context.Context, phone string) (*models.WhatsappConversation, error) {
	return r.findActive(func(c *models.WhatsappConversation) bool { return c.PhoneNumber == phone })
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *models.WhatsappConversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.conversations {
		if c.ContactID == conversation.ContactID && c.Status == models.ConversationActive {
			return apperrors.ErrConflict
		}
	}
	now := r.s.clock.Now()
	conversation.ID = uuid.New()
	conversation.CreatedAt, conversation.UpdatedAt = now, now
	stored := *conversation
	stored.Contact = nil
	r.s.conversations[conversation.ID] = &stored
	return nil
}

func (r *fakeConversationRepo) transition(id uuid.UUID, apply func(*models.WhatsappConversation)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[id]
	if !ok || c.Status != models.ConversationActive {
		return apperrors.ErrNotFound
	}
	apply(c)
	c.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *fakeConversationRepo) Expire(ctx context.Context, id uuid.UUID) error {
	return r.transition(id, func(c *models.WhatsappConversation) { c.Status = models.ConversationExpired })
}

func (r *fakeConversationRepo) Complete(ctx context.Context, id uuid.UUID, summary string, sentAt time.Time) error {
	return r.transition(id, func(c *models.WhatsappConversation) {
		c.Status = models.ConversationCompleted
		c.Summary = &summary
		c.SummarySentAt = &sentAt
	})
}

func (r *fakeConversationRepo) ExpireIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.conversations {
		if c.Status == models.ConversationActive && c.UpdatedAt.Before(cutoff) {
			c.Status = models.ConversationExpired
			n++
		}
	}
	return n, nil
}

type fakeMessageRepo struct{ s *store }

func (r *fakeMessageRepo) Append(ctx context.Context, message *models.WhatsappMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conversations[message.ConversationID]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := r.s.clock.Now()
	message.ID = uuid.New()
	message.CreatedAt = now
	r.s.messages = append(r.s.messages, *message)
	c.UpdatedAt = now
	return nil
}

func (r *fakeMessageRepo) FindByConversationID(ctx context.Context, conversationID uuid.UUID) ([]models.WhatsappMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.WhatsappMessage
	for _, m := range r.s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type sentMessage struct {
	Phone string
	Text  string
}

type fakeChannel struct {
	mu    sync.Mutex
	ready bool
	fail  bool
	sent  []sentMessage
}

func (c *fakeChannel) IsReady() bool { return c.ready }

func (c *fakeChannel) SendMessage(ctx context.Context, phone, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return apperrors.ErrChannelNotReady
	}
	if c.fail {
		return errors.New("gateway down")
	}
	c.sent = append(c.sent, sentMessage{Phone: phone, Text: message})
	return nil
}

func (c *fakeChannel) Sent() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

type fakeAI struct {
	mu        sync.Mutex
	responses []*llm.Response
	err       error
	calls     [][]llm.Message
}

func (a *fakeAI) Generate(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, messages)
	if a.err != nil {
		return nil, a.err
	}
	if len(a.responses) == 0 {
		return nil, fmt.Errorf("%w: no scripted response", apperrors.ErrGenerationFailed)
	}
	r := a.responses[0]
	a.responses = a.responses[1:]
	return r, nil
}

type fakeNotifier struct {
	briefs []string
	err    error
}

func (n *fakeNotifier) NotifyBrief(ctx context.Context, brief string) error {
	n.briefs = append(n.briefs, brief)
	return n.err
}
