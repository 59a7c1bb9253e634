package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"neuron_backoffice/internal/lock"
	"neuron_backoffice/internal/models"
	"neuron_backoffice/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type engineFixture struct {
	clock    *clock
	store    *store
	channel  *fakeChannel
	ai       *fakeAI
	notifier *fakeNotifier
	service  ConversationService
}

func newEngine(t *testing.T, fallback bool) *engineFixture {
	t.Helper()
	c := newClock()
	s := newStore(c)
	f := &engineFixture{
		clock:    c,
		store:    s,
		channel:  &fakeChannel{ready: true},
		ai:       &fakeAI{},
		notifier: &fakeNotifier{},
	}
	svc := NewConversationService(
		&fakeConversationRepo{s: s},
		&fakeMessageRepo{s: s},
		f.channel,
		f.ai,
		f.notifier,
		lock.NewLocal(),
		ConversationConfig{
			Expiry:          24 * time.Hour,
			FallbackEnabled: fallback,
			Persona:         Persona{BotName: "Noah", CompanyName: "Ivan Reis Tecnologia"},
		},
		zap.NewNop(),
	)
	svc.(*conversationService).now = c.Now
	f.service = svc
	return f
}

func (f *engineFixture) addContact(phone *string) *models.Contact {
	contact := &models.Contact{
		Base:        models.Base{ID: uuid.New()},
		Name:        "Maria",
		Email:       "maria@x.com",
		Phone:       phone,
		Description: "Preciso de um app de agendamento",
	}
	f.store.contacts[contact.ID] = contact
	return contact
}

func (f *engineFixture) conversations() []models.WhatsappConversation {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	out := make([]models.WhatsappConversation, 0, len(f.store.conversations))
	for _, c := range f.store.conversations {
		out = append(out, *c)
	}
	return out
}

func strPtr(s string) *string { return &s }

func (f *engineFixture) start(t *testing.T) (*models.Contact, models.WhatsappConversation) {
	t.Helper()
	contact := f.addContact(strPtr("(21) 99999-9999"))
	require.NoError(t, f.service.HandleContactCreated(context.Background(), contact))
	convs := f.conversations()
	require.Len(t, convs, 1)
	return contact, convs[0]
}

func TestContactWithoutPhoneStartsNothing(t *testing.T) {
	f := newEngine(t, false)

	require.NoError(t, f.service.HandleContactCreated(context.Background(), f.addContact(nil)))
	require.NoError(t, f.service.HandleContactCreated(context.Background(), f.addContact(strPtr(""))))

	assert.Empty(t, f.conversations())
	assert.Empty(t, f.channel.Sent())
}

func TestChannelNotReadySkipsGreeting(t *testing.T) {
	f := newEngine(t, false)
	f.channel.ready = false

	require.NoError(t, f.service.HandleContactCreated(context.Background(), f.addContact(strPtr("21999999999"))))
	assert.Empty(t, f.conversations())
}

func TestContactCreatedGreetsAndPersists(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)

	assert.Equal(t, "5521999999999", conv.PhoneNumber)
	assert.Equal(t, models.ConversationActive, conv.Status)

	sent := f.channel.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "5521999999999", sent[0].Phone)
	assert.Contains(t, sent[0].Text, "*Maria*")
	assert.Contains(t, sent[0].Text, "Preciso de um app de agendamento")

	full, err := f.service.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, full.Messages, 1)
	assert.Equal(t, models.SenderBot, full.Messages[0].Sender)
}

func TestSingleActiveConversationPerContact(t *testing.T) {
	f := newEngine(t, false)
	contact := f.addContact(strPtr("5521999999999"))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.service.HandleContactCreated(context.Background(), contact))
		}()
	}
	wg.Wait()

	assert.Len(t, f.conversations(), 1)
	assert.Len(t, f.channel.Sent(), 1)
}

func TestInboundWithoutActiveConversationIsDropped(t *testing.T) {
	f := newEngine(t, false)

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521988887777@s.whatsapp.net", "oi"))

	assert.Empty(t, f.conversations())
	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.ai.calls)
}

func TestStaleConversationExpiresWithoutReply(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)
	f.clock.Advance(25 * time.Hour)

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999@s.whatsapp.net", "ainda ai?"))

	got := f.store.conversations[conv.ID]
	assert.Equal(t, models.ConversationExpired, got.Status)
	assert.Len(t, f.channel.Sent(), 1)
	assert.Len(t, f.store.messages, 1)
	assert.Empty(t, f.ai.calls)
}

func TestTextReplyKeepsConversationActive(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)
	f.ai.responses = []*llm.Response{{Text: "Legal! Qual o publico-alvo?"}}

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999:3@s.whatsapp.net", "Quero um app"))

	require.Len(t, f.ai.calls, 1)
	call := f.ai.calls[0]
	require.Len(t, call, 3)
	assert.Equal(t, llm.RoleUser, call[0].Role)
	assert.Contains(t, call[0].Content, "CONTEXTO INTERNO")
	assert.Equal(t, llm.RoleModel, call[1].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Quero um app"}, call[2])

	full, err := f.service.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConversationActive, full.Status)

	senders := make([]models.MessageSender, 0, len(full.Messages))
	for _, m := range full.Messages {
		senders = append(senders, m.Sender)
	}
	assert.Equal(t, []models.MessageSender{models.SenderBot, models.SenderContact, models.SenderBot}, senders)
	assert.Equal(t, "Legal! Qual o publico-alvo?", full.Messages[2].Content)
}

func TestFinalizeCompletesAndNotifiesAdmin(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)
	f.notifier.err = errors.New("admin unreachable")
	f.ai.responses = []*llm.Response{{
		Text: "ignored",
		FunctionCalls: []llm.FunctionCall{{
			Name: FinalizeFunctionName,
			Args: map[string]interface{}{
				"projectObjective": "App de agendamento",
				"mainFeatures":     "Agenda\nPagamentos",
				"urgency":          "alta",
				"budget":           "R$ 30 mil",
				"contactName":      "Mariazinha",
			},
		}},
	}}

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999@s.whatsapp.net", "E isso, obrigado"))

	got := f.store.conversations[conv.ID]
	assert.Equal(t, models.ConversationCompleted, got.Status)
	require.NotNil(t, got.Summary)
	require.NotNil(t, got.SummarySentAt)
	assert.Contains(t, *got.Summary, "App de agendamento")
	assert.Contains(t, *got.Summary, "R$ 30 mil")

	sent := f.channel.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].Text, "*Maria*, foi um prazer")
	assert.NotContains(t, sent[1].Text, "Mariazinha")
	assert.NotContains(t, sent[1].Text, "ignored")

	require.Len(t, f.notifier.briefs, 1)
	assert.Equal(t, *got.Summary, f.notifier.briefs[0])

	// A completed dialogue no longer answers.
	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999@s.whatsapp.net", "mais uma coisa"))
	assert.Len(t, f.ai.calls, 1)
}

func TestGenerationFailureIsSwallowed(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)
	f.ai.err = errors.New("quota exceeded")

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999@s.whatsapp.net", "oi"))

	assert.Len(t, f.channel.Sent(), 1)
	assert.Equal(t, models.ConversationActive, f.store.conversations[conv.ID].Status)
}

func TestGenerationFailureSendsApologyWhenEnabled(t *testing.T) {
	f := newEngine(t, true)
	f.start(t)
	f.ai.err = errors.New("quota exceeded")

	require.NoError(t, f.service.HandleInboundMessage(context.Background(), "5521999999999@s.whatsapp.net", "oi"))

	sent := f.channel.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, Persona{}.Apology(), sent[1].Text)
}

func TestExpireIdleSweep(t *testing.T) {
	f := newEngine(t, false)
	_, conv := f.start(t)

	n, err := f.service.ExpireIdle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(25 * time.Hour)
	n, err = f.service.ExpireIdle(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, models.ConversationExpired, f.store.conversations[conv.ID].Status)
}
