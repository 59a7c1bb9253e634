package services

import (
	"context"
	"errors"
	"testing"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/redis"
	"neuron_backoffice/pkg/whatsapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	pingErr error
	sent    []string
}

func (g *fakeGateway) SendMessage(ctx context.Context, phone, message string) (*whatsapp.SendMessageResponse, error) {
	g.sent = append(g.sent, phone+":"+message)
	return &whatsapp.SendMessageResponse{Code: "SUCCESS"}, nil
}

func (g *fakeGateway) Ping(ctx context.Context) error { return g.pingErr }

type fakeStatusStore struct {
	last *redis.ChannelStatus
}

func (s *fakeStatusStore) SetChannelStatus(ctx context.Context, status redis.ChannelStatus) error {
	s.last = &status
	return nil
}

func TestWhatsAppServiceReadyLifecycle(t *testing.T) {
	gateway := &fakeGateway{pingErr: whatsapp.ErrNoDevice}
	store := &fakeStatusStore{}
	svc := NewWhatsAppService(gateway, store, zap.NewNop())
	ctx := context.Background()

	assert.False(t, svc.IsReady())
	err := svc.SendMessage(ctx, "5521999999999", "oi")
	assert.ErrorIs(t, err, apperrors.ErrChannelNotReady)
	assert.Empty(t, gateway.sent)

	assert.ErrorIs(t, svc.Probe(ctx), whatsapp.ErrNoDevice)
	assert.False(t, svc.IsReady())
	assert.Equal(t, whatsapp.ErrNoDevice.Error(), svc.Status().Reason)

	gateway.pingErr = nil
	require.NoError(t, svc.Probe(ctx))
	assert.True(t, svc.IsReady())
	require.NotNil(t, store.last)
	assert.True(t, store.last.Ready)

	require.NoError(t, svc.SendMessage(ctx, "5521999999999", "oi"))
	assert.Equal(t, []string{"5521999999999:oi"}, gateway.sent)

	svc.MarkDisconnected(ctx, "logged out")
	assert.False(t, svc.IsReady())
	assert.Equal(t, "logged out", svc.Status().Reason)
	assert.False(t, store.last.Ready)
}

func TestNotificationServiceSendsToAdmin(t *testing.T) {
	gateway := &fakeGateway{}
	channel := NewWhatsAppService(gateway, nil, zap.NewNop())
	channel.MarkReady(context.Background())

	notifier := NewNotificationService(channel, "(21) 98559-8348", zap.NewNop())
	require.NoError(t, notifier.NotifyBrief(context.Background(), "brief"))
	assert.Equal(t, []string{"5521985598348:brief"}, gateway.sent)

	err := NewNotificationService(channel, "", zap.NewNop()).NotifyBrief(context.Background(), "brief")
	assert.True(t, err != nil && !errors.Is(err, apperrors.ErrChannelNotReady))
}
