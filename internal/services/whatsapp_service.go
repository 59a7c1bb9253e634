package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/metrics"
	"neuron_backoffice/internal/redis"
	"neuron_backoffice/pkg/whatsapp"

	"go.uber.org/zap"
)

// ChannelStatus is the connection state of the messaging channel.
type ChannelStatus struct {
	Ready  bool      `json:"ready"`
	Reason string    `json:"reason,omitempty"`
	Since  time.Time `json:"since"`
}

// WhatsAppService owns the channel's ready state. It starts disconnected,
// becomes ready on a successful probe or a gateway "connected" callback,
// and goes back to disconnected on a failed probe or a "disconnected" callback.
type WhatsAppService interface {
	SendMessage(ctx context.Context, phone, message string) error
	IsReady() bool
	Status() ChannelStatus
	MarkReady(ctx context.Context)
	MarkDisconnected(ctx context.Context, reason string)
	Probe(ctx context.Context) error
}

type WhatsAppGateway interface {
	SendMessage(ctx context.Context, phone, message string) (*whatsapp.SendMessageResponse, error)
	Ping(ctx context.Context) error
}

// ChannelStatusStore mirrors the status for other processes. Optional.
type ChannelStatusStore interface {
	SetChannelStatus(ctx context.Context, status redis.ChannelStatus) error
}

type whatsappService struct {
	client WhatsAppGateway
	store  ChannelStatusStore
	logger *zap.Logger

	mu     sync.RWMutex
	status ChannelStatus
}

func NewWhatsAppService(client WhatsAppGateway, store ChannelStatusStore, logger *zap.Logger) WhatsAppService {
	return &whatsappService{
		client: client,
		store:  store,
		logger: logger,
		status: ChannelStatus{Reason: "not connected yet", Since: time.Now()},
	}
}

func (s *whatsappService) SendMessage(ctx context.Context, phone, message string) error {
	if !s.IsReady() {
		return fmt.Errorf("send to %s: %w", phone, apperrors.ErrChannelNotReady)
	}
	if _, err := s.client.SendMessage(ctx, phone, message); err != nil {
		return fmt.Errorf("send to %s: %w", phone, err)
	}
	return nil
}

func (s *whatsappService) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Ready
}

func (s *whatsappService) Status() ChannelStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *whatsappService) MarkReady(ctx context.Context) {
	if s.setStatus(ctx, true, "") {
		s.logger.Info("whatsapp channel ready")
	}
}

func (s *whatsappService) MarkDisconnected(ctx context.Context, reason string) {
	if s.setStatus(ctx, false, reason) {
		s.logger.Warn("whatsapp channel disconnected", zap.String("reason", reason))
	}
}

// Probe asks the gateway whether a device is paired and updates the state.
func (s *whatsappService) Probe(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		s.MarkDisconnected(ctx, err.Error())
		return err
	}
	s.MarkReady(ctx)
	return nil
}

// setStatus reports whether readiness actually changed.
func (s *whatsappService) setStatus(ctx context.Context, ready bool, reason string) bool {
	s.mu.Lock()
	changed := s.status.Ready != ready
	if changed || s.status.Reason != reason {
		s.status = ChannelStatus{Ready: ready, Reason: reason, Since: time.Now()}
	}
	snapshot := s.status
	s.mu.Unlock()

	metrics.SetChannelReady(ready)
	if s.store != nil {
		err := s.store.SetChannelStatus(ctx, redis.ChannelStatus{
			Ready:  snapshot.Ready,
			Reason: snapshot.Reason,
			Since:  snapshot.Since,
		})
		if err != nil {
			s.logger.Warn("failed to mirror channel status", zap.Error(err))
		}
	}
	return changed
}
