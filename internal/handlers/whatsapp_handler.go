package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"neuron_backoffice/internal/models"
	"neuron_backoffice/internal/services"
	"neuron_backoffice/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	WebhookSecretHeader = "X-Webhook-Secret"
	messageDedupeTTL    = 24 * time.Hour
)

// InboundPublisher hands accepted messages to the conversation engine.
type InboundPublisher interface {
	InboundMessage(from, body string)
}

// MessageDeduper reports whether a gateway message id is new.
type MessageDeduper interface {
	MarkMessageSeen(ctx context.Context, messageID string, ttl time.Duration) (bool, error)
}

type WhatsAppHandlerConfig struct {
	WebhookSecret string
	BotNumber     string
}

type WhatsAppHandler struct {
	whatsappService     services.WhatsAppService
	conversationService services.ConversationService
	inbound             InboundPublisher
	deduper             MessageDeduper
	webhookSecret       string
	botNumber           string
	logger              *zap.Logger
}

func NewWhatsAppHandler(
	whatsappService services.WhatsAppService,
	conversationService services.ConversationService,
	inbound InboundPublisher,
	deduper MessageDeduper,
	config WhatsAppHandlerConfig,
	logger *zap.Logger,
) *WhatsAppHandler {
	return &WhatsAppHandler{
		whatsappService:     whatsappService,
		conversationService: conversationService,
		inbound:             inbound,
		deduper:             deduper,
		webhookSecret:       config.WebhookSecret,
		botNumber:           services.NormalizePhone(config.BotNumber),
		logger:              logger,
	}
}

// WebhookRequest is the gateway's inbound message payload.
type WebhookRequest struct {
	SenderID  string `json:"sender_id"`
	ChatID    string `json:"chat_id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Pushname  string `json:"pushname"`
	Message   struct {
		Text          string `json:"text"`
		ID            string `json:"id"`
		RepliedID     string `json:"replied_id"`
		QuotedMessage string `json:"quoted_message"`
	} `json:"message"`
}

type ConnectionEvent struct {
	Event  string `json:"event" binding:"required,oneof=connected disconnected"`
	Reason string `json:"reason"`
}

// HandleWebhook accepts every well-formed payload with 200 so the gateway
// does not retry; filtered messages are simply not published.
func (h *WhatsAppHandler) HandleWebhook(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	from := req.From
	if from == "" {
		from = req.SenderID
	}
	text := strings.TrimSpace(req.Message.Text)

	if reason := h.skipReason(req, from, text); reason != "" {
		h.logger.Debug("webhook message ignored", zap.String("reason", reason), zap.String("from", from))
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": reason})
		return
	}

	if req.Message.ID != "" && h.deduper != nil {
		fresh, err := h.deduper.MarkMessageSeen(c.Request.Context(), req.Message.ID, messageDedupeTTL)
		if err != nil {
			h.logger.Warn("message dedupe unavailable", zap.Error(err))
		} else if !fresh {
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
	}

	h.inbound.InboundMessage(from, text)
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *WhatsAppHandler) skipReason(req WebhookRequest, from, text string) string {
	switch {
	case from == "":
		return "no sender"
	case strings.Contains(req.ChatID, "@g.us") || strings.Contains(from, "@g.us"):
		return "group chat"
	case text == "":
		return "no text"
	case h.botNumber != "" && services.NormalizePhone(whatsapp.PhoneFromJID(from)) == h.botNumber:
		return "own message"
	}
	return ""
}

// HandleConnection receives the gateway's ready and disconnected callbacks.
func (h *WhatsAppHandler) HandleConnection(c *gin.Context) {
	if !h.authorized(c) {
		return
	}

	var event ConnectionEvent
	if !bindJSON(c, &event) {
		return
	}

	if event.Event == "connected" {
		h.whatsappService.MarkReady(c.Request.Context())
	} else {
		h.whatsappService.MarkDisconnected(c.Request.Context(), event.Reason)
	}
	c.JSON(http.StatusOK, h.whatsappService.Status())
}

func (h *WhatsAppHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.whatsappService.Status())
}

func (h *WhatsAppHandler) ListConversations(c *gin.Context) {
	q, ok := bindPagination(c)
	if !ok {
		return
	}

	var status *models.ConversationStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ConversationStatus(strings.ToUpper(raw))
		switch s {
		case models.ConversationActive, models.ConversationCompleted, models.ConversationExpired:
			status = &s
		default:
			badRequest(c, "status must be one of ACTIVE, COMPLETED, EXPIRED")
			return
		}
	}

	page, err := h.conversationService.ListConversations(c.Request.Context(), q, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *WhatsAppHandler) GetConversation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	conversation, err := h.conversationService.GetConversation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (h *WhatsAppHandler) authorized(c *gin.Context) bool {
	if h.webhookSecret == "" {
		return true
	}
	given := c.GetHeader(WebhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.webhookSecret)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}
