package handler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/platform"
)

// Route names how an inbound message was dispatched.
type Route string

const (
	RouteIgnored      Route = "ignored"
	RouteStats        Route = "stats"
	RouteHealth       Route = "health"
	RouteIngest       Route = "ingest"
	RouteGreeting     Route = "greeting"
	RouteConversation Route = "conversation"
)

// MessageHandler routes chat events to the ingestion and conversation services.
type MessageHandler struct {
	ingestion    service.IIngestionService
	conversation service.IConversationService
	stats        service.IStatsService
	logger       logger.ILogger
}

func NewMessageHandler(
	ingestion service.IIngestionService,
	conversation service.IConversationService,
	stats service.IStatsService,
	log logger.ILogger,
) *MessageHandler {
	return &MessageHandler{
		ingestion:    ingestion,
		conversation: conversation,
		stats:        stats,
		logger:       log,
	}
}

// Handle dispatches one inbound message. Failures are logged; user-facing
// notices are sent by the services themselves.
func (h *MessageHandler) Handle(ctx context.Context, p platform.MessagingPlatform, msg platform.InboundMessage) Route {
	if msg.Author.Bot {
		return RouteIgnored
	}

	content := strings.TrimSpace(msg.Content)
	user := entity.User{Id: msg.Author.Id, Username: msg.Author.DisplayName}

	switch {
	case content == constant.StatsCommand:
		h.replyStats(ctx, p, msg)
		return RouteStats

	case content == constant.HealthCommand:
		status := h.stats.Health(ctx)
		h.reply(ctx, p, msg, h.stats.FormatHealth(status))
		return RouteHealth

	case msg.Mentioned && len(msg.Attachments) > 0:
		_, err := h.ingestion.Ingest(ctx, p, service.UploadRequest{
			MessageId:  msg.Id,
			ChannelId:  msg.ChannelId,
			InThread:   msg.InThread,
			User:       user,
			Attachment: pickAttachment(msg.Attachments),
		})
		if err != nil {
			h.logger.Warn("HANDLER", "Ingestion did not complete", map[string]interface{}{
				"user_id": user.Id,
				"error":   err,
			})
		}
		return RouteIngest

	case msg.InThread && content != "":
		_, err := h.conversation.HandleMessage(ctx, p, service.TurnRequest{
			MessageId: msg.Id,
			ThreadId:  msg.ChannelId,
			User:      user,
			Content:   content,
		})
		switch {
		case errors.Is(err, contract.ErrReportNotFound), errors.Is(err, contract.ErrThreadOwnedByAnotherUser):
			// not a report thread, or someone else's
			h.logger.Debug("HANDLER", "Ignoring thread message", map[string]interface{}{
				"thread_id": msg.ChannelId,
				"reason":    err.Error(),
			})
			return RouteIgnored
		case err != nil:
			h.logger.Error("HANDLER", "Conversation turn failed", map[string]interface{}{
				"thread_id": msg.ChannelId,
				"error":     err,
			})
		}
		return RouteConversation

	case msg.Mentioned:
		h.reply(ctx, p, msg, constant.GreetingMessage)
		return RouteGreeting
	}

	return RouteIgnored
}

func (h *MessageHandler) replyStats(ctx context.Context, p platform.MessagingPlatform, msg platform.InboundMessage) {
	stats, err := h.stats.Usage(ctx)
	if err != nil {
		h.logger.Error("HANDLER", "Failed to load stats", map[string]interface{}{"error": err})
		h.reply(ctx, p, msg, constant.GenericErrorMessage)
		return
	}
	h.reply(ctx, p, msg, h.stats.FormatUsage(stats))
}

func (h *MessageHandler) reply(ctx context.Context, p platform.MessagingPlatform, msg platform.InboundMessage, text string) {
	if _, err := p.Reply(ctx, msg.ChannelId, msg.Id, text); err != nil {
		h.logger.Warn("HANDLER", "Failed to reply", map[string]interface{}{"error": err})
	}
}

// pickAttachment prefers the first PDF and falls back to the first file.
func pickAttachment(attachments []platform.Attachment) platform.Attachment {
	for _, a := range attachments {
		if strings.EqualFold(filepath.Ext(a.Filename), ".pdf") {
			return a
		}
	}
	return attachments[0]
}
