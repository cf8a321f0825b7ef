package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"biomeai-be/internal/handler"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/pkg/platform"

	"github.com/bwmarrin/discordgo"
)

const (
	// ThreadArchiveMinutes keeps report threads open for a week.
	ThreadArchiveMinutes = 10080
	// MaxAttachmentBytes caps report downloads.
	MaxAttachmentBytes = 25 << 20
)

// Gateway is the Discord MessagingPlatform. It forwards MessageCreate events
// to the message handler, one goroutine per event as dispatched by discordgo.
type Gateway struct {
	session *discordgo.Session
	handler *handler.MessageHandler
	logger  logger.ILogger

	mu      sync.RWMutex
	baseCtx context.Context
}

var _ platform.MessagingPlatform = (*Gateway)(nil)

func NewGateway(token string, h *handler.MessageHandler, log logger.ILogger) (*Gateway, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Gateway{
		session: session,
		handler: h,
		logger:  log,
		baseCtx: context.Background(),
	}, nil
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	g.mu.Lock()
	g.baseCtx = ctx
	g.mu.Unlock()

	remove := g.session.AddHandler(g.onMessageCreate)
	defer remove()

	g.session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		g.logger.Info("DISCORD", "Connected", map[string]interface{}{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		})
	})

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	<-ctx.Done()
	return g.session.Close()
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	inThread := false
	if ch, err := s.State.Channel(m.ChannelID); err == nil {
		inThread = ch.IsThread()
	} else if ch, err := s.Channel(m.ChannelID); err == nil {
		inThread = ch.IsThread()
	}

	botId := ""
	if s.State.User != nil {
		botId = s.State.User.ID
	}

	g.mu.RLock()
	ctx := g.baseCtx
	g.mu.RUnlock()

	route := g.handler.Handle(ctx, g, ToInbound(m.Message, botId, inThread))
	if route != handler.RouteIgnored {
		g.logger.Debug("DISCORD", "Routed message", map[string]interface{}{
			"message_id": m.ID,
			"route":      string(route),
		})
	}
}

// ToInbound maps a Discord message to the platform-neutral shape. Mentions of
// the bot are stripped from the content.
func ToInbound(m *discordgo.Message, botId string, inThread bool) platform.InboundMessage {
	msg := platform.InboundMessage{
		Id:        m.ID,
		ChannelId: m.ChannelID,
		Content:   m.Content,
		InThread:  inThread,
	}

	if m.Author != nil {
		msg.Author = platform.Author{
			Id:          m.Author.ID,
			DisplayName: displayName(m),
			Bot:         m.Author.Bot,
		}
	}

	for _, u := range m.Mentions {
		if u != nil && botId != "" && u.ID == botId {
			msg.Mentioned = true
		}
	}
	if botId != "" {
		msg.Content = strings.NewReplacer("<@"+botId+">", "", "<@!"+botId+">", "").Replace(msg.Content)
	}
	msg.Content = strings.TrimSpace(msg.Content)

	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, platform.Attachment{
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return msg
}

func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

func (g *Gateway) CreateThread(ctx context.Context, channelId, fromMessageId, name string) (string, error) {
	ch, err := g.session.MessageThreadStart(channelId, fromMessageId, truncate(name, 100), ThreadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: start thread: %v", platform.ErrTransport, err)
	}
	return ch.ID, nil
}

func (g *Gateway) Send(ctx context.Context, channelId, text string) (string, error) {
	m, err := g.session.ChannelMessageSend(channelId, text, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: send: %v", platform.ErrTransport, err)
	}
	return m.ID, nil
}

func (g *Gateway) Reply(ctx context.Context, channelId, replyToId, text string) (string, error) {
	ref := &discordgo.MessageReference{MessageID: replyToId, ChannelID: channelId}
	m, err := g.session.ChannelMessageSendReply(channelId, text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: reply: %v", platform.ErrTransport, err)
	}
	return m.ID, nil
}

// Fetch downloads an attachment from the Discord CDN with the session's HTTP client.
func (g *Gateway) Fetch(ctx context.Context, attachment platform.Attachment) ([]byte, error) {
	if attachment.Size > MaxAttachmentBytes {
		return nil, fmt.Errorf("%w: attachment %s is %d bytes", platform.ErrTransport, attachment.Filename, attachment.Size)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", platform.ErrTransport, err)
	}
	resp, err := g.session.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", platform.ErrTransport, attachment.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download %s: status %d", platform.ErrTransport, attachment.Filename, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentBytes))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
