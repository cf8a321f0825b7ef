package handler

import (
	"context"
	"testing"

	"biomeai-be/internal/constant"
	"biomeai-be/internal/entity"
	"biomeai-be/internal/pkg/logger"
	"biomeai-be/internal/repository/contract"
	"biomeai-be/internal/service"
	"biomeai-be/pkg/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIngestion struct {
	requests []service.UploadRequest
}

func (f *fakeIngestion) Ingest(ctx context.Context, p platform.MessagingPlatform, req service.UploadRequest) (*service.UploadResult, error) {
	f.requests = append(f.requests, req)
	return &service.UploadResult{ThreadId: "t-1"}, nil
}

type fakeConversation struct {
	requests []service.TurnRequest
	err      error
}

func (f *fakeConversation) HandleMessage(ctx context.Context, p platform.MessagingPlatform, req service.TurnRequest) (*service.TurnResult, error) {
	f.requests = append(f.requests, req)
	return nil, f.err
}

func (f *fakeConversation) History(ctx context.Context, threadId, userId string) (*entity.Report, []*entity.Message, error) {
	return nil, nil, nil
}

func (f *fakeConversation) DeleteReport(ctx context.Context, threadId, userId string) error {
	return nil
}

type fakeStats struct{}

func (fakeStats) Usage(ctx context.Context) (*entity.UsageStats, error) {
	return &entity.UsageStats{Users: 3, Reports: 2, Messages: 40, TotalCostUsd: 0.12}, nil
}

func (fakeStats) Health(ctx context.Context) *service.HealthStatus {
	return &service.HealthStatus{Status: "healthy"}
}

func (fakeStats) FormatUsage(stats *entity.UsageStats) string { return "stats text" }

func (fakeStats) FormatHealth(status *service.HealthStatus) string { return "health text" }

func newTestHandler() (*MessageHandler, *fakeIngestion, *fakeConversation, *platform.Recorder) {
	ingestion := &fakeIngestion{}
	conversation := &fakeConversation{}
	h := NewMessageHandler(ingestion, conversation, fakeStats{}, logger.NewNopLogger())
	return h, ingestion, conversation, platform.NewRecorder()
}

func TestHandle_Routes(t *testing.T) {
	author := platform.Author{Id: "u-1", DisplayName: "Ada"}
	pdf := []platform.Attachment{{Filename: "notes.txt"}, {Filename: "Report.PDF", URL: "https://cdn/x.pdf"}}

	tests := []struct {
		name  string
		msg   platform.InboundMessage
		route Route
	}{
		{"bot author", platform.InboundMessage{Author: platform.Author{Id: "b", Bot: true}, Content: "!stats"}, RouteIgnored},
		{"stats command", platform.InboundMessage{Author: author, Content: " !stats "}, RouteStats},
		{"health command", platform.InboundMessage{Author: author, Content: "!health"}, RouteHealth},
		{"mention with attachment", platform.InboundMessage{Author: author, Mentioned: true, Attachments: pdf}, RouteIngest},
		{"bare mention", platform.InboundMessage{Author: author, Mentioned: true}, RouteGreeting},
		{"thread message", platform.InboundMessage{Author: author, InThread: true, Content: "no antibiotics"}, RouteConversation},
		{"mention in thread", platform.InboundMessage{Author: author, InThread: true, Mentioned: true, Content: "what now?"}, RouteConversation},
		{"empty thread message", platform.InboundMessage{Author: author, InThread: true}, RouteIgnored},
		{"channel chatter", platform.InboundMessage{Author: author, Content: "hello"}, RouteIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _, rec := newTestHandler()
			tt.msg.Id = "m-1"
			tt.msg.ChannelId = "c-1"
			assert.Equal(t, tt.route, h.Handle(context.Background(), rec, tt.msg))
		})
	}
}

func TestHandle_IngestPrefersPDF(t *testing.T) {
	h, ingestion, _, rec := newTestHandler()

	h.Handle(context.Background(), rec, platform.InboundMessage{
		Id: "m-1", ChannelId: "c-1", Mentioned: true,
		Author:      platform.Author{Id: "u-1", DisplayName: "Ada"},
		Attachments: []platform.Attachment{{Filename: "notes.txt"}, {Filename: "Report.PDF"}},
	})

	require.Len(t, ingestion.requests, 1)
	req := ingestion.requests[0]
	assert.Equal(t, "Report.PDF", req.Attachment.Filename)
	assert.Equal(t, "Ada", req.User.Username)
	assert.Equal(t, "m-1", req.MessageId)
}

func TestHandle_RepliesToCommands(t *testing.T) {
	h, _, _, rec := newTestHandler()

	h.Handle(context.Background(), rec, platform.InboundMessage{Id: "m-1", ChannelId: "c-1", Content: "!stats", Author: platform.Author{Id: "u-1"}})
	h.Handle(context.Background(), rec, platform.InboundMessage{Id: "m-2", ChannelId: "c-1", Mentioned: true, Author: platform.Author{Id: "u-1"}})

	sent := rec.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "stats text", sent[0].Content)
	assert.Equal(t, "m-1", sent[0].ReplyTo)
	assert.Equal(t, constant.GreetingMessage, sent[1].Content)
}

func TestHandle_UnknownThreadIsIgnored(t *testing.T) {
	h, _, conversation, rec := newTestHandler()
	conversation.err = contract.ErrReportNotFound

	route := h.Handle(context.Background(), rec, platform.InboundMessage{
		Id: "m-1", ChannelId: "t-9", InThread: true, Content: "hi", Author: platform.Author{Id: "u-1"},
	})

	assert.Equal(t, RouteIgnored, route)
	require.Len(t, conversation.requests, 1)
	assert.Equal(t, "t-9", conversation.requests[0].ThreadId)
	assert.Empty(t, rec.Sent())
}
