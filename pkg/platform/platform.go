package platform

import (
	"context"
	"errors"
)

// ErrTransport wraps failures of the chat platform itself.
var ErrTransport = errors.New("transport failed")

// Attachment is a file attached to an inbound message.
type Attachment struct {
	Filename    string
	URL         string
	ContentType string
	Size        int
}

// Author identifies the sender of an inbound message.
type Author struct {
	Id          string
	DisplayName string
	Bot         bool
}

// InboundMessage is a platform-neutral view of a received chat message.
type InboundMessage struct {
	Id          string
	ChannelId   string
	Author      Author
	Content     string
	Attachments []Attachment
	Mentioned   bool // the assistant was mentioned
	InThread    bool // ChannelId is a thread
}

// MessagingPlatform sends text and creates threads on a chat service.
// Send and Reply return the id the platform assigned to the delivered message.
type MessagingPlatform interface {
	CreateThread(ctx context.Context, channelId, fromMessageId, name string) (threadId string, err error)
	Send(ctx context.Context, channelId, text string) (messageId string, err error)
	Reply(ctx context.Context, channelId, replyToId, text string) (messageId string, err error)
	Fetch(ctx context.Context, attachment Attachment) ([]byte, error)
}

// SendSegments delivers segments in order and returns their ids. It stops at
// the first failure and returns the ids delivered so far.
func SendSegments(ctx context.Context, p MessagingPlatform, channelId string, segments []string) ([]string, error) {
	ids := make([]string, 0, len(segments))
	for _, s := range segments {
		id, err := p.Send(ctx, channelId, s)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
