package platform

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outbound is one message delivered through a Recorder.
type Outbound struct {
	Id        string    `json:"id"`
	ChannelId string    `json:"channel_id"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// Recorder is an in-memory MessagingPlatform. It backs the REST API and tests:
// everything sent is captured and handed back to the caller.
type Recorder struct {
	mu       sync.Mutex
	sent     []Outbound
	threads  map[string]string
	files    map[string][]byte
	FailSend bool
}

func NewRecorder() *Recorder {
	return &Recorder{
		threads: make(map[string]string),
		files:   make(map[string][]byte),
	}
}

// AddFile registers the bytes Fetch returns for url.
func (r *Recorder) AddFile(url string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[url] = data
}

func (r *Recorder) CreateThread(ctx context.Context, channelId, fromMessageId, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.threads[id] = name
	return id, nil
}

func (r *Recorder) ThreadName(threadId string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.threads[threadId]
}

func (r *Recorder) Send(ctx context.Context, channelId, text string) (string, error) {
	return r.record(channelId, "", text)
}

func (r *Recorder) Reply(ctx context.Context, channelId, replyToId, text string) (string, error) {
	return r.record(channelId, replyToId, text)
}

func (r *Recorder) record(channelId, replyTo, text string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSend {
		return "", fmt.Errorf("%w: recorder configured to fail", ErrTransport)
	}
	out := Outbound{
		Id:        uuid.NewString(),
		ChannelId: channelId,
		ReplyTo:   replyTo,
		Content:   text,
		SentAt:    time.Now(),
	}
	r.sent = append(r.sent, out)
	return out.Id, nil
}

func (r *Recorder) Fetch(ctx context.Context, attachment Attachment) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[attachment.URL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransport, os.ErrNotExist)
	}
	return data, nil
}

// Sent returns a copy of everything delivered so far.
func (r *Recorder) Sent() []Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outbound(nil), r.sent...)
}

// Drain returns and clears everything delivered so far.
func (r *Recorder) Drain() []Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sent
	r.sent = nil
	return out
}
