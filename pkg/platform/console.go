package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Console prints outbound messages to a terminal. Attachments are read from
// the local filesystem using Attachment.URL as the path.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) CreateThread(ctx context.Context, channelId, fromMessageId, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := "thread-" + uuid.NewString()[:8]
	color.New(color.FgHiBlack).Fprintf(c.out, "── thread %q created (%s) ──\n", name, id)
	return id, nil
}

func (c *Console) Send(ctx context.Context, channelId, text string) (string, error) {
	return c.print("", text)
}

func (c *Console) Reply(ctx context.Context, channelId, replyToId, text string) (string, error) {
	return c.print(replyToId, text)
}

func (c *Console) print(replyTo, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uuid.NewString()
	if replyTo != "" {
		color.New(color.FgHiBlack).Fprintf(c.out, "↳ reply to %s\n", replyTo)
	}
	color.New(color.FgCyan, color.Bold).Fprint(c.out, "BiomeAI: ")
	fmt.Fprintln(c.out, text)
	return id, nil
}

func (c *Console) Fetch(ctx context.Context, attachment Attachment) ([]byte, error) {
	data, err := os.ReadFile(attachment.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return data, nil
}
