package platform

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSegments_PreservesOrder(t *testing.T) {
	r := NewRecorder()

	ids, err := SendSegments(context.Background(), r, "c1", []string{"one", "two", "three"})

	require.NoError(t, err)
	require.Len(t, ids, 3)
	sent := r.Sent()
	require.Len(t, sent, 3)
	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, want, sent[i].Content)
		assert.Equal(t, ids[i], sent[i].Id)
	}
}

func TestSendSegments_StopsOnFailure(t *testing.T) {
	r := NewRecorder()
	r.FailSend = true

	ids, err := SendSegments(context.Background(), r, "c1", []string{"one", "two"})

	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, ids)
}

func TestRecorder_FetchAndDrain(t *testing.T) {
	r := NewRecorder()
	r.AddFile("mem://report.pdf", []byte("%PDF"))

	data, err := r.Fetch(context.Background(), Attachment{URL: "mem://report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), data)

	_, err = r.Fetch(context.Background(), Attachment{URL: "mem://missing.pdf"})
	assert.ErrorIs(t, err, ErrTransport)

	_, _ = r.Reply(context.Background(), "c", "m1", "hi")
	assert.Len(t, r.Drain(), 1)
	assert.Empty(t, r.Sent())
}

func TestConsole_SendAndFetch(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	_, err := c.Send(context.Background(), "c", "hello there")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hello there")

	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("sample"), 0o600))
	data, err := c.Fetch(context.Background(), Attachment{URL: path})
	require.NoError(t, err)
	assert.Equal(t, "sample", string(data))
}
