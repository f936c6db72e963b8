package chat_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-matching/internal/chat"
)

func TestLogTransport(t *testing.T) {
	var buf bytes.Buffer
	tr := chat.NewLogTransport(slog.New(slog.NewTextHandler(&buf, nil)))

	var _ chat.Transport = tr
	require.NoError(t, tr.OnMatchCreated(context.Background(), "m1", "a", "b"))
	require.NoError(t, tr.OnMatchDeleted(context.Background(), "m1"))

	out := buf.String()
	assert.Contains(t, out, "chat channel bootstrapped")
	assert.Contains(t, out, "match_id=m1")
	assert.Contains(t, out, "chat channel closed")
}
