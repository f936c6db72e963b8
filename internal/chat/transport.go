// Package chat is the boundary to the managed chat backend. The matching core
// never calls it directly; the match event consumer does.
package chat

import (
	"context"
	"log/slog"
)

// Transport bootstraps and tears down the conversation channel of a match.
// Both calls must be idempotent per match id.
type Transport interface {
	OnMatchCreated(ctx context.Context, matchID, userA, userB string) error
	OnMatchDeleted(ctx context.Context, matchID string) error
}

// LogTransport only logs. It stands in for the chat backend in development
// and in deployments where chat sync runs elsewhere.
type LogTransport struct {
	Logger *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	return &LogTransport{Logger: log}
}

func (t *LogTransport) OnMatchCreated(ctx context.Context, matchID, userA, userB string) error {
	t.Logger.InfoContext(ctx, "chat channel bootstrapped", "match_id", matchID, "user_a", userA, "user_b", userB)
	return nil
}

func (t *LogTransport) OnMatchDeleted(ctx context.Context, matchID string) error {
	t.Logger.InfoContext(ctx, "chat channel closed", "match_id", matchID)
	return nil
}
