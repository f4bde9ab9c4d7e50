package chat

import (
	"context"

	models "knead/internal/chat/model"
)

type ChatRepository interface {
	// ConversationIDsForUser returns the ids of every conversation the user
	// participates in.
	ConversationIDsForUser(ctx context.Context, userID string) ([]string, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	// CreateConversation registers the pair once; a concurrent duplicate
	// insert resolves to the already-existing row.
	CreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)

	// ListMessages returns the conversation's messages ascending by timestamp.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	// LastMessage returns nil when the conversation has no messages yet.
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	CountUnread(ctx context.Context, conversationID, viewerID string) (int, error)
	InsertMessage(ctx context.Context, msg *models.Message) error
	// MarkMessagesRead flips read on every message not sent by viewerID.
	// Idempotent; returns the number of rows changed.
	MarkMessagesRead(ctx context.Context, conversationID, viewerID string) (int64, error)
}
