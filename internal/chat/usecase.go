package chat

import (
	"context"

	chatModels "knead/internal/chat/model"
	userModels "knead/internal/user/model"
)

type ChatUsecase interface {
	// GetConversations builds the chat-list view model for the viewer: one
	// entry per conversation with counterpart display info, the latest
	// message (absent for empty conversations) and the unread count.
	// Conversations whose counterpart cannot be resolved are dropped.
	GetConversations(ctx context.Context, viewerID string) (*ConversationListDTO, error)

	// GetMessages returns the conversation's messages ascending by timestamp,
	// receiver derived as the other participant.
	GetMessages(ctx context.Context, conversationID string) (*MessageListDTO, error)

	// OpenConversationWithUser resolves the unique conversation for the pair,
	// creating it when absent. Order-independent.
	OpenConversationWithUser(ctx context.Context, viewerID, otherUserID string) (*ConversationDTO, error)

	// SendMessage appends to an existing conversation. The timestamp is taken
	// at append time from the store clock: monotonic for a single writer,
	// cross-client ordering only as strong as that clock.
	SendMessage(ctx context.Context, senderID, conversationID, content string) (*MessageDTO, error)

	// SendMessageToUser resolves the pair's conversation first, then appends.
	SendMessageToUser(ctx context.Context, senderID, receiverID, content string) (*MessageDTO, error)

	// MarkMessagesAsRead flags every message not sent by the viewer as read.
	// Idempotent.
	MarkMessagesAsRead(ctx context.Context, viewerID, conversationID string) error
}

// UserGetter is the slice of the user domain the chat usecase needs.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*userModels.User, error)
}

// FallbackSource is the read-only sample dataset read operations degrade to
// when the store is unreachable. Injected explicitly; writes never use it.
type FallbackSource interface {
	ConversationsForUser(userID string) []chatModels.Conversation
	MessagesForConversation(conversationID string) []chatModels.Message
	UserByID(id string) (*userModels.User, bool)
}
