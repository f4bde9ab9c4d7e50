package chat

import "time"

// Output DTOs — the view-model shapes handed to the delivery layer, distinct
// from the store's row shapes.
type MessageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Read           bool      `json:"read"`
}

type ConversationDTO struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

// CounterpartDTO is the display info for the other participant of a
// conversation.
type CounterpartDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

type ConversationSummaryDTO struct {
	Conversation ConversationDTO `json:"conversation"`
	Counterpart  CounterpartDTO  `json:"counterpart"`
	LastMessage  *MessageDTO     `json:"last_message,omitempty"`
	UnreadCount  int             `json:"unread_count"`
}

type ConversationListDTO struct {
	Conversations []ConversationSummaryDTO `json:"conversations"`
	FromFallback  bool                     `json:"from_fallback"`
}

type MessageListDTO struct {
	Messages     []MessageDTO `json:"messages"`
	FromFallback bool         `json:"from_fallback"`
}
