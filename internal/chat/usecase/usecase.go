package usecase

import (
	"context"
	"strings"

	"knead/internal/chat"
	models "knead/internal/chat/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"
)

type ChatUsecase struct {
	repo     chat.ChatRepository
	users    chat.UserGetter
	fallback chat.FallbackSource
	logger   logger.Logger
}

func NewChatUsecase(repo chat.ChatRepository, users chat.UserGetter, fallback chat.FallbackSource, logger logger.Logger) *ChatUsecase {
	return &ChatUsecase{repo: repo, users: users, fallback: fallback, logger: logger}
}

// resolve maps an unordered pair of user ids to its unique conversation,
// creating it when none exists. Discipline against duplicates: the lookup
// intersection runs first, and creation goes through the storage-level
// unique pair index (insert ON CONFLICT DO NOTHING, then re-select), so a
// repeat or concurrent call never yields a second conversation.
func (uc *ChatUsecase) resolve(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if strings.TrimSpace(userA) == "" || strings.TrimSpace(userB) == "" {
		return nil, appErrors.ErrInvalidUserID
	}
	if userA == userB {
		return nil, appErrors.ErrSelfConversation
	}

	// Never synthesize a conversation for a non-existent user.
	if err := uc.checkUserExists(ctx, userA); err != nil {
		return nil, err
	}
	if err := uc.checkUserExists(ctx, userB); err != nil {
		return nil, err
	}

	idsA, err := uc.repo.ConversationIDsForUser(ctx, userA)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.CodeUnavailable, "conversation lookup failed", err)
	}
	idsB, err := uc.repo.ConversationIDsForUser(ctx, userB)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.CodeUnavailable, "conversation lookup failed", err)
	}

	common := intersect(idsA, idsB)
	switch len(common) {
	case 0:
		return uc.repo.CreateConversation(ctx, userA, userB)
	case 1:
		return uc.repo.GetConversation(ctx, common[0])
	default:
		// Uniqueness invariant violated. Surface it, never pick one.
		uc.logger.Error("multiple conversations for one pair",
			"user_a", userA, "user_b", userB, "conversation_ids", common)
		return nil, appErrors.ErrAmbiguousConversation
	}
}

// checkUserExists keeps NotFound intact and maps everything else to the
// unavailable taxonomy: a dead user store must not read as an internal fault.
func (uc *ChatUsecase) checkUserExists(ctx context.Context, id string) error {
	_, err := uc.users.GetUserByID(ctx, id)
	if err == nil {
		return nil
	}
	if appErrors.IsCode(err, appErrors.CodeNotFound) {
		return err
	}
	return appErrors.ErrDirectoryUnavailable(err)
}

func intersect(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	var common []string
	for _, id := range b {
		if _, ok := seen[id]; ok {
			common = append(common, id)
		}
	}
	return common
}

func (uc *ChatUsecase) OpenConversationWithUser(ctx context.Context, viewerID, otherUserID string) (*chat.ConversationDTO, error) {
	conv, err := uc.resolve(ctx, viewerID, otherUserID)
	if err != nil {
		return nil, err
	}
	return toConversationDTO(conv), nil
}

func (uc *ChatUsecase) GetMessages(ctx context.Context, conversationID string) (*chat.MessageListDTO, error) {
	conv, err := uc.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if appErrors.IsCode(err, appErrors.CodeNotFound) {
			return nil, err
		}
		return uc.messagesFromFallback(conversationID, err)
	}

	msgs, err := uc.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return uc.messagesFromFallback(conversationID, err)
	}

	dtos, err := toMessageDTOs(conv, msgs)
	if err != nil {
		return nil, err
	}
	return &chat.MessageListDTO{Messages: dtos}, nil
}

func (uc *ChatUsecase) messagesFromFallback(conversationID string, cause error) (*chat.MessageListDTO, error) {
	if uc.fallback == nil {
		uc.logger.Error("message store unreachable", "err", cause)
		return nil, appErrors.ErrStoreUnavailable(cause)
	}
	uc.logger.Warn("message store unreachable, serving sample data",
		"err", cause, "conversation_id", conversationID)

	msgs := uc.fallback.MessagesForConversation(conversationID)
	dtos := make([]chat.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		dtos = append(dtos, chat.MessageDTO{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			Content:        m.Content,
			Timestamp:      m.CreatedAt,
			Read:           m.Read,
		})
	}
	return &chat.MessageListDTO{Messages: dtos, FromFallback: true}, nil
}

func (uc *ChatUsecase) SendMessage(ctx context.Context, senderID, conversationID, content string) (*chat.MessageDTO, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, appErrors.ErrEmptyMessage
	}

	conv, err := uc.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if appErrors.IsCode(err, appErrors.CodeNotFound) {
			return nil, err
		}
		// Writes never fall back to fabricated success.
		uc.logger.Error("message store unreachable on send", "err", err)
		return nil, appErrors.ErrStoreUnavailable(err)
	}
	if !conv.HasParticipant(senderID) {
		return nil, appErrors.ErrNotParticipant
	}

	return uc.append(ctx, conv, senderID, trimmed)
}

func (uc *ChatUsecase) SendMessageToUser(ctx context.Context, senderID, receiverID, content string) (*chat.MessageDTO, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, appErrors.ErrEmptyMessage
	}

	conv, err := uc.resolve(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	return uc.append(ctx, conv, senderID, trimmed)
}

func (uc *ChatUsecase) append(ctx context.Context, conv *models.Conversation, senderID, content string) (*chat.MessageDTO, error) {
	receiver, ok := conv.Counterpart(senderID)
	if !ok {
		uc.logger.Error("conversation pair does not resolve a receiver",
			"conversation_id", conv.ID, "sender_id", senderID)
		return nil, appErrors.ErrMalformedConversation
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := uc.repo.InsertMessage(ctx, msg); err != nil {
		uc.logger.Error("error while saving message in db", "err", err, "conversation_id", conv.ID)
		return nil, appErrors.ErrSendFailed(err)
	}

	return &chat.MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     receiver,
		Content:        msg.Content,
		Timestamp:      msg.CreatedAt,
		Read:           msg.Read,
	}, nil
}

func (uc *ChatUsecase) MarkMessagesAsRead(ctx context.Context, viewerID, conversationID string) error {
	conv, err := uc.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if appErrors.IsCode(err, appErrors.CodeNotFound) {
			return err
		}
		return appErrors.ErrStoreUnavailable(err)
	}
	if !conv.HasParticipant(viewerID) {
		return appErrors.ErrNotParticipant
	}

	if _, err := uc.repo.MarkMessagesRead(ctx, conversationID, viewerID); err != nil {
		uc.logger.Error("error while marking messages read", "err", err, "conversation_id", conversationID)
		return appErrors.Wrap(appErrors.CodeInternal, "marking messages read failed", err)
	}
	return nil
}

func (uc *ChatUsecase) GetConversations(ctx context.Context, viewerID string) (*chat.ConversationListDTO, error) {
	convs, err := uc.repo.ListConversationsForUser(ctx, viewerID)
	if err != nil {
		return uc.conversationsFromFallback(viewerID, err)
	}

	summaries := make([]chat.ConversationSummaryDTO, 0, len(convs))
	for i := range convs {
		conv := &convs[i]

		counterpartID, ok := conv.Counterpart(viewerID)
		if !ok {
			uc.logger.Error("dropping conversation without a resolvable counterpart",
				"conversation_id", conv.ID, "viewer_id", viewerID)
			continue
		}
		counterpart, err := uc.users.GetUserByID(ctx, counterpartID)
		if err != nil {
			// Render the rest of the list rather than nothing.
			uc.logger.Warn("dropping conversation, counterpart lookup failed",
				"conversation_id", conv.ID, "counterpart_id", counterpartID, "err", err)
			continue
		}

		summary := chat.ConversationSummaryDTO{
			Conversation: *toConversationDTO(conv),
			Counterpart: chat.CounterpartDTO{
				ID:             counterpart.ID,
				Name:           counterpart.Name,
				ProfilePicture: counterpart.ProfilePicture,
			},
		}

		last, err := uc.repo.LastMessage(ctx, conv.ID)
		if err != nil {
			uc.logger.Warn("last message lookup failed", "conversation_id", conv.ID, "err", err)
		} else if last != nil {
			receiver, _ := conv.Counterpart(last.SenderID)
			summary.LastMessage = &chat.MessageDTO{
				ID:             last.ID,
				ConversationID: last.ConversationID,
				SenderID:       last.SenderID,
				ReceiverID:     receiver,
				Content:        last.Content,
				Timestamp:      last.CreatedAt,
				Read:           last.Read,
			}
		}

		unread, err := uc.repo.CountUnread(ctx, conv.ID, viewerID)
		if err != nil {
			uc.logger.Warn("unread count lookup failed", "conversation_id", conv.ID, "err", err)
		} else {
			summary.UnreadCount = unread
		}

		summaries = append(summaries, summary)
	}
	return &chat.ConversationListDTO{Conversations: summaries}, nil
}

func (uc *ChatUsecase) conversationsFromFallback(viewerID string, cause error) (*chat.ConversationListDTO, error) {
	if uc.fallback == nil {
		uc.logger.Error("message store unreachable", "err", cause)
		return nil, appErrors.ErrStoreUnavailable(cause)
	}
	uc.logger.Warn("message store unreachable, serving sample data",
		"err", cause, "viewer_id", viewerID)

	convs := uc.fallback.ConversationsForUser(viewerID)
	summaries := make([]chat.ConversationSummaryDTO, 0, len(convs))
	for i := range convs {
		conv := &convs[i]

		counterpartID, ok := conv.Counterpart(viewerID)
		if !ok {
			continue
		}
		counterpart, ok := uc.fallback.UserByID(counterpartID)
		if !ok {
			continue
		}

		summary := chat.ConversationSummaryDTO{
			Conversation: *toConversationDTO(conv),
			Counterpart: chat.CounterpartDTO{
				ID:             counterpart.ID,
				Name:           counterpart.Name,
				ProfilePicture: counterpart.ProfilePicture,
			},
		}

		msgs := uc.fallback.MessagesForConversation(conv.ID)
		for j := range msgs {
			m := &msgs[j]
			if m.SenderID != viewerID && !m.Read {
				summary.UnreadCount++
			}
		}
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			receiver, _ := conv.Counterpart(last.SenderID)
			summary.LastMessage = &chat.MessageDTO{
				ID:             last.ID,
				ConversationID: last.ConversationID,
				SenderID:       last.SenderID,
				ReceiverID:     receiver,
				Content:        last.Content,
				Timestamp:      last.CreatedAt,
				Read:           last.Read,
			}
		}

		summaries = append(summaries, summary)
	}
	return &chat.ConversationListDTO{Conversations: summaries, FromFallback: true}, nil
}

func toConversationDTO(c *models.Conversation) *chat.ConversationDTO {
	return &chat.ConversationDTO{
		ID:           c.ID,
		Participants: [2]string{c.UserLo, c.UserHi},
		CreatedAt:    c.CreatedAt,
	}
}

func toMessageDTOs(conv *models.Conversation, msgs []models.Message) ([]chat.MessageDTO, error) {
	dtos := make([]chat.MessageDTO, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		receiver, ok := conv.Counterpart(m.SenderID)
		if !ok {
			return nil, appErrors.ErrMalformedConversation
		}
		dtos = append(dtos, chat.MessageDTO{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			ReceiverID:     receiver,
			Content:        m.Content,
			Timestamp:      m.CreatedAt,
			Read:           m.Read,
		})
	}
	return dtos, nil
}
