package repository

import (
	"context"
	"database/sql"
	"strings"

	models "knead/internal/chat/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ChatRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewChatRepository(db *bun.DB, logger logger.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: &logger,
	}
}

func (r *ChatRepository) ConversationIDsForUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.Conversation)(nil)).
		Column("id").
		Where("user_lo = ? OR user_hi = ?", userID, userID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ConversationIDsForUser.Scan")
	}
	return ids, nil
}

func (r *ChatRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv := new(models.Conversation)
	err := r.db.NewSelect().Model(conv).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrConversationNotFound
		}
		return nil, errors.Wrap(err, "chatRepo.GetConversation.Scan")
	}
	return conv, nil
}

func (r *ChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.NewSelect().
		Model(&convs).
		Where("user_lo = ? OR user_hi = ?", userID, userID).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ListConversationsForUser.Scan")
	}
	return convs, nil
}

// CreateConversation inserts the normalized pair under the unique index.
// ON CONFLICT DO NOTHING makes a concurrent duplicate insert a no-op, in
// which case the existing row is re-selected.
func (r *ChatRepository) CreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	lo, hi := models.NormalizePair(userA, userB)

	conv := &models.Conversation{UserLo: lo, UserHi: hi}
	res, err := r.db.NewInsert().
		Model(conv).
		On("CONFLICT (user_lo, user_hi) DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.CreateConversation.Insert")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return conv, nil
	}

	// Lost the race: someone else created the pair first.
	existing := new(models.Conversation)
	err = r.db.NewSelect().
		Model(existing).
		Where("user_lo = ? AND user_hi = ?", lo, hi).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.CreateConversation.Reselect")
	}
	return existing, nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.NewSelect().
		Model(&msgs).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "chatRepo.ListMessages.Scan")
	}
	return msgs, nil
}

func (r *ChatRepository) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	msg := new(models.Message)
	err := r.db.NewSelect().
		Model(msg).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "chatRepo.LastMessage.Scan")
	}
	return msg, nil
}

func (r *ChatRepository) CountUnread(ctx context.Context, conversationID, viewerID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Message)(nil)).
		Where("conversation_id = ? AND sender_id != ? AND read = false", conversationID, viewerID).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "chatRepo.CountUnread.Count")
	}
	return count, nil
}

func (r *ChatRepository) InsertMessage(ctx context.Context, msg *models.Message) error {
	// The usecase trims already; reject here too so no caller can persist blanks.
	if strings.TrimSpace(msg.Content) == "" {
		return appErrors.ErrEmptyMessage
	}
	_, err := r.db.NewInsert().Model(msg).Returning("*").Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "chatRepo.InsertMessage.Exec")
	}
	return nil
}

func (r *ChatRepository) MarkMessagesRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model(&models.Message{Read: true}).
		Column("read").
		Where("conversation_id = ? AND sender_id != ? AND read = false", conversationID, viewerID).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "chatRepo.MarkMessagesRead.Exec")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
