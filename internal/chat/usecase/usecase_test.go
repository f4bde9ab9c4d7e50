package usecase

import (
	"context"
	"testing"
	"time"

	"knead/internal/chat"
	"knead/internal/chat/mocks"
	models "knead/internal/chat/model"
	"knead/internal/fallback"
	userModels "knead/internal/user/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownUser(id string) *userModels.User {
	return &userModels.User{ID: id, Name: "user " + id}
}

func newUsecase(t *testing.T, withFallback bool) (*ChatUsecase, *mocks.MockChatRepository, *mocks.MockUserGetter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockChatRepository(ctrl)
	users := mocks.NewMockUserGetter(ctrl)

	var fb chat.FallbackSource
	if withFallback {
		sample, err := fallback.NewSample()
		require.NoError(t, err)
		fb = sample
	}

	uc := NewChatUsecase(repo, users, fb, logger.Logger{})
	return uc, repo, users
}

func TestOpenConversationWithUser_Symmetry(t *testing.T) {
	uc, repo, users := newUsecase(t, false)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "2"}

	users.EXPECT().GetUserByID(gomock.Any(), "1").Return(knownUser("1"), nil).Times(2)
	users.EXPECT().GetUserByID(gomock.Any(), "2").Return(knownUser("2"), nil).Times(2)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "1").Return([]string{"c1", "c9"}, nil).Times(2)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "2").Return([]string{"c1", "c7"}, nil).Times(2)
	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil).Times(2)

	forward, err := uc.OpenConversationWithUser(context.Background(), "1", "2")
	require.NoError(t, err)
	reverse, err := uc.OpenConversationWithUser(context.Background(), "2", "1")
	require.NoError(t, err)

	assert.Equal(t, forward.ID, reverse.ID)
	assert.Equal(t, [2]string{"1", "2"}, forward.Participants)
}

func TestOpenConversationWithUser_CreatesExactlyOnce(t *testing.T) {
	uc, repo, users := newUsecase(t, false)
	created := &models.Conversation{ID: "c-new", UserLo: "1", UserHi: "2"}

	users.EXPECT().GetUserByID(gomock.Any(), gomock.Any()).Return(knownUser("x"), nil).AnyTimes()

	// First call: no overlap, creation happens once.
	first := repo.EXPECT().ConversationIDsForUser(gomock.Any(), "1").Return(nil, nil)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "2").Return(nil, nil)
	repo.EXPECT().CreateConversation(gomock.Any(), "1", "2").Return(created, nil).Times(1)

	// Second call: the pair now resolves by lookup; no further create.
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "1").Return([]string{"c-new"}, nil).After(first)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "2").Return([]string{"c-new"}, nil)
	repo.EXPECT().GetConversation(gomock.Any(), "c-new").Return(created, nil)

	one, err := uc.OpenConversationWithUser(context.Background(), "1", "2")
	require.NoError(t, err)
	two, err := uc.OpenConversationWithUser(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, one.ID, two.ID)
}

func TestOpenConversationWithUser_AmbiguousPairSurfaces(t *testing.T) {
	uc, repo, users := newUsecase(t, false)

	users.EXPECT().GetUserByID(gomock.Any(), gomock.Any()).Return(knownUser("x"), nil).AnyTimes()
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "1").Return([]string{"c1", "c2"}, nil)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "2").Return([]string{"c2", "c1"}, nil)

	_, err := uc.OpenConversationWithUser(context.Background(), "1", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeDataIntegrity, appErrors.CodeOf(err))
}

func TestOpenConversationWithUser_UnknownUser(t *testing.T) {
	uc, _, users := newUsecase(t, false)

	users.EXPECT().GetUserByID(gomock.Any(), "1").Return(knownUser("1"), nil)
	users.EXPECT().GetUserByID(gomock.Any(), "ghost").Return(nil, appErrors.ErrUserNotFound)

	_, err := uc.OpenConversationWithUser(context.Background(), "1", "ghost")
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func TestOpenConversationWithUser_UserStoreUnreachable(t *testing.T) {
	uc, _, users := newUsecase(t, false)

	users.EXPECT().GetUserByID(gomock.Any(), "1").Return(nil, errors.New("connection refused"))

	// A dead user store reads as unavailable, not as an unknown internal fault.
	_, err := uc.OpenConversationWithUser(context.Background(), "1", "2")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeUnavailable, appErrors.CodeOf(err))
}

func TestOpenConversationWithUser_RejectsSelfAndEmpty(t *testing.T) {
	uc, _, _ := newUsecase(t, false)

	_, err := uc.OpenConversationWithUser(context.Background(), "1", "1")
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))

	_, err = uc.OpenConversationWithUser(context.Background(), "", "2")
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
}

func TestSendMessageToUser_FirstMessageCreatesConversation(t *testing.T) {
	uc, repo, users := newUsecase(t, false)
	created := &models.Conversation{ID: "c-new", UserLo: "1", UserHi: "2"}

	users.EXPECT().GetUserByID(gomock.Any(), gomock.Any()).Return(knownUser("x"), nil).Times(2)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "1").Return(nil, nil)
	repo.EXPECT().ConversationIDsForUser(gomock.Any(), "2").Return(nil, nil)
	repo.EXPECT().CreateConversation(gomock.Any(), "1", "2").Return(created, nil)
	repo.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg *models.Message) error {
			msg.ID = "m1"
			msg.CreatedAt = time.Now()
			return nil
		})

	msg, err := uc.SendMessageToUser(context.Background(), "1", "2", "hello")
	require.NoError(t, err)
	assert.Equal(t, "c-new", msg.ConversationID)
	assert.Equal(t, "1", msg.SenderID)
	assert.Equal(t, "2", msg.ReceiverID)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.Read)
}

func TestSendMessage_RejectsEmptyContent(t *testing.T) {
	uc, _, _ := newUsecase(t, false)

	_, err := uc.SendMessage(context.Background(), "1", "c1", "   \n\t ")
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
}

func TestSendMessage_RejectsNonParticipant(t *testing.T) {
	uc, repo, _ := newUsecase(t, false)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "2"}

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil)

	_, err := uc.SendMessage(context.Background(), "intruder", "c1", "hi")
	assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
}

func TestSendMessage_WriteFailureSurfaces(t *testing.T) {
	uc, repo, _ := newUsecase(t, true)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "2"}

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil)
	repo.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	// Even with a fallback wired, a failed write is reported, never faked.
	_, err := uc.SendMessage(context.Background(), "1", "c1", "hi")
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInternal, appErrors.CodeOf(err))
}

func TestGetMessages_OrderedWithDerivedReceiver(t *testing.T) {
	uc, repo, _ := newUsecase(t, false)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "2"}
	base := time.Date(2023, 5, 15, 10, 0, 0, 0, time.UTC)

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil)
	repo.EXPECT().ListMessages(gomock.Any(), "c1").Return([]models.Message{
		{ID: "m1", ConversationID: "c1", SenderID: "2", Content: "a", CreatedAt: base},
		{ID: "m2", ConversationID: "c1", SenderID: "1", Content: "b", CreatedAt: base.Add(time.Minute)},
		{ID: "m3", ConversationID: "c1", SenderID: "2", Content: "c", CreatedAt: base.Add(2 * time.Minute)},
	}, nil)

	list, err := uc.GetMessages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, list.Messages, 3)
	assert.False(t, list.FromFallback)

	for i := 1; i < len(list.Messages); i++ {
		assert.False(t, list.Messages[i].Timestamp.Before(list.Messages[i-1].Timestamp))
	}
	assert.Equal(t, "1", list.Messages[0].ReceiverID)
	assert.Equal(t, "2", list.Messages[1].ReceiverID)
}

func TestGetMessages_MalformedConversation(t *testing.T) {
	uc, repo, _ := newUsecase(t, false)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "1"}

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil)
	repo.EXPECT().ListMessages(gomock.Any(), "c1").Return([]models.Message{
		{ID: "m1", ConversationID: "c1", SenderID: "1", Content: "a"},
	}, nil)

	_, err := uc.GetMessages(context.Background(), "c1")
	assert.Equal(t, appErrors.CodeDataIntegrity, appErrors.CodeOf(err))
}

func TestGetMessages_FallsBackWhenStoreUnreachable(t *testing.T) {
	uc, repo, _ := newUsecase(t, true)

	repo.EXPECT().GetConversation(gomock.Any(), "conv1").Return(nil, errors.New("connection refused"))

	list, err := uc.GetMessages(context.Background(), "conv1")
	require.NoError(t, err)
	assert.True(t, list.FromFallback)
	require.Len(t, list.Messages, 5)
	for i := 1; i < len(list.Messages); i++ {
		assert.False(t, list.Messages[i].Timestamp.Before(list.Messages[i-1].Timestamp))
	}
}

func TestGetMessages_UnavailableWithoutFallback(t *testing.T) {
	uc, repo, _ := newUsecase(t, false)

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(nil, errors.New("connection refused"))

	_, err := uc.GetMessages(context.Background(), "c1")
	assert.Equal(t, appErrors.CodeUnavailable, appErrors.CodeOf(err))
}

func TestGetMessages_NotFoundIsNotMasked(t *testing.T) {
	uc, repo, _ := newUsecase(t, true)

	repo.EXPECT().GetConversation(gomock.Any(), "missing").Return(nil, appErrors.ErrConversationNotFound)

	_, err := uc.GetMessages(context.Background(), "missing")
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func TestGetConversations_BuildsSummaries(t *testing.T) {
	uc, repo, users := newUsecase(t, false)
	last := &models.Message{ID: "m9", ConversationID: "c1", SenderID: "2", Content: "latest", CreatedAt: time.Now(), Read: false}

	repo.EXPECT().ListConversationsForUser(gomock.Any(), "1").Return([]models.Conversation{
		{ID: "c1", UserLo: "1", UserHi: "2"},
		{ID: "c2", UserLo: "1", UserHi: "3"},
	}, nil)
	users.EXPECT().GetUserByID(gomock.Any(), "2").Return(&userModels.User{ID: "2", Name: "Michael", ProfilePicture: "pic2"}, nil)
	users.EXPECT().GetUserByID(gomock.Any(), "3").Return(&userModels.User{ID: "3", Name: "Sophia"}, nil)
	repo.EXPECT().LastMessage(gomock.Any(), "c1").Return(last, nil)
	repo.EXPECT().LastMessage(gomock.Any(), "c2").Return(nil, nil)
	repo.EXPECT().CountUnread(gomock.Any(), "c1", "1").Return(2, nil)
	repo.EXPECT().CountUnread(gomock.Any(), "c2", "1").Return(0, nil)

	list, err := uc.GetConversations(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, list.Conversations, 2)

	first := list.Conversations[0]
	assert.Equal(t, "Michael", first.Counterpart.Name)
	require.NotNil(t, first.LastMessage)
	assert.Equal(t, "latest", first.LastMessage.Content)
	assert.Equal(t, "1", first.LastMessage.ReceiverID)
	assert.Equal(t, 2, first.UnreadCount)

	second := list.Conversations[1]
	assert.Nil(t, second.LastMessage)
	assert.Equal(t, 0, second.UnreadCount)
}

func TestGetConversations_DropsUnresolvableCounterpart(t *testing.T) {
	uc, repo, users := newUsecase(t, false)

	repo.EXPECT().ListConversationsForUser(gomock.Any(), "1").Return([]models.Conversation{
		{ID: "c-bad", UserLo: "1", UserHi: "1"},
		{ID: "c-gone", UserLo: "1", UserHi: "ghost"},
		{ID: "c-ok", UserLo: "1", UserHi: "2"},
	}, nil)
	users.EXPECT().GetUserByID(gomock.Any(), "ghost").Return(nil, appErrors.ErrUserNotFound)
	users.EXPECT().GetUserByID(gomock.Any(), "2").Return(knownUser("2"), nil)
	repo.EXPECT().LastMessage(gomock.Any(), "c-ok").Return(nil, nil)
	repo.EXPECT().CountUnread(gomock.Any(), "c-ok", "1").Return(0, nil)

	list, err := uc.GetConversations(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, "c-ok", list.Conversations[0].Conversation.ID)
}

func TestGetConversations_FallsBackWhenStoreUnreachable(t *testing.T) {
	uc, repo, _ := newUsecase(t, true)

	repo.EXPECT().ListConversationsForUser(gomock.Any(), "1").Return(nil, errors.New("connection refused"))

	list, err := uc.GetConversations(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, list.FromFallback)
	require.Len(t, list.Conversations, 3)

	byID := make(map[string]int)
	for _, s := range list.Conversations {
		byID[s.Conversation.ID] = s.UnreadCount
	}
	assert.Equal(t, 2, byID["conv1"])
	assert.Equal(t, 0, byID["conv2"])
	assert.Equal(t, 1, byID["conv3"])
}

func TestMarkMessagesAsRead_Idempotent(t *testing.T) {
	uc, repo, _ := newUsecase(t, false)
	conv := &models.Conversation{ID: "c1", UserLo: "1", UserHi: "2"}

	repo.EXPECT().GetConversation(gomock.Any(), "c1").Return(conv, nil).Times(2)
	gomock.InOrder(
		repo.EXPECT().MarkMessagesRead(gomock.Any(), "c1", "1").Return(int64(3), nil),
		repo.EXPECT().MarkMessagesRead(gomock.Any(), "c1", "1").Return(int64(0), nil),
	)

	require.NoError(t, uc.MarkMessagesAsRead(context.Background(), "1", "c1"))
	require.NoError(t, uc.MarkMessagesAsRead(context.Background(), "1", "c1"))
}
