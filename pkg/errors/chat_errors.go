package errors

var (
	ErrConversationNotFound  = NotFound("conversation not found")
	ErrNotParticipant        = InvalidArg("sender is not a participant of the conversation")
	ErrEmptyMessage          = InvalidArg("message content cannot be empty")
	ErrSelfConversation      = InvalidArg("cannot open a conversation with yourself")
	ErrAmbiguousConversation = Integrity("multiple conversations exist for one participant pair")
	ErrMalformedConversation = Integrity("conversation does not resolve to exactly two participants")
)

func ErrSendFailed(cause error) error {
	return Wrap(CodeInternal, "sending message failed", cause)
}

func ErrStoreUnavailable(cause error) error {
	return Wrap(CodeUnavailable, "message store unreachable", cause)
}
