package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Conversation groups exactly two users. The pair is stored normalized
// (UserLo < UserHi) so the unique index idx_conversation_pair can enforce
// at-most-one conversation per unordered pair.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID        string    `bun:",pk,default:gen_random_uuid()::text"`
	UserLo    string    `bun:",notnull"`
	UserHi    string    `bun:",notnull"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// NormalizePair orders two user ids into (lo, hi).
func NormalizePair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Participants reports whether id belongs to the conversation.
func (c *Conversation) HasParticipant(id string) bool {
	return c.UserLo == id || c.UserHi == id
}

// Counterpart returns the other participant relative to id, false when id is
// not a participant or the pair is degenerate.
func (c *Conversation) Counterpart(id string) (string, bool) {
	if c.UserLo == "" || c.UserHi == "" || c.UserLo == c.UserHi {
		return "", false
	}
	switch id {
	case c.UserLo:
		return c.UserHi, true
	case c.UserHi:
		return c.UserLo, true
	}
	return "", false
}
