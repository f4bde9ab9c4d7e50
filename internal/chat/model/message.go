package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Message is immutable once created except for the read flag, which only
// transitions false -> true.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID             string    `bun:",pk,default:gen_random_uuid()::text"`
	ConversationID string    `bun:",notnull"`
	SenderID       string    `bun:",notnull"`
	Content        string    `bun:",notnull"`
	CreatedAt      time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	Read           bool      `bun:",notnull,default:false"`
}
