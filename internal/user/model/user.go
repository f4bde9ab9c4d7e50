package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderNonBinary   Gender = "non-binary"
	GenderUndisclosed Gender = "prefer-not-to-say"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary, GenderUndisclosed:
		return true
	}
	return false
}

// MaxGalleryPhotos caps the ordered photo gallery.
const MaxGalleryPhotos = 6

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID string `bun:",pk,default:gen_random_uuid()::text"`

	Name   string `bun:",notnull"`
	Age    int    `bun:",notnull"`
	Gender Gender `bun:",notnull"`
	Bio    string `bun:",nullzero"`

	Latitude  float64 `bun:",notnull"`
	Longitude float64 `bun:",notnull"`
	City      string  `bun:",nullzero"`

	ProfilePicture string   `bun:",nullzero"`
	Photos         []string `bun:",array"`
	Skills         []string `bun:",array"`

	LastActive time.Time `bun:",nullzero"`
	CreatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp"`

	Preferences *Preferences `bun:"rel:has-one,join:id=user_id"`
}
