package models

import "github.com/uptrace/bun"

// Preferences is a user's matching-preference record. One row per user,
// created together with the user at signup.
type Preferences struct {
	bun.BaseModel `bun:"table:user_preferences,alias:up"`

	UserID      string   `bun:",pk"`
	MaxDistance int      `bun:",notnull,default:50"`
	MinAge      int      `bun:",notnull,default:18"`
	MaxAge      int      `bun:",notnull,default:99"`
	Genders     []string `bun:",array"`
}

// UserUpdate carries a partial profile edit. A nil field leaves the column
// untouched.
type UserUpdate struct {
	Name           *string
	Age            *int
	Gender         *Gender
	Bio            *string
	Latitude       *float64
	Longitude      *float64
	City           *string
	ProfilePicture *string
	Photos         []string
	PhotosSet      bool
	Skills         []string
	SkillsSet      bool
}

type PreferencesUpdate struct {
	MaxDistance *int
	MinAge      *int
	MaxAge      *int
	Genders     []string
	GendersSet  bool
}
