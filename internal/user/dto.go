package user

import (
	"time"

	models "knead/internal/user/model"
)

// NOTE: commands travel from handler to usecase
// Note: DTO travels from usecase to handler
// Input commands
type SignupCommand struct {
	Name           string
	Age            int
	Gender         models.Gender
	Bio            string
	Latitude       float64
	Longitude      float64
	City           string
	ProfilePicture string
	Photos         []string
	Skills         []string
}

type UpdateProfileCommand struct {
	Name           *string
	Age            *int
	Gender         *models.Gender
	Bio            *string
	Latitude       *float64
	Longitude      *float64
	City           *string
	ProfilePicture *string
	Photos         []string
	PhotosSet      bool
	Skills         []string
	SkillsSet      bool
	Preferences    *PreferencesCommand
}

type PreferencesCommand struct {
	MaxDistance *int
	AgeRange    *[2]int
	Genders     []models.Gender
	GendersSet  bool
}

// FilterCriteria narrows the directory. Nil/empty fields skip their predicate.
type FilterCriteria struct {
	MaxDistance    *int
	AgeRange       *[2]int
	Genders        []models.Gender
	Skills         []string
	SortByDistance bool
}

// Output DTOs
type LocationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
}

type PreferencesDTO struct {
	MaxDistance int             `json:"max_distance"`
	AgeRange    [2]int          `json:"age_range"`
	Genders     []models.Gender `json:"genders"`
}

type UserDTO struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Age            int            `json:"age"`
	Gender         models.Gender  `json:"gender"`
	Bio            string         `json:"bio"`
	Location       LocationDTO    `json:"location"`
	ProfilePicture string         `json:"profile_picture"`
	Photos         []string       `json:"photos"`
	Skills         []string       `json:"skills"`
	Preferences    PreferencesDTO `json:"preferences"`
	LastActive     time.Time      `json:"last_active"`
}

// DirectoryResult flags whether the listing came from the injected sample
// dataset rather than the authoritative store.
type DirectoryResult struct {
	Users        []UserDTO `json:"users"`
	FromFallback bool      `json:"from_fallback"`
}
