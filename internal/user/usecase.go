package user

import (
	"context"

	models "knead/internal/user/model"
)

type UserUsecase interface {
	// Signup creates a profile with default matching preferences.
	Signup(ctx context.Context, cmd SignupCommand) (*UserDTO, error)

	GetUser(ctx context.Context, id string) (*UserDTO, error)

	// ListUsers returns the directory minus the viewer. Degrades to the
	// injected sample directory when the store is unreachable.
	ListUsers(ctx context.Context, viewerID string) (*DirectoryResult, error)

	// FilterUsers applies distance/age/gender/skill predicates measured from
	// the viewer's stored location.
	FilterUsers(ctx context.Context, viewerID string, criteria FilterCriteria) (*DirectoryResult, error)

	UpdateProfile(ctx context.Context, userID string, cmd UpdateProfileCommand) (*UserDTO, error)
}

// FallbackDirectory is the read-only sample dataset reads degrade to when the
// backing store is unreachable. Injected explicitly so tests can tell which
// path served a result.
type FallbackDirectory interface {
	Users() []models.User
	UserByID(id string) (*models.User, bool)
}
