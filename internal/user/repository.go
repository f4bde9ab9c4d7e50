package user

import (
	"context"

	models "knead/internal/user/model"
)

type UserRepository interface {
	// CreateUserWithPreferences inserts the user and its preference row as
	// one transaction.
	CreateUserWithPreferences(ctx context.Context, u *models.User, p *models.Preferences) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// ListUsers returns every user except excludeID, preferences included.
	ListUsers(ctx context.Context, excludeID string) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error
	UpdatePreferences(ctx context.Context, userID string, upd models.PreferencesUpdate) error
	TouchLastActive(ctx context.Context, id string) error
}
