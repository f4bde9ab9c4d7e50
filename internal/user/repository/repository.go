package repository

import (
	"context"
	"database/sql"
	"time"

	models "knead/internal/user/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type UserRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewUserRepository(db *bun.DB, logger logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: &logger,
	}
}

func (r *UserRepository) CreateUserWithPreferences(ctx context.Context, u *models.User, p *models.Preferences) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(u).Returning("*").Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "userRepo.CreateUserWithPreferences.InsertUser")
		}

		p.UserID = u.ID
		_, err = tx.NewInsert().Model(p).Returning("*").Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "userRepo.CreateUserWithPreferences.InsertPreferences")
		}
		return nil
	})
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Relation("Preferences").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "userRepo.GetUserByID.Scan")
	}
	return user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Relation("Preferences").
		Where("u.id != ?", excludeID).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "userRepo.ListUsers.Scan")
	}
	return users, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error {
	patch := new(models.User)
	var cols []string

	if upd.Name != nil {
		patch.Name = *upd.Name
		cols = append(cols, "name")
	}
	if upd.Age != nil {
		patch.Age = *upd.Age
		cols = append(cols, "age")
	}
	if upd.Gender != nil {
		patch.Gender = *upd.Gender
		cols = append(cols, "gender")
	}
	if upd.Bio != nil {
		patch.Bio = *upd.Bio
		cols = append(cols, "bio")
	}
	if upd.Latitude != nil {
		patch.Latitude = *upd.Latitude
		cols = append(cols, "latitude")
	}
	if upd.Longitude != nil {
		patch.Longitude = *upd.Longitude
		cols = append(cols, "longitude")
	}
	if upd.City != nil {
		patch.City = *upd.City
		cols = append(cols, "city")
	}
	if upd.ProfilePicture != nil {
		patch.ProfilePicture = *upd.ProfilePicture
		cols = append(cols, "profile_picture")
	}
	if upd.PhotosSet {
		patch.Photos = upd.Photos
		cols = append(cols, "photos")
	}
	if upd.SkillsSet {
		patch.Skills = upd.Skills
		cols = append(cols, "skills")
	}
	if len(cols) == 0 {
		return nil
	}

	patch.UpdatedAt = time.Now()
	cols = append(cols, "updated_at")

	res, err := r.db.NewUpdate().
		Model(patch).
		Column(cols...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "userRepo.UpdateUser.Exec")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, userID string, upd models.PreferencesUpdate) error {
	patch := new(models.Preferences)
	var cols []string

	if upd.MaxDistance != nil {
		patch.MaxDistance = *upd.MaxDistance
		cols = append(cols, "max_distance")
	}
	if upd.MinAge != nil {
		patch.MinAge = *upd.MinAge
		cols = append(cols, "min_age")
	}
	if upd.MaxAge != nil {
		patch.MaxAge = *upd.MaxAge
		cols = append(cols, "max_age")
	}
	if upd.GendersSet {
		patch.Genders = upd.Genders
		cols = append(cols, "genders")
	}
	if len(cols) == 0 {
		return nil
	}

	res, err := r.db.NewUpdate().
		Model(patch).
		Column(cols...).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "userRepo.UpdatePreferences.Exec")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	_, err := r.db.NewUpdate().
		Model(&models.User{LastActive: time.Now()}).
		Column("last_active").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "userRepo.TouchLastActive.Exec")
	}
	return nil
}
