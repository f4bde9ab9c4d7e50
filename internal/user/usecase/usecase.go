package usecase

import (
	"context"
	"sort"
	"strings"

	"knead/config"
	"knead/internal/user"
	models "knead/internal/user/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/geo"
	"knead/pkg/logger"

	"github.com/google/uuid"
)

type UserUsecase struct {
	repo     user.UserRepository
	fallback user.FallbackDirectory
	logger   logger.Logger
	config   config.Config
}

func NewUserUsecase(repo user.UserRepository, fallback user.FallbackDirectory, logger logger.Logger, config config.Config) *UserUsecase {
	return &UserUsecase{repo: repo, fallback: fallback, logger: logger, config: config}
}

func (uc *UserUsecase) Signup(ctx context.Context, cmd user.SignupCommand) (*user.UserDTO, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, appErrors.ErrInvalidName
	}
	if cmd.Age < 18 {
		return nil, appErrors.ErrInvalidAge
	}
	if !cmd.Gender.Valid() {
		return nil, appErrors.ErrInvalidGender
	}
	if len(cmd.Photos) > models.MaxGalleryPhotos {
		return nil, appErrors.ErrTooManyPhotos
	}

	u := &models.User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(cmd.Name),
		Age:            cmd.Age,
		Gender:         cmd.Gender,
		Bio:            cmd.Bio,
		Latitude:       cmd.Latitude,
		Longitude:      cmd.Longitude,
		City:           cmd.City,
		ProfilePicture: cmd.ProfilePicture,
		Photos:         cmd.Photos,
		Skills:         cmd.Skills,
	}
	p := &models.Preferences{
		MaxDistance: uc.config.Discover.DefaultMaxDistance,
		MinAge:      uc.config.Discover.DefaultMinAge,
		MaxAge:      uc.config.Discover.DefaultMaxAge,
		Genders:     []string{},
	}

	if err := uc.repo.CreateUserWithPreferences(ctx, u, p); err != nil {
		uc.logger.Error("error while saving user in db", "err", err)
		return nil, appErrors.ErrSignupFailed(err)
	}

	u.Preferences = p
	return toDTO(u), nil
}

func (uc *UserUsecase) GetUser(ctx context.Context, id string) (*user.UserDTO, error) {
	u, err := uc.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

func (uc *UserUsecase) ListUsers(ctx context.Context, viewerID string) (*user.DirectoryResult, error) {
	users, fromFallback, err := uc.directory(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &user.DirectoryResult{Users: toDTOs(users), FromFallback: fromFallback}, nil
}

func (uc *UserUsecase) FilterUsers(ctx context.Context, viewerID string, criteria user.FilterCriteria) (*user.DirectoryResult, error) {
	users, fromFallback, err := uc.directory(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	viewer, err := uc.viewer(ctx, viewerID, fromFallback)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if matches(viewer, u, criteria) {
			filtered = append(filtered, u)
		}
	}

	if criteria.SortByDistance {
		SortByDistance(viewer, filtered)
	}
	return &user.DirectoryResult{Users: toDTOs(filtered), FromFallback: fromFallback}, nil
}

// directory fetches everyone but the viewer, degrading to the injected
// sample dataset when the store is unreachable.
func (uc *UserUsecase) directory(ctx context.Context, viewerID string) ([]models.User, bool, error) {
	users, err := uc.repo.ListUsers(ctx, viewerID)
	if err == nil {
		// Browsing counts as presence; best effort.
		if err := uc.repo.TouchLastActive(ctx, viewerID); err != nil {
			uc.logger.Warn("presence touch failed", "viewer_id", viewerID, "err", err)
		}
		return users, false, nil
	}
	if uc.fallback == nil {
		uc.logger.Error("user directory unreachable", "err", err)
		return nil, false, appErrors.ErrDirectoryUnavailable(err)
	}

	uc.logger.Warn("user directory unreachable, serving sample data", "err", err)
	all := uc.fallback.Users()
	users = make([]models.User, 0, len(all))
	for _, u := range all {
		if u.ID != viewerID {
			users = append(users, u)
		}
	}
	return users, true, nil
}

func (uc *UserUsecase) viewer(ctx context.Context, viewerID string, fromFallback bool) (*models.User, error) {
	if fromFallback {
		v, ok := uc.fallback.UserByID(viewerID)
		if !ok {
			return nil, appErrors.ErrUserNotFound
		}
		return v, nil
	}
	return uc.repo.GetUserByID(ctx, viewerID)
}

func matches(viewer *models.User, u models.User, c user.FilterCriteria) bool {
	if c.MaxDistance != nil {
		d := geo.Distance(viewer.Latitude, viewer.Longitude, u.Latitude, u.Longitude)
		if d > float64(*c.MaxDistance) {
			return false
		}
	}
	if c.AgeRange != nil && (u.Age < c.AgeRange[0] || u.Age > c.AgeRange[1]) {
		return false
	}
	if len(c.Genders) > 0 && !containsGender(c.Genders, u.Gender) {
		return false
	}
	if len(c.Skills) > 0 && !anySkillOverlap(u.Skills, c.Skills) {
		return false
	}
	return true
}

func containsGender(gs []models.Gender, g models.Gender) bool {
	for _, candidate := range gs {
		if candidate == g {
			return true
		}
	}
	return false
}

func anySkillOverlap(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// SortByDistance orders users ascending by their haversine distance from the
// viewer's stored location.
func SortByDistance(viewer *models.User, users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		di := geo.Distance(viewer.Latitude, viewer.Longitude, users[i].Latitude, users[i].Longitude)
		dj := geo.Distance(viewer.Latitude, viewer.Longitude, users[j].Latitude, users[j].Longitude)
		return di < dj
	})
}

func (uc *UserUsecase) UpdateProfile(ctx context.Context, userID string, cmd user.UpdateProfileCommand) (*user.UserDTO, error) {
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		return nil, appErrors.ErrInvalidName
	}
	if cmd.Age != nil && *cmd.Age < 18 {
		return nil, appErrors.ErrInvalidAge
	}
	if cmd.Gender != nil && !cmd.Gender.Valid() {
		return nil, appErrors.ErrInvalidGender
	}
	if cmd.PhotosSet && len(cmd.Photos) > models.MaxGalleryPhotos {
		return nil, appErrors.ErrTooManyPhotos
	}
	// Validate the whole command before touching any row, so a rejected
	// request mutates nothing.
	if cmd.Preferences != nil {
		if cmd.Preferences.AgeRange != nil && cmd.Preferences.AgeRange[0] > cmd.Preferences.AgeRange[1] {
			return nil, appErrors.ErrInvalidAgeRange
		}
		for _, g := range cmd.Preferences.Genders {
			if !g.Valid() {
				return nil, appErrors.ErrInvalidGender
			}
		}
	}

	upd := models.UserUpdate{
		Name:           cmd.Name,
		Age:            cmd.Age,
		Gender:         cmd.Gender,
		Bio:            cmd.Bio,
		Latitude:       cmd.Latitude,
		Longitude:      cmd.Longitude,
		City:           cmd.City,
		ProfilePicture: cmd.ProfilePicture,
		Photos:         cmd.Photos,
		PhotosSet:      cmd.PhotosSet,
		Skills:         cmd.Skills,
		SkillsSet:      cmd.SkillsSet,
	}
	if err := uc.repo.UpdateUser(ctx, userID, upd); err != nil {
		if appErrors.IsCode(err, appErrors.CodeNotFound) {
			return nil, err
		}
		uc.logger.Error("error while updating profile in db", "err", err, "user_id", userID)
		return nil, appErrors.Wrap(appErrors.CodeInternal, "profile update failed", err)
	}

	if cmd.Preferences != nil {
		prefUpd := models.PreferencesUpdate{
			MaxDistance: cmd.Preferences.MaxDistance,
			Genders:     genderStrings(cmd.Preferences.Genders),
			GendersSet:  cmd.Preferences.GendersSet,
		}
		if cmd.Preferences.AgeRange != nil {
			prefUpd.MinAge = &cmd.Preferences.AgeRange[0]
			prefUpd.MaxAge = &cmd.Preferences.AgeRange[1]
		}
		if err := uc.repo.UpdatePreferences(ctx, userID, prefUpd); err != nil {
			if appErrors.IsCode(err, appErrors.CodeNotFound) {
				return nil, err
			}
			uc.logger.Error("error while updating preferences in db", "err", err, "user_id", userID)
			return nil, appErrors.Wrap(appErrors.CodeInternal, "preference update failed", err)
		}
	}

	return uc.GetUser(ctx, userID)
}

func genderStrings(gs []models.Gender) []string {
	if gs == nil {
		return nil
	}
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = string(g)
	}
	return out
}

func toDTO(u *models.User) *user.UserDTO {
	dto := &user.UserDTO{
		ID:     u.ID,
		Name:   u.Name,
		Age:    u.Age,
		Gender: u.Gender,
		Bio:    u.Bio,
		Location: user.LocationDTO{
			Latitude:  u.Latitude,
			Longitude: u.Longitude,
			City:      u.City,
		},
		ProfilePicture: u.ProfilePicture,
		Photos:         u.Photos,
		Skills:         u.Skills,
		LastActive:     u.LastActive,
	}
	if u.Preferences != nil {
		dto.Preferences = user.PreferencesDTO{
			MaxDistance: u.Preferences.MaxDistance,
			AgeRange:    [2]int{u.Preferences.MinAge, u.Preferences.MaxAge},
			Genders:     toGenders(u.Preferences.Genders),
		}
	}
	return dto
}

func toGenders(ss []string) []models.Gender {
	out := make([]models.Gender, len(ss))
	for i, s := range ss {
		out[i] = models.Gender(s)
	}
	return out
}

func toDTOs(users []models.User) []user.UserDTO {
	out := make([]user.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *toDTO(&users[i]))
	}
	return out
}
