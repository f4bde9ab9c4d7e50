package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	models "knead/internal/user/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"
)

var testDB *bun.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("knead"),
		postgres.WithUsername("knead"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return
	}

	connector := pgdriver.NewConnector(pgdriver.WithDSN(connStr))
	sqlDB := sql.OpenDB(connector)
	testDB = bun.NewDB(sqlDB, pgdialect.New())

	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	tables := []any{
		(*models.User)(nil),
		(*models.Preferences)(nil),
	}
	for _, t := range tables {
		if _, err := testDB.NewCreateTable().Model(t).IfNotExists().Exec(ctx); err != nil {
			testDB.Close()
			log.Fatalf("failed to create table for %T: %v", t, err)
		}
	}

	code := m.Run()

	testDB.Close()

	os.Exit(code)
}

func cleanup(t *testing.T) {
	t.Cleanup(func() {
		_, err := testDB.ExecContext(context.Background(), `TRUNCATE TABLE user_preferences, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
	})
}

func fixtureUser() (*models.User, *models.Preferences) {
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      "Emma Johnson",
		Age:       28,
		Gender:    models.GenderFemale,
		Bio:       "Deep tissue specialist",
		Latitude:  40.7128,
		Longitude: -74.0060,
		City:      "New York",
		Photos:    []string{"a.jpg", "b.jpg"},
		Skills:    []string{"Deep Tissue", "Swedish"},
	}
	p := &models.Preferences{
		MaxDistance: 50,
		MinAge:      18,
		MaxAge:      99,
		Genders:     []string{},
	}
	return u, p
}

func Test_CreateUserWithPreferences(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})
	u, p := fixtureUser()

	require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))
	assert.Equal(t, u.ID, p.UserID)
	assert.False(t, u.CreatedAt.IsZero(), "created_at should be set by DB")

	fetched, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, fetched.Name)
	assert.Equal(t, u.Skills, fetched.Skills)
	require.NotNil(t, fetched.Preferences)
	assert.Equal(t, 50, fetched.Preferences.MaxDistance)
	assert.Equal(t, 18, fetched.Preferences.MinAge)
	assert.Equal(t, 99, fetched.Preferences.MaxAge)
}

func Test_GetUserByID_NotFound(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})

	_, err := repo.GetUserByID(context.Background(), uuid.NewString())
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func Test_ListUsers_ExcludesViewer(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})

	var ids []string
	for i := 0; i < 3; i++ {
		u, p := fixtureUser()
		require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))
		ids = append(ids, u.ID)
	}

	users, err := repo.ListUsers(context.Background(), ids[0])
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, ids[0], u.ID)
		require.NotNil(t, u.Preferences)
	}
}

func Test_UpdateUser_PartialColumns(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})
	u, p := fixtureUser()
	require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))

	name := "Emma J."
	bio := "Now also doing hot stone"
	err := repo.UpdateUser(context.Background(), u.ID, models.UserUpdate{Name: &name, Bio: &bio})
	require.NoError(t, err)

	fetched, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, name, fetched.Name)
	assert.Equal(t, bio, fetched.Bio)
	// Untouched columns survive the partial update.
	assert.Equal(t, u.Age, fetched.Age)
	assert.Equal(t, u.City, fetched.City)
	assert.Equal(t, u.Skills, fetched.Skills)
}

func Test_UpdateUser_ReplacesGallery(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})
	u, p := fixtureUser()
	require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))

	err := repo.UpdateUser(context.Background(), u.ID, models.UserUpdate{
		Photos:    []string{"new.jpg"},
		PhotosSet: true,
	})
	require.NoError(t, err)

	fetched, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new.jpg"}, fetched.Photos)
}

func Test_UpdateUser_UnknownUser(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})

	name := "ghost"
	err := repo.UpdateUser(context.Background(), uuid.NewString(), models.UserUpdate{Name: &name})
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))
}

func Test_UpdatePreferences(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})
	u, p := fixtureUser()
	require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))

	maxDistance, minAge, maxAge := 25, 25, 35
	err := repo.UpdatePreferences(context.Background(), u.ID, models.PreferencesUpdate{
		MaxDistance: &maxDistance,
		MinAge:      &minAge,
		MaxAge:      &maxAge,
		Genders:     []string{"female", "non-binary"},
		GendersSet:  true,
	})
	require.NoError(t, err)

	fetched, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Preferences)
	assert.Equal(t, 25, fetched.Preferences.MaxDistance)
	assert.Equal(t, 25, fetched.Preferences.MinAge)
	assert.Equal(t, 35, fetched.Preferences.MaxAge)
	assert.Equal(t, []string{"female", "non-binary"}, fetched.Preferences.Genders)
}

func Test_TouchLastActive(t *testing.T) {
	cleanup(t)
	repo := NewUserRepository(testDB, logger.Logger{})
	u, p := fixtureUser()
	require.NoError(t, repo.CreateUserWithPreferences(context.Background(), u, p))
	require.True(t, u.LastActive.IsZero())

	require.NoError(t, repo.TouchLastActive(context.Background(), u.ID))

	fetched, err := repo.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, fetched.LastActive.IsZero())
}
