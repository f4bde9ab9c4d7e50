package http

import (
	"net/http/httptest"
	"testing"

	models "knead/internal/user/model"
	appErrors "knead/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criteriaContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/users?"+query, nil)
	return c
}

func TestParseCriteria_AgeBoundsDefaultWhenPartial(t *testing.T) {
	criteria, filtered, err := parseCriteria(criteriaContext(t, "age_min=25"))
	require.NoError(t, err)
	assert.True(t, filtered)
	require.NotNil(t, criteria.AgeRange)
	assert.Equal(t, [2]int{25, 99}, *criteria.AgeRange)

	criteria, filtered, err = parseCriteria(criteriaContext(t, "age_max=35"))
	require.NoError(t, err)
	assert.True(t, filtered)
	require.NotNil(t, criteria.AgeRange)
	assert.Equal(t, [2]int{18, 35}, *criteria.AgeRange)
}

func TestParseCriteria_FullQuery(t *testing.T) {
	criteria, filtered, err := parseCriteria(criteriaContext(t,
		"age_min=25&age_max=35&max_distance=15&genders=female,non-binary&skills=Reiki,Swedish&sort=distance"))
	require.NoError(t, err)
	assert.True(t, filtered)
	require.NotNil(t, criteria.MaxDistance)
	assert.Equal(t, 15, *criteria.MaxDistance)
	assert.Equal(t, [2]int{25, 35}, *criteria.AgeRange)
	assert.Equal(t, []models.Gender{models.GenderFemale, models.GenderNonBinary}, criteria.Genders)
	assert.Equal(t, []string{"Reiki", "Swedish"}, criteria.Skills)
	assert.True(t, criteria.SortByDistance)
}

func TestParseCriteria_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"non-integer age_min", "age_min=abc"},
		{"non-integer age_max", "age_min=25&age_max=abc"},
		{"inverted bounds", "age_min=40&age_max=30"},
		{"non-integer max_distance", "max_distance=near"},
		{"unknown gender", "genders=unicorn"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseCriteria(criteriaContext(t, tc.query))
			require.Error(t, err)
			assert.Equal(t, appErrors.CodeInvalidArgument, appErrors.CodeOf(err))
		})
	}
}

func TestParseCriteria_NoFilters(t *testing.T) {
	criteria, filtered, err := parseCriteria(criteriaContext(t, ""))
	require.NoError(t, err)
	assert.False(t, filtered)
	assert.Nil(t, criteria.AgeRange)
	assert.Nil(t, criteria.MaxDistance)
}
