package http

import (
	"net/http"
	"strconv"
	"strings"

	"knead/internal/user"
	models "knead/internal/user/model"
	appErrors "knead/pkg/errors"
	"knead/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	usecase user.UserUsecase
	logger  logger.Logger
}

func NewUserHandler(usecase user.UserUsecase, logger logger.Logger) *UserHandler {
	return &UserHandler{usecase: usecase, logger: logger}
}

func (h *UserHandler) MapRoutes(g *gin.RouterGroup) {
	g.POST("/users", h.Signup())
	g.GET("/users", h.Directory())
	g.GET("/users/:id", h.GetUser())
	g.PATCH("/users/:id", h.UpdateProfile())
}

type signupRequest struct {
	Name           string   `json:"name" binding:"required"`
	Age            int      `json:"age" binding:"required"`
	Gender         string   `json:"gender" binding:"required"`
	Bio            string   `json:"bio"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	City           string   `json:"city"`
	ProfilePicture string   `json:"profile_picture"`
	Photos         []string `json:"photos"`
	Skills         []string `json:"skills"`
}

func (h *UserHandler) Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dto, err := h.usecase.Signup(c.Request.Context(), user.SignupCommand{
			Name:           req.Name,
			Age:            req.Age,
			Gender:         models.Gender(req.Gender),
			Bio:            req.Bio,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			City:           req.City,
			ProfilePicture: req.ProfilePicture,
			Photos:         req.Photos,
			Skills:         req.Skills,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto)
	}
}

func (h *UserHandler) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		dto, err := h.usecase.GetUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

// Directory lists or filters profiles for the viewer; query params map onto
// FilterCriteria.
func (h *UserHandler) Directory() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID := c.Query("viewer")
		if viewerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "viewer is required"})
			return
		}

		criteria, filtered, err := parseCriteria(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var result *user.DirectoryResult
		if filtered {
			result, err = h.usecase.FilterUsers(c.Request.Context(), viewerID, criteria)
		} else {
			result, err = h.usecase.ListUsers(c.Request.Context(), viewerID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func parseCriteria(c *gin.Context) (user.FilterCriteria, bool, error) {
	var criteria user.FilterCriteria
	filtered := false

	if s := c.Query("max_distance"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			return criteria, false, appErrors.InvalidArg("max_distance must be an integer")
		}
		criteria.MaxDistance = &d
		filtered = true
	}
	ageMin, ageMax := c.Query("age_min"), c.Query("age_max")
	if ageMin != "" || ageMax != "" {
		// An absent bound falls back to the open end of the default range.
		lo, hi := 18, 99
		if ageMin != "" {
			v, err := strconv.Atoi(ageMin)
			if err != nil {
				return criteria, false, appErrors.InvalidArg("age_min must be an integer")
			}
			lo = v
		}
		if ageMax != "" {
			v, err := strconv.Atoi(ageMax)
			if err != nil {
				return criteria, false, appErrors.InvalidArg("age_max must be an integer")
			}
			hi = v
		}
		if lo > hi {
			return criteria, false, appErrors.ErrInvalidAgeRange
		}
		criteria.AgeRange = &[2]int{lo, hi}
		filtered = true
	}
	if s := c.Query("genders"); s != "" {
		for _, g := range strings.Split(s, ",") {
			gender := models.Gender(strings.TrimSpace(g))
			if !gender.Valid() {
				return criteria, false, appErrors.ErrInvalidGender
			}
			criteria.Genders = append(criteria.Genders, gender)
		}
		filtered = true
	}
	if s := c.Query("skills"); s != "" {
		criteria.Skills = strings.Split(s, ",")
		filtered = true
	}
	if c.Query("sort") == "distance" {
		criteria.SortByDistance = true
		filtered = true
	}
	return criteria, filtered, nil
}

type updateProfileRequest struct {
	Name           *string  `json:"name"`
	Age            *int     `json:"age"`
	Gender         *string  `json:"gender"`
	Bio            *string  `json:"bio"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	City           *string  `json:"city"`
	ProfilePicture *string  `json:"profile_picture"`
	Photos         []string `json:"photos"`
	Skills         []string `json:"skills"`
	Preferences    *struct {
		MaxDistance *int     `json:"max_distance"`
		AgeRange    *[2]int  `json:"age_range"`
		Genders     []string `json:"genders"`
	} `json:"preferences"`
}

func (h *UserHandler) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		cmd := user.UpdateProfileCommand{
			Name:           req.Name,
			Age:            req.Age,
			Bio:            req.Bio,
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			City:           req.City,
			ProfilePicture: req.ProfilePicture,
			Photos:         req.Photos,
			PhotosSet:      req.Photos != nil,
			Skills:         req.Skills,
			SkillsSet:      req.Skills != nil,
		}
		if req.Gender != nil {
			g := models.Gender(*req.Gender)
			cmd.Gender = &g
		}
		if req.Preferences != nil {
			pc := &user.PreferencesCommand{
				MaxDistance: req.Preferences.MaxDistance,
				AgeRange:    req.Preferences.AgeRange,
				GendersSet:  req.Preferences.Genders != nil,
			}
			for _, g := range req.Preferences.Genders {
				pc.Genders = append(pc.Genders, models.Gender(g))
			}
			cmd.Preferences = pc
		}

		dto, err := h.usecase.UpdateProfile(c.Request.Context(), c.Param("id"), cmd)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto)
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(appErrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
