package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/opportunity-hub/internal/middleware"
	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/service"
)

// ProfileHandler replaces the caller's profile sections one at a time.
type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(p *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

type basicProfileReq struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=50"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,url"`
	Github   *string `json:"github" validate:"omitempty,max=255"`
	Linkedin *string `json:"linkedin" validate:"omitempty,max=255"`
}

type skillsReq struct {
	Skills []model.Skill `json:"skills" validate:"required,dive"`
}

type projectsReq struct {
	Projects []model.Project `json:"projects" validate:"required,dive"`
}

type achievementsReq struct {
	Achievements []model.Achievement `json:"achievements" validate:"required,dive"`
}

type educationReq struct {
	Education []model.Education `json:"education" validate:"required,dive"`
}

type workExperienceReq struct {
	WorkExperience []model.WorkExperience `json:"workExperience" validate:"required,dive"`
}

// Get returns the caller's full profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *ProfileHandler) UpdateBasic(c echo.Context) error {
	var req basicProfileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.UpdateBasic(ctx, uid, service.BasicProfile{
			Name: req.Name, Bio: req.Bio, Location: req.Location,
			Website: req.Website, Github: req.Github, Linkedin: req.Linkedin,
		})
	})
}

func (h *ProfileHandler) ReplaceSkills(c echo.Context) error {
	var req skillsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.ReplaceSkills(ctx, uid, req.Skills)
	})
}

func (h *ProfileHandler) ReplaceProjects(c echo.Context) error {
	var req projectsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.ReplaceProjects(ctx, uid, req.Projects)
	})
}

func (h *ProfileHandler) ReplaceAchievements(c echo.Context) error {
	var req achievementsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.ReplaceAchievements(ctx, uid, req.Achievements)
	})
}

func (h *ProfileHandler) ReplaceEducation(c echo.Context) error {
	var req educationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.ReplaceEducation(ctx, uid, req.Education)
	})
}

func (h *ProfileHandler) ReplaceWorkExperience(c echo.Context) error {
	var req workExperienceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, func(s *service.ProfileService, uid uint64) (model.User, error) {
		ctx, cancel := reqCtx(c)
		defer cancel()
		return s.ReplaceWorkExperience(ctx, uid, req.WorkExperience)
	})
}

func (h *ProfileHandler) respond(c echo.Context, update func(*service.ProfileService, uint64) (model.User, error)) error {
	uid, _ := middleware.UserID(c)
	u, err := update(h.Profiles, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "profile": u.Profile})
}
