package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
)

// BasicProfile is the scalar part of a profile.  Nil fields are left as they
// are.
type BasicProfile struct {
	Name     *string
	Bio      *string
	Location *string
	Website  *string
	Github   *string
	Linkedin *string
}

// ProfileService edits account and profile fields.  Every write goes through
// model.PrepareUserForSave so derived fields stay consistent.
type ProfileService struct {
	users UserStore
	now   func() time.Time
}

func NewProfileService(users UserStore) *ProfileService {
	return &ProfileService{users: users, now: time.Now}
}

func (s *ProfileService) Get(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateAccount changes name and/or email.  Empty arguments are ignored.
func (s *ProfileService) UpdateAccount(ctx context.Context, userID uint64, name, email string) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) {
		if name != "" {
			u.Name = name
		}
		if email != "" {
			u.Email = email
		}
	})
}

func (s *ProfileService) UpdateBasic(ctx context.Context, userID uint64, b BasicProfile) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) {
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&u.Name, b.Name)
		set(&u.Profile.Bio, b.Bio)
		set(&u.Profile.Location, b.Location)
		set(&u.Profile.Website, b.Website)
		set(&u.Profile.Github, b.Github)
		set(&u.Profile.Linkedin, b.Linkedin)
	})
}

func (s *ProfileService) ReplaceSkills(ctx context.Context, userID uint64, v []model.Skill) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) { u.Profile.Skills = v })
}

func (s *ProfileService) ReplaceProjects(ctx context.Context, userID uint64, v []model.Project) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) { u.Profile.Projects = v })
}

func (s *ProfileService) ReplaceAchievements(ctx context.Context, userID uint64, v []model.Achievement) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) { u.Profile.Achievements = v })
}

func (s *ProfileService) ReplaceEducation(ctx context.Context, userID uint64, v []model.Education) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) { u.Profile.Education = v })
}

func (s *ProfileService) ReplaceWorkExperience(ctx context.Context, userID uint64, v []model.WorkExperience) (model.User, error) {
	return s.update(ctx, userID, func(u *model.User) { u.Profile.WorkExperience = v })
}

func (s *ProfileService) update(ctx context.Context, userID uint64, mutate func(*model.User)) (model.User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	mutate(&u)
	u = model.PrepareUserForSave(u, s.now().UTC())
	if err := s.users.Save(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, ErrUserExists
		case errors.Is(err, repository.ErrNotFound):
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}
