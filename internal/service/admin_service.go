package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/repository"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

// AdminService manages the admin principal.  Admins are a separate account
// type; their tokens never authenticate user routes.
type AdminService struct {
	admins     AdminStore
	jwt        *utils.TokenService
	policy     utils.PasswordPolicy
	bcryptCost int
	log        zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAdminService(admins AdminStore, jwt *utils.TokenService, policy utils.PasswordPolicy, bcryptCost int, log zerolog.Logger) *AdminService {
	return &AdminService{
		admins:     admins,
		jwt:        jwt,
		policy:     policy,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "admin").Logger(),
	}
}

// Setup creates the first admin.  Once any admin exists it fails with
// ErrAdminExists; further admins are created with the admin CLI.  The
// emptiness check is repeated atomically by the store, so concurrent setups
// yield exactly one admin.
func (s *AdminService) Setup(ctx context.Context, email, password string) (model.Admin, error) {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return model.Admin{}, err
	}
	if n > 0 {
		return model.Admin{}, ErrAdminExists
	}
	hash, err := s.hash(password)
	if err != nil {
		return model.Admin{}, err
	}
	id, err := s.admins.CreateFirst(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.Admin{}, ErrAdminExists
		}
		return model.Admin{}, err
	}
	s.log.Info().Uint64("admin_id", id).Msg("first admin created")
	return s.admins.GetByID(ctx, id)
}

// Create adds an active admin regardless of how many exist.
func (s *AdminService) Create(ctx context.Context, email, password string) (model.Admin, error) {
	hash, err := s.hash(password)
	if err != nil {
		return model.Admin{}, err
	}
	id, err := s.admins.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.Admin{}, ErrAdminExists
		}
		return model.Admin{}, err
	}
	s.log.Info().Uint64("admin_id", id).Msg("admin created")
	return s.admins.GetByID(ctx, id)
}

// Login returns an admin token.  Unknown email, wrong password and a
// deactivated account all yield ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, email, password string) (utils.AccessToken, model.Admin, error) {
	a, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn a comparison so response time does not reveal the miss
			utils.VerifyPassword(s.fakeHash(), password)
			return utils.AccessToken{}, model.Admin{}, ErrInvalidCredentials
		}
		return utils.AccessToken{}, model.Admin{}, err
	}
	if !utils.VerifyPassword(a.PasswordHash, password) || !a.Active {
		return utils.AccessToken{}, model.Admin{}, ErrInvalidCredentials
	}
	tok, err := s.jwt.IssueAdminToken(a.ID)
	if err != nil {
		return utils.AccessToken{}, model.Admin{}, err
	}
	return tok, a, nil
}

// Get loads an admin by id.
func (s *AdminService) Get(ctx context.Context, id uint64) (model.Admin, error) {
	a, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Admin{}, ErrAdminNotFound
		}
		return model.Admin{}, err
	}
	return a, nil
}

// ResetPassword replaces an admin's password.
func (s *AdminService) ResetPassword(ctx context.Context, email, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.admins.SetPassword(ctx, email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	s.log.Info().Str("email", model.NormalizeEmail(email)).Msg("admin password reset")
	return nil
}

// SetActive enables or disables an admin.  A disabled admin's outstanding
// tokens stop working at the next request.
func (s *AdminService) SetActive(ctx context.Context, email string, active bool) error {
	if err := s.admins.SetActive(ctx, email, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	s.log.Info().Str("email", model.NormalizeEmail(email)).Bool("active", active).Msg("admin status changed")
	return nil
}

func (s *AdminService) hash(password string) (string, error) {
	if problems := s.policy.Check(password); len(problems) > 0 {
		return "", &WeakPasswordError{Problems: problems}
	}
	return utils.HashPassword(password, s.bcryptCost)
}

func (s *AdminService) fakeHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("not-a-real-password", s.bcryptCost)
	})
	return s.dummyHash
}
