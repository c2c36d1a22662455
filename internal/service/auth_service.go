package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/opportunity-hub/internal/model"
	"github.com/iliyamo/opportunity-hub/internal/queue"
	"github.com/iliyamo/opportunity-hub/internal/repository"
	"github.com/iliyamo/opportunity-hub/internal/revocation"
	"github.com/iliyamo/opportunity-hub/internal/utils"
)

// AuthOptions tune the credential lifecycle.
type AuthOptions struct {
	BcryptCost    int
	Policy        utils.PasswordPolicy
	RotateRefresh bool
}

// Session is what a successful register, login or refresh hands back.
// RefreshToken is empty on a refresh that did not rotate.
type Session struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	User         model.User
}

// AuthService owns registration, login, refresh and logout.
type AuthService struct {
	users   UserStore
	tokens  TokenStore
	jwt     *utils.TokenService
	revoked revocation.Registry
	events  EventPublisher
	log     zerolog.Logger
	opts    AuthOptions
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserStore, tokens TokenStore, jwt *utils.TokenService, revoked revocation.Registry,
	events EventPublisher, log zerolog.Logger, opts AuthOptions) *AuthService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		jwt:     jwt,
		revoked: revoked,
		events:  events,
		log:     log.With().Str("component", "auth").Logger(),
		opts:    opts,
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates an account and opens a first session for it.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (Session, error) {
	if problems := s.opts.Policy.Check(password); len(problems) > 0 {
		return Session{}, &WeakPasswordError{Problems: problems}
	}
	switch _, err := s.users.GetByEmail(ctx, email); {
	case err == nil:
		return Session{}, ErrUserExists
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, err
	}

	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return Session{}, err
	}
	u := model.PrepareUserForSave(model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Progress:     model.NewProgress(),
	}, s.now().UTC())

	id, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}
	u.ID = id

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	s.log.Info().Uint64("user_id", id).Msg("user registered")
	publish(ctx, s.events, s.log, queue.ActivityEvent{
		Type: queue.EventRegistered, UserID: id, Email: u.Email, OccurredAt: s.now().UTC(),
	})
	return sess, nil
}

// Login verifies credentials.  Unknown email and wrong password are
// indistinguishable to the caller.  Earlier refresh tokens stay valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// burn a comparison so response time does not reveal the miss
			utils.VerifyPassword(s.fakeHash(), password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, u)
	if err != nil {
		return Session{}, err
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{
		Type: queue.EventLoggedIn, UserID: u.ID, OccurredAt: s.now().UTC(),
	})
	return sess, nil
}

// Refresh exchanges a refresh token for a new access token.  With rotation
// enabled the presented token is revoked and a replacement is returned.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrInvalidRefreshToken
	}
	hash := utils.HashRefreshRaw(raw)
	tok, err := s.tokens.FindActiveByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, err
	}
	if !s.now().Before(tok.ExpiresAt) {
		return Session{}, ErrRefreshTokenExpired
	}
	u, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, ErrUserNotFound
		}
		return Session{}, err
	}

	if s.opts.RotateRefresh {
		changed, err := s.tokens.RevokeByHash(ctx, u.ID, hash)
		if err != nil {
			return Session{}, err
		}
		if !changed {
			// a concurrent refresh already consumed it
			return Session{}, ErrInvalidRefreshToken
		}
		return s.openSession(ctx, u)
	}

	access, err := s.jwt.IssueAccessToken(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access.Token, AccessExp: access.Exp, User: u}, nil
}

// Logout blacklists the access token until it would have expired and
// revokes refreshRaw when it belongs to the caller.
func (s *AuthService) Logout(ctx context.Context, userID uint64, accessToken, refreshRaw string) error {
	exp, ok := utils.DecodeExpiry(accessToken)
	if !ok {
		exp = s.now().Add(s.jwt.AccessTTL())
	}
	if err := s.revoked.Blacklist(ctx, accessToken, exp); err != nil {
		return err
	}
	s.log.Info().Uint64("user_id", userID).Str("token", tokenPrefix(accessToken)).Msg("access token blacklisted")

	if refreshRaw != "" {
		if err := s.RevokeRefresh(ctx, userID, refreshRaw); err != nil {
			return err
		}
	}
	publish(ctx, s.events, s.log, queue.ActivityEvent{
		Type: queue.EventLoggedOut, UserID: userID, OccurredAt: s.now().UTC(),
	})
	return nil
}

// RevokeRefresh revokes raw if it belongs to userID.  Unknown or foreign
// tokens are silently ignored.
func (s *AuthService) RevokeRefresh(ctx context.Context, userID uint64, raw string) error {
	changed, err := s.tokens.RevokeByHash(ctx, userID, utils.HashRefreshRaw(raw))
	if err != nil {
		return err
	}
	s.log.Debug().Uint64("user_id", userID).Bool("revoked", changed).Msg("refresh token revoke")
	return nil
}

// RevokeAllSessions revokes every refresh token the user holds.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.Info().Uint64("user_id", userID).Int64("revoked", n).Msg("all refresh tokens revoked")
	return n, nil
}

// Validate returns the caller's account.
func (s *AuthService) Validate(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// openSession issues an access/refresh pair and persists the refresh hash.
func (s *AuthService) openSession(ctx context.Context, u model.User) (Session, error) {
	access, err := s.jwt.IssueAccessToken(u.ID)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.jwt.IssueRefreshToken()
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Raw,
		RefreshExp:   refresh.Exp,
		User:         u,
	}, nil
}

func (s *AuthService) fakeHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("not-a-real-password", s.opts.BcryptCost)
	})
	return s.dummyHash
}

func tokenPrefix(tok string) string {
	if len(tok) > 10 {
		return tok[:10] + "..."
	}
	return tok
}
