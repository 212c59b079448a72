package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type accountStore interface {
	Me(ctx context.Context, session *models.Session) (*models.Account, error)
	Login(ctx context.Context, session *models.Session, creds *dto.LoginRequest) (*models.Account, []*http.Cookie, error)
	Logout(ctx context.Context, session *models.Session) ([]*http.Cookie, error)
	Register(ctx context.Context, session *models.Session, req *dto.RegisterRequest) (*models.Account, []*http.Cookie, error)
	UpdateProfile(ctx context.Context, session *models.Session, id int64, req *dto.UpdateProfileRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, session *models.Session, id int64) error
}

type workingSetCleaner interface {
	Clear(ctx context.Context, searchID string) error
}

// SessionService fronts the upstream's cookie-based authentication. The
// gateway never mints credentials of its own; it relays the upstream's
// Set-Cookie headers to the caller and resolves the account behind the
// forwarded cookies on demand.
type SessionService struct {
	store  accountStore
	sets   workingSetCleaner
	logger *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(store accountStore, sets workingSetCleaner, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{store: store, sets: sets, logger: logger}
}

// Me resolves the caller's account.
func (s *SessionService) Me(ctx context.Context, session *models.Session) (*models.Account, error) {
	return s.store.Me(ctx, session)
}

// Login opens an upstream session and hands back the cookies to relay.
func (s *SessionService) Login(ctx context.Context, session *models.Session, req *dto.LoginRequest) (*models.Account, []*http.Cookie, error) {
	if err := dto.Validate(req); err != nil {
		return nil, nil, err
	}
	account, cookies, err := s.store.Login(ctx, session, req)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("login", zap.String("username", account.Username))
	return account, cookies, nil
}

// Logout closes the upstream session and drops any active search working
// set, so the next session starts from the plain listing.
func (s *SessionService) Logout(ctx context.Context, session *models.Session) ([]*http.Cookie, error) {
	cookies, err := s.store.Logout(ctx, session)
	if err != nil {
		return nil, err
	}
	if s.sets != nil && session != nil && session.SearchID != "" {
		if err := s.sets.Clear(ctx, session.SearchID); err != nil {
			s.logger.Warn("clearing working set on logout failed", zap.Error(err))
		}
	}
	return cookies, nil
}

// Register creates an account upstream. The upstream logs the new
// account in, so the returned cookies are a live session.
func (s *SessionService) Register(ctx context.Context, session *models.Session, req *dto.RegisterRequest) (*models.Account, []*http.Cookie, error) {
	if err := dto.Validate(req); err != nil {
		return nil, nil, err
	}
	return s.store.Register(ctx, session, req)
}

// UpdateProfile patches the caller's own account. Editing anyone else is
// refused here without an upstream call.
func (s *SessionService) UpdateProfile(ctx context.Context, session *models.Session, id int64, req *dto.UpdateProfileRequest) (*models.Account, error) {
	if !session.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	if session.Account.ID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "profiles can only be edited by their owner")
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	return s.store.UpdateProfile(ctx, session, id, req)
}

// DeleteAccount removes the caller's own account.
func (s *SessionService) DeleteAccount(ctx context.Context, session *models.Session, id int64) error {
	if !session.Authenticated() {
		return appErrors.ErrUnauthorized
	}
	if session.Account.ID != id {
		return appErrors.Clone(appErrors.ErrForbidden, "accounts can only be deleted by their owner")
	}
	return s.store.DeleteAccount(ctx, session, id)
}
