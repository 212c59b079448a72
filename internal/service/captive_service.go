package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/filter"
	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/internal/repository"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type recordStore interface {
	ListByStatus(ctx context.Context, session *models.Session, status string) ([]models.Captive, error)
	ListByOwner(ctx context.Context, session *models.Session, ownerID int64) ([]models.Captive, error)
	GetByID(ctx context.Context, session *models.Session, id int64) (*models.Captive, error)
	Create(ctx context.Context, session *models.Session, form *dto.CaptiveForm) (*models.Captive, error)
	Update(ctx context.Context, session *models.Session, id int64, form *dto.CaptiveForm) (*models.Captive, error)
	Delete(ctx context.Context, session *models.Session, id int64) error
}

type workingSetReader interface {
	Fetch(ctx context.Context, searchID string) ([]models.Captive, bool, error)
}

type listCache interface {
	Get(ctx context.Context, key string) ([]models.Captive, error)
	Set(ctx context.Context, key string, captives []models.Captive) error
	Invalidate(ctx context.Context) error
}

// CaptiveService serves the record sections. Listings come from the
// upstream (through the list cache) and are narrowed by the local filter
// engine, except while a remote search is active, in which case the
// working set is served verbatim and local filtering is suppressed
// entirely.
type CaptiveService struct {
	store      recordStore
	workingSet workingSetReader
	cache      listCache
	logger     *zap.Logger
}

// NewCaptiveService constructs the captive service.
func NewCaptiveService(store recordStore, workingSet workingSetReader, cache listCache, logger *zap.Logger) *CaptiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptiveService{store: store, workingSet: workingSet, cache: cache, logger: logger}
}

// sectionQuery maps the section name from the URL onto the upstream
// status filter. "archive" is a pipe-joined alias, never a stored status.
func sectionQuery(section string) (string, error) {
	switch section {
	case "", "all":
		return "", nil
	case "archive":
		return models.ArchiveStatusQuery, nil
	default:
		status, err := models.ParseStatus(section)
		if err != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "unknown section "+section)
		}
		return string(status), nil
	}
}

// List returns the records for one section. While the caller has an
// active remote search, its working set is returned as-is and both the
// name query and the filter criteria are ignored.
func (s *CaptiveService) List(ctx context.Context, session *models.Session, q dto.ListQuery) (*dto.ListResponse, error) {
	if session != nil && session.SearchID != "" {
		captives, active, err := s.workingSet.Fetch(ctx, session.SearchID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load search results")
		}
		if active {
			return &dto.ListResponse{Captives: captives, RemoteActive: true}, nil
		}
	}

	captives, err := s.fetchSection(ctx, session, q)
	if err != nil {
		return nil, err
	}
	filtered := filter.Apply(captives, q.Criteria, q.Query)
	return &dto.ListResponse{Captives: filtered, RemoteActive: false}, nil
}

func (s *CaptiveService) fetchSection(ctx context.Context, session *models.Session, q dto.ListQuery) ([]models.Captive, error) {
	if q.OwnerID != 0 {
		return s.fetchCached(ctx, repository.ListKey("", q.OwnerID), func() ([]models.Captive, error) {
			return s.store.ListByOwner(ctx, session, q.OwnerID)
		})
	}
	status, err := sectionQuery(q.Status)
	if err != nil {
		return nil, err
	}
	return s.fetchCached(ctx, repository.ListKey(status, 0), func() ([]models.Captive, error) {
		return s.store.ListByStatus(ctx, session, status)
	})
}

// fetchCached serves from the list cache when possible. Cache failures
// are logged and bypassed; the upstream stays the source of truth.
func (s *CaptiveService) fetchCached(ctx context.Context, key string, fetch func() ([]models.Captive, error)) ([]models.Captive, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("list cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	captives, err := fetch()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, captives); err != nil {
			s.logger.Warn("list cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return captives, nil
}

// Get returns one record.
func (s *CaptiveService) Get(ctx context.Context, session *models.Session, id int64) (*models.Captive, error) {
	return s.store.GetByID(ctx, session, id)
}

// Create validates the form fully before touching the network, submits
// it, and returns the created record with the section path the caller
// should land on.
func (s *CaptiveService) Create(ctx context.Context, session *models.Session, form *dto.CaptiveForm) (*dto.MutationResponse, error) {
	if !session.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	if err := dto.Validate(form); err != nil {
		return nil, err
	}
	if form.Appearance == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "appearance description is required")
	}
	if form.Status == "" {
		form.Status = string(models.StatusSearching)
	}

	captive, err := s.store.Create(ctx, session, form)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &dto.MutationResponse{
		Captive:  captive,
		Redirect: captive.Status.SectionPath(),
	}, nil
}

// Update applies a partial update to an owned record. Ownership is
// checked against the current record before the mutation is dispatched;
// a non-owner gets Forbidden without any write reaching the upstream.
// The redirect points at the record inside whatever section its new
// status puts it in.
func (s *CaptiveService) Update(ctx context.Context, session *models.Session, id int64, form *dto.CaptiveForm) (*dto.MutationResponse, error) {
	if !session.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	if err := dto.Validate(form); err != nil {
		return nil, err
	}

	current, err := s.store.GetByID(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !current.OwnedBy(session.Account) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the record owner can modify it")
	}

	captive, err := s.store.Update(ctx, session, id, form)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &dto.MutationResponse{
		Captive:  captive,
		Redirect: fmt.Sprintf("%s/%d", captive.Status.SectionPath(), captive.ID),
	}, nil
}

// Delete removes an owned record and redirects to the section list the
// record used to live in.
func (s *CaptiveService) Delete(ctx context.Context, session *models.Session, id int64) (*dto.MutationResponse, error) {
	if !session.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	current, err := s.store.GetByID(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !current.OwnedBy(session.Account) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the record owner can delete it")
	}

	if err := s.store.Delete(ctx, session, id); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &dto.MutationResponse{Redirect: current.Status.SectionPath()}, nil
}

// invalidate drops every cached listing. A mutation can move a record
// between sections, so per-key invalidation would miss entries.
func (s *CaptiveService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("list cache invalidation failed", zap.Error(err))
	}
}
