package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type searchDelegate interface {
	SearchByAppearance(ctx context.Context, session *models.Session, appearance, status string) ([]models.Captive, error)
	SearchByPhoto(ctx context.Context, session *models.Session, photo *dto.FileUpload, status string) ([]models.Captive, error)
}

type workingSetStore interface {
	Replace(ctx context.Context, searchID string, captives []models.Captive) error
	Fetch(ctx context.Context, searchID string) ([]models.Captive, bool, error)
	Clear(ctx context.Context, searchID string) error
}

// SearchService delegates relevance searches to the upstream and keeps
// the resulting working set per search session. Each new search replaces
// the working set wholesale; a reset discards it and the regular listing
// reappears unchanged.
type SearchService struct {
	delegate searchDelegate
	sets     workingSetStore
	logger   *zap.Logger
}

// NewSearchService constructs the search service.
func NewSearchService(delegate searchDelegate, sets workingSetStore, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{delegate: delegate, sets: sets, logger: logger}
}

// SearchByAppearance runs a description search and installs the result
// as the caller's working set. An empty result list is installed too;
// "nothing matched" is a search outcome, not an absence of search.
func (s *SearchService) SearchByAppearance(ctx context.Context, session *models.Session, req *dto.AppearanceSearchRequest) ([]models.Captive, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	captives, err := s.delegate.SearchByAppearance(ctx, session, req.Appearance, req.Status)
	if err != nil {
		return nil, err
	}
	if err := s.install(ctx, session, captives); err != nil {
		return nil, err
	}
	return captives, nil
}

// SearchByPhoto runs a photo similarity search and installs the result.
func (s *SearchService) SearchByPhoto(ctx context.Context, session *models.Session, photo *dto.FileUpload, status string) ([]models.Captive, error) {
	if photo == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo file is required")
	}
	if status != "" {
		if _, err := models.ParseStatus(status); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+status)
		}
	}
	captives, err := s.delegate.SearchByPhoto(ctx, session, photo, status)
	if err != nil {
		return nil, err
	}
	if err := s.install(ctx, session, captives); err != nil {
		return nil, err
	}
	return captives, nil
}

func (s *SearchService) install(ctx context.Context, session *models.Session, captives []models.Captive) error {
	if session == nil || session.SearchID == "" {
		return appErrors.Wrap(nil, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "missing search session")
	}
	if err := s.sets.Replace(ctx, session.SearchID, captives); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store search results")
	}
	s.logger.Debug("working set replaced",
		zap.String("search_id", session.SearchID),
		zap.Int("count", len(captives)))
	return nil
}

// Reset discards the working set. Resetting when no search is active is
// a no-op, not an error.
func (s *SearchService) Reset(ctx context.Context, session *models.Session) error {
	if session == nil || session.SearchID == "" {
		return nil
	}
	if err := s.sets.Clear(ctx, session.SearchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "clear search results")
	}
	return nil
}

// State reports whether a remote search is in effect and how many
// records its working set holds.
func (s *SearchService) State(ctx context.Context, session *models.Session) (*dto.SearchStateResponse, error) {
	if session == nil || session.SearchID == "" {
		return &dto.SearchStateResponse{}, nil
	}
	captives, active, err := s.sets.Fetch(ctx, session.SearchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load search results")
	}
	return &dto.SearchStateResponse{Active: active, Count: len(captives)}, nil
}
