package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type recordStoreStub struct {
	captives map[int64]*models.Captive
	listed   []string

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
}

func newRecordStoreStub(captives ...models.Captive) *recordStoreStub {
	stub := &recordStoreStub{captives: map[int64]*models.Captive{}}
	for i := range captives {
		c := captives[i]
		stub.captives[c.ID] = &c
	}
	return stub
}

func (s *recordStoreStub) ListByStatus(ctx context.Context, session *models.Session, status string) ([]models.Captive, error) {
	s.listCalls++
	s.listed = append(s.listed, status)
	var out []models.Captive
	for _, c := range s.captives {
		out = append(out, *c)
	}
	return out, nil
}

func (s *recordStoreStub) ListByOwner(ctx context.Context, session *models.Session, ownerID int64) ([]models.Captive, error) {
	s.listCalls++
	var out []models.Captive
	for _, c := range s.captives {
		if c.Owner.ID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *recordStoreStub) GetByID(ctx context.Context, session *models.Session, id int64) (*models.Captive, error) {
	c, ok := s.captives[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *recordStoreStub) Create(ctx context.Context, session *models.Session, form *dto.CaptiveForm) (*models.Captive, error) {
	s.createCalls++
	status, _ := models.ParseStatus(form.Status)
	captive := &models.Captive{
		ID:         int64(len(s.captives) + 100),
		Name:       form.Name,
		Status:     status,
		Appearance: form.Appearance,
		Owner:      *session.Account,
	}
	s.captives[captive.ID] = captive
	clone := *captive
	return &clone, nil
}

func (s *recordStoreStub) Update(ctx context.Context, session *models.Session, id int64, form *dto.CaptiveForm) (*models.Captive, error) {
	s.updateCalls++
	c, ok := s.captives[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	if form.Status != "" {
		status, _ := models.ParseStatus(form.Status)
		c.Status = status
	}
	if form.Name != "" {
		c.Name = form.Name
	}
	clone := *c
	return &clone, nil
}

func (s *recordStoreStub) Delete(ctx context.Context, session *models.Session, id int64) error {
	s.deleteCalls++
	if _, ok := s.captives[id]; !ok {
		return appErrors.ErrNotFound
	}
	delete(s.captives, id)
	return nil
}

type workingSetStub struct {
	sets map[string][]models.Captive
}

func newWorkingSetStub() *workingSetStub {
	return &workingSetStub{sets: map[string][]models.Captive{}}
}

func (s *workingSetStub) Replace(ctx context.Context, searchID string, captives []models.Captive) error {
	s.sets[searchID] = captives
	return nil
}

func (s *workingSetStub) Fetch(ctx context.Context, searchID string) ([]models.Captive, bool, error) {
	captives, ok := s.sets[searchID]
	return captives, ok, nil
}

func (s *workingSetStub) Clear(ctx context.Context, searchID string) error {
	delete(s.sets, searchID)
	return nil
}

type listCacheStub struct {
	entries     map[string][]models.Captive
	invalidated int
}

func newListCacheStub() *listCacheStub {
	return &listCacheStub{entries: map[string][]models.Captive{}}
}

func (s *listCacheStub) Get(ctx context.Context, key string) ([]models.Captive, error) {
	captives, ok := s.entries[key]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	return captives, nil
}

func (s *listCacheStub) Set(ctx context.Context, key string, captives []models.Captive) error {
	s.entries[key] = captives
	return nil
}

func (s *listCacheStub) Invalidate(ctx context.Context) error {
	s.invalidated++
	s.entries = map[string][]models.Captive{}
	return nil
}

func ownerSession(id int64) *models.Session {
	return &models.Session{
		Account:   &models.Account{ID: id, Username: "olena", Email: "olena@example.com"},
		CSRFToken: "tok",
		SearchID:  "search-1",
	}
}

func sampleCaptives() []models.Captive {
	return []models.Captive{
		{ID: 1, Name: "Петро Шевченко", Status: models.StatusSearching, Region: "Харківська", Owner: models.Account{ID: 4}},
		{ID: 2, Name: "Іван Коваль", Status: models.StatusSearching, Region: "Львівська", Owner: models.Account{ID: 7}},
	}
}

func newCaptiveServiceForTest(captives ...models.Captive) (*CaptiveService, *recordStoreStub, *workingSetStub, *listCacheStub) {
	store := newRecordStoreStub(captives...)
	sets := newWorkingSetStub()
	cache := newListCacheStub()
	svc := NewCaptiveService(store, sets, cache, zap.NewNop())
	return svc, store, sets, cache
}

func TestCaptiveServiceListAppliesLocalFilter(t *testing.T) {
	svc, _, _, _ := newCaptiveServiceForTest(sampleCaptives()...)

	resp, err := svc.List(context.Background(), ownerSession(4), dto.ListQuery{
		Status:   "searching",
		Criteria: models.FilterCriteria{Region: "харків"},
	})
	require.NoError(t, err)

	assert.False(t, resp.RemoteActive)
	require.Len(t, resp.Captives, 1)
	assert.Equal(t, int64(1), resp.Captives[0].ID)
}

func TestCaptiveServiceListServesWorkingSetVerbatim(t *testing.T) {
	svc, store, sets, _ := newCaptiveServiceForTest(sampleCaptives()...)
	session := ownerSession(4)

	remote := []models.Captive{{ID: 9, Name: "Андрій", Status: models.StatusInformed, Region: "Одеська"}}
	require.NoError(t, sets.Replace(context.Background(), session.SearchID, remote))

	// Criteria that would exclude the remote result must be ignored.
	resp, err := svc.List(context.Background(), session, dto.ListQuery{
		Status:   "searching",
		Criteria: models.FilterCriteria{Region: "харків"},
	})
	require.NoError(t, err)

	assert.True(t, resp.RemoteActive)
	assert.Equal(t, remote, resp.Captives)
	assert.Zero(t, store.listCalls, "upstream must not be queried while a working set is active")
}

func TestCaptiveServiceListAfterResetRestoresSection(t *testing.T) {
	svc, _, sets, _ := newCaptiveServiceForTest(sampleCaptives()...)
	session := ownerSession(4)

	require.NoError(t, sets.Replace(context.Background(), session.SearchID, []models.Captive{{ID: 9}}))
	require.NoError(t, sets.Clear(context.Background(), session.SearchID))

	resp, err := svc.List(context.Background(), session, dto.ListQuery{Status: "searching"})
	require.NoError(t, err)
	assert.False(t, resp.RemoteActive)
	assert.Len(t, resp.Captives, 2)
}

func TestCaptiveServiceListArchiveUsesPipeJoinedStatuses(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest()

	_, err := svc.List(context.Background(), nil, dto.ListQuery{Status: "archive"})
	require.NoError(t, err)
	require.Len(t, store.listed, 1)
	assert.Equal(t, "deceased|reunited", store.listed[0])
}

func TestCaptiveServiceListUnknownSection(t *testing.T) {
	svc, _, _, _ := newCaptiveServiceForTest()

	_, err := svc.List(context.Background(), nil, dto.ListQuery{Status: "vanished"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
}

func TestCaptiveServiceListUsesCache(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest(sampleCaptives()...)

	_, err := svc.List(context.Background(), nil, dto.ListQuery{Status: "searching"})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), nil, dto.ListQuery{Status: "searching"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls, "second listing must come from the cache")
}

func TestCaptiveServiceCreateRequiresAppearanceBeforeNetwork(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest()

	_, err := svc.Create(context.Background(), ownerSession(4), &dto.CaptiveForm{Name: "Іван"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
	assert.Zero(t, store.createCalls, "no upstream call may happen for an invalid form")
}

func TestCaptiveServiceCreateRedirectsToSection(t *testing.T) {
	svc, _, _, cache := newCaptiveServiceForTest()

	resp, err := svc.Create(context.Background(), ownerSession(4), &dto.CaptiveForm{
		Name:       "Іван",
		Appearance: "високий, шрам на щоці",
		Status:     "deceased",
	})
	require.NoError(t, err)

	assert.Equal(t, "/archive", resp.Redirect)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCaptiveServiceCreateDefaultsToSearching(t *testing.T) {
	svc, _, _, _ := newCaptiveServiceForTest()

	resp, err := svc.Create(context.Background(), ownerSession(4), &dto.CaptiveForm{
		Name:       "Іван",
		Appearance: "темне волосся",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSearching, resp.Captive.Status)
	assert.Equal(t, "/searching", resp.Redirect)
}

func TestCaptiveServiceUpdateForbiddenForNonOwner(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest(sampleCaptives()...)

	// Record 2 belongs to account 7.
	_, err := svc.Update(context.Background(), ownerSession(4), 2, &dto.CaptiveForm{Name: "Інше"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrors.FromError(err).Code)
	assert.Zero(t, store.updateCalls, "the mutation must never be dispatched")
}

func TestCaptiveServiceUpdateStatusMovesRedirectToArchive(t *testing.T) {
	svc, _, _, _ := newCaptiveServiceForTest(sampleCaptives()...)

	resp, err := svc.Update(context.Background(), ownerSession(4), 1, &dto.CaptiveForm{Status: "deceased"})
	require.NoError(t, err)
	assert.Equal(t, "/archive/1", resp.Redirect)
}

func TestCaptiveServiceDeleteForbiddenForNonOwner(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest(sampleCaptives()...)

	_, err := svc.Delete(context.Background(), ownerSession(4), 2)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrors.FromError(err).Code)
	assert.Zero(t, store.deleteCalls)
}

func TestCaptiveServiceDeleteRedirectsToOldSection(t *testing.T) {
	svc, store, _, cache := newCaptiveServiceForTest(sampleCaptives()...)

	resp, err := svc.Delete(context.Background(), ownerSession(4), 1)
	require.NoError(t, err)
	assert.Equal(t, "/searching", resp.Redirect)
	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCaptiveServiceMutationsRequireAccount(t *testing.T) {
	svc, store, _, _ := newCaptiveServiceForTest(sampleCaptives()...)
	anonymous := &models.Session{SearchID: "search-1"}

	_, err := svc.Create(context.Background(), anonymous, &dto.CaptiveForm{Appearance: "x"})
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)

	_, err = svc.Update(context.Background(), anonymous, 1, &dto.CaptiveForm{})
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)

	_, err = svc.Delete(context.Background(), anonymous, 1)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)

	assert.Zero(t, store.createCalls+store.updateCalls+store.deleteCalls)
}
