package handler

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/internal/service"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type flyerServiceMock struct {
	job      *dto.FlyerJobResponse
	status   *dto.FlyerStatusResponse
	download *service.FlyerDownload
	err      error
}

func (m *flyerServiceMock) CreateJob(ctx context.Context, session *models.Session, captiveID int64) (*dto.FlyerJobResponse, error) {
	return m.job, m.err
}

func (m *flyerServiceMock) GetStatus(ctx context.Context, id string) (*dto.FlyerStatusResponse, error) {
	return m.status, m.err
}

func (m *flyerServiceMock) ResolveDownload(ctx context.Context, token string) (*service.FlyerDownload, error) {
	return m.download, m.err
}

func TestFlyerHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &flyerServiceMock{job: &dto.FlyerJobResponse{ID: "job-1", Status: models.FlyerStatusQueued}}
	handler := NewFlyerHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/captives/1/flyer", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	withSession(c)

	handler.Create(c)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestFlyerHandlerCreateUnknownRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &flyerServiceMock{err: appErrors.ErrNotFound}
	handler := NewFlyerHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/captives/42/flyer", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	withSession(c)

	handler.Create(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlyerHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	url := "/flyers/download/token"
	mockSvc := &flyerServiceMock{status: &dto.FlyerStatusResponse{ID: "job-1", Status: models.FlyerStatusDone, ResultURL: &url}}
	handler := NewFlyerHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/flyers/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestFlyerHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "flyer*.pdf")
	require.NoError(t, err)
	_, _ = file.WriteString("%PDF-1.4 test")
	_, _ = file.Seek(0, 0)

	mockSvc := &flyerServiceMock{download: &service.FlyerDownload{File: file, Filename: "flyer_job-1.pdf"}}
	handler := NewFlyerHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/flyers/download/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "flyer_job-1.pdf")
}

func TestFlyerHandlerDownloadExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &flyerServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")}
	handler := NewFlyerHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/flyers/download/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.Download(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
