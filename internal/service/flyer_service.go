package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
	"github.com/poshuk/captives-gateway/pkg/export"
	"github.com/poshuk/captives-gateway/pkg/jobs"
	"github.com/poshuk/captives-gateway/pkg/storage"
)

// FlyerJobType names the queue job type for flyer rendering.
const FlyerJobType = "flyer"

type flyerJobStore interface {
	Save(ctx context.Context, job *models.FlyerJob) error
	Get(ctx context.Context, id string) (*models.FlyerJob, error)
}

type flyerDispatcher interface {
	Enqueue(job jobs.Job) error
}

type recordGetter interface {
	GetByID(ctx context.Context, session *models.Session, id int64) (*models.Captive, error)
}

// FlyerServiceConfig governs result retention.
type FlyerServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// FlyerService turns registry records into printable search flyers. Jobs
// are rendered asynchronously; the record is snapshotted into the job at
// enqueue time with the caller's session, and results are fetched through
// short-lived signed download tokens.
type FlyerService struct {
	repo    flyerJobStore
	queue   flyerDispatcher
	records recordGetter
	signer  *storage.SignedURLSigner
	files   *storage.LocalStorage
	logger  *zap.Logger
	cfg     FlyerServiceConfig
}

// FlyerDownload aggregates resolved download data.
type FlyerDownload struct {
	File     *os.File
	Filename string
}

// NewFlyerService constructs the flyer service.
func NewFlyerService(repo flyerJobStore, queue flyerDispatcher, records recordGetter, signer *storage.SignedURLSigner, files *storage.LocalStorage, logger *zap.Logger, cfg FlyerServiceConfig) *FlyerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &FlyerService{
		repo:    repo,
		queue:   queue,
		records: records,
		signer:  signer,
		files:   files,
		logger:  logger,
		cfg:     cfg,
	}
}

// CreateJob snapshots the record and enqueues rendering. An unknown
// record surfaces as NotFound before anything is queued.
func (s *FlyerService) CreateJob(ctx context.Context, session *models.Session, captiveID int64) (*dto.FlyerJobResponse, error) {
	captive, err := s.records.GetByID(ctx, session, captiveID)
	if err != nil {
		return nil, err
	}

	job := &models.FlyerJob{
		ID:        uuid.NewString(),
		CaptiveID: captiveID,
		Captive:   captive,
		Status:    models.FlyerStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create flyer job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: FlyerJobType}); err != nil {
		job.Status = models.FlyerStatusFailed
		job.Error = "enqueue failed"
		now := time.Now().UTC()
		job.FinishedAt = &now
		_ = s.repo.Save(ctx, job)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue flyer job")
	}
	return &dto.FlyerJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus exposes job progress. Finished jobs get a fresh signed
// download URL on every poll.
func (s *FlyerService) GetStatus(ctx context.Context, id string) (*dto.FlyerStatusResponse, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.FlyerStatusResponse{ID: job.ID, Status: job.Status}
	if job.Status == models.FlyerStatusDone && job.FilePath != "" {
		token, _, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign download url")
		}
		url := "/flyers/download/" + token
		resp.ResultURL = &url
	}
	if job.Error != "" {
		resp.Error = &job.Error
	}
	return resp, nil
}

// ResolveDownload validates a signed token and opens the rendered PDF.
func (s *FlyerService) ResolveDownload(ctx context.Context, token string) (*FlyerDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.FlyerStatusDone || job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "flyer not ready")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open flyer file")
	}
	return &FlyerDownload{File: file, Filename: filepath.Base(relPath)}, nil
}

// StartCleanup boots a goroutine that purges expired flyers periodically.
func (s *FlyerService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.files.CleanupOlderThan(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Warn("flyer cleanup failed", zap.Error(err))
					continue
				}
				if len(deleted) > 0 {
					s.logger.Info("expired flyers removed", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

// FlyerWorker bridges queue jobs to the PDF renderer.
type FlyerWorker struct {
	repo       flyerJobStore
	renderer   *export.FlyerRenderer
	files      *storage.LocalStorage
	logger     *zap.Logger
	maxRetries int
}

// NewFlyerWorker constructs a worker.
func NewFlyerWorker(repo flyerJobStore, renderer *export.FlyerRenderer, files *storage.LocalStorage, maxRetries int, logger *zap.Logger) *FlyerWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &FlyerWorker{
		repo:       repo,
		renderer:   renderer,
		files:      files,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle renders one flyer job. Returning an error lets the queue retry;
// the final attempt marks the job failed instead.
func (w *FlyerWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	record.Status = models.FlyerStatusProcessing
	if err := w.repo.Save(ctx, record); err != nil {
		return err
	}

	relPath, err := w.render(record)
	if err != nil {
		record.Error = err.Error()
		if job.Attempt >= w.maxRetries {
			record.Status = models.FlyerStatusFailed
			now := time.Now().UTC()
			record.FinishedAt = &now
		} else {
			record.Status = models.FlyerStatusQueued
		}
		if saveErr := w.repo.Save(ctx, record); saveErr != nil {
			w.logger.Warn("saving failed flyer job", zap.String("job_id", job.ID), zap.Error(saveErr))
		}
		return err
	}

	record.Status = models.FlyerStatusDone
	record.FilePath = relPath
	record.Error = ""
	now := time.Now().UTC()
	record.FinishedAt = &now
	return w.repo.Save(ctx, record)
}

func (w *FlyerWorker) render(record *models.FlyerJob) (string, error) {
	if record.Captive == nil {
		return "", fmt.Errorf("flyer job %s has no record snapshot", record.ID)
	}
	data, err := w.renderer.Render(flyerData(record.Captive))
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("flyer_%s.pdf", record.ID)
	return w.files.Save(filename, data)
}

// statusLabels maps record statuses onto the flyer wording.
var statusLabels = map[models.Status]string{
	models.StatusSearching: "Розшукується",
	models.StatusInformed:  "Є інформація",
	models.StatusDeceased:  "Загинув(ла)",
	models.StatusReunited:  "Повернувся(лась)",
}

var personTypeLabels = map[models.PersonType]string{
	models.PersonTypeMilitary: "Військовий",
	models.PersonTypeCivilian: "Цивільний",
}

func flyerData(captive *models.Captive) export.FlyerData {
	data := export.FlyerData{
		Title:         "Розшук",
		Name:          captive.Name,
		StatusLabel:   statusLabels[captive.Status],
		PersonType:    personTypeLabels[captive.PersonType],
		Brigade:       captive.Brigade,
		Region:        captive.Region,
		Settlement:    captive.Settlement,
		Circumstances: captive.Circumstances,
		Appearance:    captive.Appearance,
		ContactName:   captive.Owner.Username,
		ContactEmail:  captive.Owner.Email,
	}
	if captive.DateOfBirth != nil {
		data.DateOfBirth = captive.DateOfBirth.String()
	}
	if captive.LastUpdate != nil {
		data.LastUpdate = captive.LastUpdate.Format("2006-01-02 15:04")
	}
	return data
}
