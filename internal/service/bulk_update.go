package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/image-captioner/captioner/internal/observability/metrics"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

const defaultBulkPageSize = 25

var (
	// ErrBulkUpdateClosed stops a sweep whose job was closed underneath it,
	// normally by the reaper.
	ErrBulkUpdateClosed = errors.New("bulk update request was closed while running")
	// ErrShopLockLost stops a sweep whose shop lock expired or was taken over.
	ErrShopLockLost = errors.New("shop lock lost while running")
)

// BulkUpdateRepos groups the repositories BulkUpdateService reads and writes.
type BulkUpdateRepos struct {
	Jobs     core.BulkUpdateRepository  // Required
	Sessions core.ShopSessionRepository // Required
}

// BulkUpdatePipeline groups the collaborators that perform a sweep.
type BulkUpdatePipeline struct {
	Catalogs  core.CatalogClientFactory // Required
	WriteBack *WriteBackService         // Required
	Locker    core.ShopLocker           // Optional; defaults to an in-process lock
	// Credentials is checked before captioning kinds take the lock. Optional.
	Credentials core.CaptionCredentials
}

// BulkUpdateConfig holds sweep settings.
type BulkUpdateConfig struct {
	PageSize     int
	TimeProvider data.TimeProvider
}

// BulkUpdateServiceOptions groups dependencies for BulkUpdateService.
type BulkUpdateServiceOptions struct {
	Repos    BulkUpdateRepos
	Pipeline BulkUpdatePipeline
	Config   BulkUpdateConfig
	Logger   *slog.Logger // Optional
	Metrics  statsd.Sink  // Optional
}

// BulkUpdateService starts catalog sweeps in the background and reports
// their progress.
type BulkUpdateService struct {
	jobs      core.BulkUpdateRepository
	sessions  core.ShopSessionRepository
	catalogs  core.CatalogClientFactory
	writeBack *WriteBackService
	locker    core.ShopLocker
	creds     core.CaptionCredentials
	pageSize  int
	clock     data.TimeProvider
	logger    *slog.Logger
	metrics   statsd.Sink

	wg sync.WaitGroup
}

// NewBulkUpdateService constructs a BulkUpdateService.
func NewBulkUpdateService(opts BulkUpdateServiceOptions) (*BulkUpdateService, error) {
	switch {
	case opts.Repos.Jobs == nil:
		return nil, errors.New("BulkUpdateRepository is required")
	case opts.Repos.Sessions == nil:
		return nil, errors.New("ShopSessionRepository is required")
	case opts.Pipeline.Catalogs == nil:
		return nil, errors.New("CatalogClientFactory is required")
	case opts.Pipeline.WriteBack == nil:
		return nil, errors.New("WriteBackService is required")
	}

	locker := opts.Pipeline.Locker
	if locker == nil {
		locker = NewLocalShopLocker()
	}
	pageSize := opts.Config.PageSize
	if pageSize <= 0 {
		pageSize = defaultBulkPageSize
	}
	clock := opts.Config.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BulkUpdateService{
		jobs:      opts.Repos.Jobs,
		sessions:  opts.Repos.Sessions,
		catalogs:  opts.Pipeline.Catalogs,
		writeBack: opts.Pipeline.WriteBack,
		locker:    locker,
		creds:     opts.Pipeline.Credentials,
		pageSize:  pageSize,
		clock:     clock,
		logger:    logger.With("component", "bulk_update_service"),
		metrics:   opts.Metrics,
	}, nil
}

// MustNewBulkUpdateService constructs a BulkUpdateService and panics on error.
func MustNewBulkUpdateService(opts BulkUpdateServiceOptions) *BulkUpdateService {
	svc, err := NewBulkUpdateService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Start validates the request, checks the shop's session and, for captioning
// kinds, its captioning key, takes the shop lock and records an open job,
// then runs the sweep on a background goroutine that outlives ctx.
// Configuration problems and a busy shop are reported here; everything that
// goes wrong later is recorded on the job row.
func (s *BulkUpdateService) Start(ctx context.Context, shopID string, op model.BulkOperation) (*model.BulkUpdateJob, error) {
	shopID = strings.ToLower(strings.TrimSpace(shopID))
	if shopID == "" {
		return nil, apperrors.ValidationField("shop", "shop is required")
	}
	if err := op.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid bulk operation")
	}

	catalog, err := resolveCatalog(ctx, s.sessions, s.catalogs, shopID)
	if err != nil {
		return nil, err
	}
	if s.creds != nil && op.Kind != model.BulkOperationApprove {
		if err := s.creds.CheckCredentials(ctx, shopID); err != nil {
			return nil, err
		}
	}

	unlock, acquired, err := s.locker.TryAcquire(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperrors.Wrap(ErrShopBusy, apperrors.ErrCodeConflict, "bulk update already running")
	}

	now := s.clock.Now()
	job := model.BulkUpdateJob{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		StartTime:   now,
		HeartbeatAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		unlock(ctx)
		return nil, fmt.Errorf("create bulk update request: %w", apperrors.MapDBError(err))
	}

	metrics.EmitBulkJobLifecycle(s.metrics, metrics.BulkJobMetric{
		Kind:       string(op.Kind),
		Transition: metrics.TransitionStarted,
		Result:     metrics.ResultSuccess,
	})
	s.logger.InfoContext(ctx, "bulk update started", "shop_id", shopID, "job_id", job.ID, "kind", op.Kind)

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unlock(runCtx)
		if err := s.run(runCtx, job, op, catalog); err != nil {
			s.logger.ErrorContext(runCtx, "bulk update could not be finalized",
				"shop_id", shopID, "job_id", job.ID, "error", err)
		}
	}()

	return &job, nil
}

// Wait blocks until every background sweep has settled or ctx is done.
func (s *BulkUpdateService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run performs the sweep and always finalizes the job. Sweep errors are
// logged and recorded on the job; only a failure to finalize is returned.
func (s *BulkUpdateService) run(ctx context.Context, job model.BulkUpdateJob, op model.BulkOperation, catalog core.CatalogClient) error {
	target := WriteBackTarget{
		ShopID:  job.ShopID,
		Catalog: catalog,
		Source:  model.DescriptionUpdateSource{BulkUpdateRequestID: job.ID},
	}

	written, sweepErr := s.sweep(ctx, job, target, op)
	if sweepErr != nil {
		s.logger.ErrorContext(ctx, "bulk update failed",
			"shop_id", job.ShopID,
			"job_id", job.ID,
			"kind", op.Kind,
			"written", written,
			"error", sweepErr,
		)
	}

	end := s.clock.Now()
	closed, err := s.jobs.Close(ctx, core.CloseBulkUpdateParams{
		ID:     job.ID,
		End:    end,
		Failed: sweepErr != nil,
	})

	result := metrics.ResultSuccess
	if sweepErr != nil || err != nil {
		result = metrics.ResultError
	}
	metrics.EmitBulkJobLifecycle(s.metrics, metrics.BulkJobMetric{
		Kind:       string(op.Kind),
		Transition: metrics.TransitionFinished,
		Result:     result,
		Duration:   end.Sub(job.StartTime),
		Updated:    written,
		Err:        errors.Join(sweepErr, err),
	})

	if err != nil {
		return fmt.Errorf("close bulk update request %s: %w", job.ID, err)
	}
	if !closed {
		s.logger.WarnContext(ctx, "bulk update was already closed", "shop_id", job.ShopID, "job_id", job.ID)
		return nil
	}
	s.logger.InfoContext(ctx, "bulk update finished",
		"shop_id", job.ShopID,
		"job_id", job.ID,
		"written", written,
		"failed", sweepErr != nil,
	)
	return nil
}

// sweep writes one page at a time and heartbeats after each page.
func (s *BulkUpdateService) sweep(
	ctx context.Context,
	job model.BulkUpdateJob,
	target WriteBackTarget,
	op model.BulkOperation,
) (int, error) {
	written := 0
	captionPage := func(ctx context.Context, products []model.Product) error {
		n, err := s.writeBack.CaptionPage(ctx, target, products)
		written += n
		if err != nil {
			return err
		}
		return s.heartbeat(ctx, job)
	}

	switch op.Kind {
	case model.BulkOperationAll:
		err := ForEachProductPage(ctx, target.Catalog.ListProducts, "", s.pageSize, captionPage)
		return written, err
	case model.BulkOperationProducts:
		for chunk := range slices.Chunk(op.Products, s.pageSize) {
			if err := captionPage(ctx, chunk); err != nil {
				return written, err
			}
		}
		return written, nil
	case model.BulkOperationApprove:
		for chunk := range slices.Chunk(op.Approvals, s.pageSize) {
			n, err := s.writeBack.ApplyApprovals(ctx, target, chunk)
			written += n
			if err != nil {
				return written, err
			}
			if err := s.heartbeat(ctx, job); err != nil {
				return written, err
			}
		}
		return written, nil
	default:
		return 0, fmt.Errorf("invalid bulk operation kind: %q", op.Kind)
	}
}

// heartbeat stamps the job and extends the shop lock. Transient failures
// are logged and retried on the next page; a closed job or a lost lock stops
// the sweep.
func (s *BulkUpdateService) heartbeat(ctx context.Context, job model.BulkUpdateJob) error {
	open, err := s.jobs.Heartbeat(ctx, job.ID, s.clock.Now())
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "bulk update heartbeat failed", "shop_id", job.ShopID, "job_id", job.ID, "error", err)
	case !open:
		return ErrBulkUpdateClosed
	}

	held, err := s.locker.Extend(ctx, job.ShopID)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "shop lock extension failed", "shop_id", job.ShopID, "job_id", job.ID, "error", err)
	case !held:
		return ErrShopLockLost
	}
	return nil
}

// Progress returns a job and the number of descriptions it has written.
// An empty jobID selects the shop's most recent job.
func (s *BulkUpdateService) Progress(ctx context.Context, shopID, jobID string) (*model.BulkUpdateProgress, error) {
	shopID = strings.ToLower(strings.TrimSpace(shopID))

	var (
		job *model.BulkUpdateJob
		err error
	)
	if jobID == "" {
		job, err = s.jobs.LatestForShop(ctx, shopID)
	} else {
		if _, perr := uuid.Parse(jobID); perr != nil {
			return nil, apperrors.ValidationField("id", "invalid bulk update request id")
		}
		job, err = s.jobs.GetByID(ctx, jobID)
	}
	if errors.Is(err, data.ErrBulkUpdateNotFound) || (err == nil && job.ShopID != shopID) {
		return nil, apperrors.NotFound("bulk update request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load bulk update request: %w", err)
	}

	count, err := s.jobs.CountDescriptionUpdates(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("count description updates: %w", err)
	}

	return &model.BulkUpdateProgress{
		BulkUpdateJob:                 *job,
		ProductDescriptionUpdateCount: count,
	}, nil
}

// resolveCatalog loads the shop's session and builds its catalog client.
func resolveCatalog(
	ctx context.Context,
	sessions core.ShopSessionRepository,
	catalogs core.CatalogClientFactory,
	shopID string,
) (core.CatalogClient, error) {
	session, err := sessions.GetByShop(ctx, shopID)
	if errors.Is(err, data.ErrShopSessionNotFound) {
		return nil, apperrors.Configurationf("no session for shop %s", shopID)
	}
	if err != nil {
		return nil, fmt.Errorf("load shop session: %w", err)
	}
	catalog, err := catalogs.ForSession(*session)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "build catalog client")
	}
	return catalog, nil
}
