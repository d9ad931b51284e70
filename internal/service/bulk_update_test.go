package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/image-captioner/captioner/internal/mocks"
	"github.com/image-captioner/captioner/internal/testutil"
)

type bulkHarness struct {
	svc       *BulkUpdateService
	jobs      *memJobs
	updates   *memUpdates
	catalog   *fakeCatalog
	describer *fakeDescriber
	clock     *data.FixedTimeProvider
}

func newBulkHarness(
	t *testing.T,
	catalog *fakeCatalog,
	describer *fakeDescriber,
	withPipeline ...func(*BulkUpdatePipeline),
) *bulkHarness {
	t.Helper()
	updates := newMemUpdates()
	jobs := newMemJobs(updates)
	clock := data.NewFixedTimeProvider(testutil.TestTime())

	wb, err := NewWriteBackService(WriteBackServiceOptions{Updates: updates, Describer: describer})
	require.NoError(t, err)

	pipeline := BulkUpdatePipeline{
		Catalogs:  fakeFactory{catalog: catalog},
		WriteBack: wb,
	}
	for _, fn := range withPipeline {
		fn(&pipeline)
	}
	svc, err := NewBulkUpdateService(BulkUpdateServiceOptions{
		Repos:    BulkUpdateRepos{Jobs: jobs, Sessions: newFakeSessions(testShop)},
		Pipeline: pipeline,
		Config:   BulkUpdateConfig{PageSize: 5, TimeProvider: clock},
	})
	require.NoError(t, err)

	return &bulkHarness{svc: svc, jobs: jobs, updates: updates, catalog: catalog, describer: describer, clock: clock}
}

func (h *bulkHarness) startAndWait(t *testing.T, op model.BulkOperation) model.BulkUpdateJob {
	t.Helper()
	job, err := h.svc.Start(context.Background(), testShop, op)
	require.NoError(t, err)
	require.NotNil(t, job)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.svc.Wait(ctx))
	return h.jobs.get(job.ID)
}

func TestBulkUpdate_SinglePageAllSucceed(t *testing.T) {
	products := []model.Product{
		testutil.NewProduct(1).WithDescription("Gray knit beanie").Build(),
		testutil.NewProduct(2).WithDescription("Red scarf").Build(),
	}
	h := newBulkHarness(t, newFakeCatalog(pagesOf(products)...), &fakeDescriber{})

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.Equal(t, model.ProductIDs(products), h.catalog.updatedIDs())
	rows := h.updates.snapshot()
	require.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, products[i].Description, row.OldDescription)
		assert.Equal(t, captionFor(products[i].ImageURL()), row.NewDescription)
	}

	require.NotNil(t, job.EndTime)
	require.NotNil(t, job.Error)
	assert.False(t, *job.Error)
	assert.False(t, job.InProgress())
	assert.Len(t, h.updates.joinsFor(job.ID), 2)
}

func TestBulkUpdate_MultiPageSweepRunsPagesInOrder(t *testing.T) {
	pages := pagesOf(testutil.Products(1, 5), testutil.Products(6, 5), testutil.Products(11, 5))
	h := newBulkHarness(t, newFakeCatalog(pages...), &fakeDescriber{})

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.Equal(t, []string{"", "cursor-1", "cursor-2"}, h.catalog.fetches)
	require.Equal(t, 3, h.describer.callCount())
	for i, call := range h.describer.calls {
		assert.Equal(t, imageURLs(pages[i].Nodes), call)
	}
	assert.Len(t, h.catalog.updatedIDs(), 15)
	assert.False(t, job.Failed())

	progress, err := h.svc.Progress(context.Background(), testShop, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, progress.ProductDescriptionUpdateCount)
	assert.False(t, progress.InProgress())
}

func TestBulkUpdate_CaptioningFailureClosesJobWithError(t *testing.T) {
	describer := &fakeDescriber{fn: func([]string) (map[string]string, error) {
		return nil, errors.New("visionati: submit response has no response_uri")
	}}
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 2))...), describer)

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.True(t, job.Failed())
	assert.Empty(t, h.catalog.updatedIDs())
	assert.Empty(t, h.updates.snapshot())
}

func TestBulkUpdate_IncompleteCaptionsFailsJob(t *testing.T) {
	describer := &fakeDescriber{fn: func(urls []string) (map[string]string, error) {
		return map[string]string{urls[0]: "<p>x</p>"}, nil
	}}
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 3))...), describer)

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.True(t, job.Failed())
	assert.Empty(t, h.catalog.updatedIDs())
}

func TestBulkUpdate_FailureOnLaterPageKeepsEarlierWrites(t *testing.T) {
	catalog := newFakeCatalog(pagesOf(testutil.Products(1, 2), testutil.Products(3, 2))...)
	catalog.failOn = "gid://shopify/Product/4"
	h := newBulkHarness(t, catalog, &fakeDescriber{})

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.True(t, job.Failed())
	assert.Len(t, h.updates.joinsFor(job.ID), 3)
}

func TestBulkUpdate_ProductsKindCaptionsGivenNodesInChunks(t *testing.T) {
	products := testutil.Products(1, 7)
	h := newBulkHarness(t, newFakeCatalog(pagesOf(products)...), &fakeDescriber{})

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationProducts, Products: products})

	assert.False(t, job.Failed())
	assert.Zero(t, h.catalog.fetchCount())
	require.Equal(t, 2, h.describer.callCount())
	assert.Len(t, h.describer.calls[0], 5)
	assert.Len(t, h.describer.calls[1], 2)
	assert.Len(t, h.catalog.updatedIDs(), 7)
}

func TestBulkUpdate_ApproveKindSkipsCaptioning(t *testing.T) {
	products := testutil.Products(1, 2)
	h := newBulkHarness(t, newFakeCatalog(pagesOf(products)...), &fakeDescriber{})

	job := h.startAndWait(t, model.BulkOperation{
		Kind: model.BulkOperationApprove,
		Approvals: []model.Approval{
			{ProductID: products[0].ID, Description: "<p>one</p>"},
			{ProductID: products[1].ID, Description: "<p>two</p>"},
		},
	})

	assert.False(t, job.Failed())
	assert.Zero(t, h.describer.callCount())
	assert.Equal(t, "<p>two</p>", h.catalog.written[products[1].ID])
	assert.Len(t, h.updates.joinsFor(job.ID), 2)
}

func TestBulkUpdate_StartRejectsUnknownShop(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(), &fakeDescriber{})

	_, err := h.svc.Start(context.Background(), "unknown.myshopify.com", model.BulkOperation{Kind: model.BulkOperationAll})
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Empty(t, h.jobs.jobs)
}

func TestBulkUpdate_StartRejectsInvalidOperation(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(), &fakeDescriber{})

	_, err := h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationProducts})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBulkUpdate_CreateFailureStartsNothing(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 1))...), &fakeDescriber{})
	h.jobs.createErr = errors.New("insert failed")

	_, err := h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.Error(t, err)
	require.NoError(t, h.svc.Wait(context.Background()))
	assert.Zero(t, h.catalog.fetchCount())

	// The lock was released, so a retry can proceed.
	h.jobs.createErr = nil
	h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})
}

func TestBulkUpdate_MissingCaptionKeyStartsNothing(t *testing.T) {
	captions, settings, _ := newTestCaptionService(t, "")
	settings.EXPECT().Get(gomock.Any(), testShop).Return(nil, data.ErrCaptionSettingsNotFound).Times(2)
	withCaptions := func(p *BulkUpdatePipeline) { p.Credentials = captions }
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 1))...), &fakeDescriber{}, withCaptions)

	for _, op := range []model.BulkOperation{
		{Kind: model.BulkOperationAll},
		{Kind: model.BulkOperationProducts, Products: testutil.Products(1, 1)},
	} {
		job, err := h.svc.Start(context.Background(), testShop, op)
		require.Error(t, err, op.Kind)
		assert.Nil(t, job)
		assert.True(t, apperrors.IsConfiguration(err), op.Kind)
		assert.ErrorContains(t, err, "no captioning API key")
	}

	require.NoError(t, h.svc.Wait(context.Background()))
	assert.Empty(t, h.jobs.jobs)
	assert.Zero(t, h.catalog.fetchCount())
	assert.Zero(t, h.describer.callCount())
}

func TestBulkUpdate_ApproveSkipsCaptionKeyCheck(t *testing.T) {
	products := testutil.Products(1, 1)
	captions, _, _ := newTestCaptionService(t, "")
	withCaptions := func(p *BulkUpdatePipeline) { p.Credentials = captions }
	h := newBulkHarness(t, newFakeCatalog(pagesOf(products)...), &fakeDescriber{}, withCaptions)

	job := h.startAndWait(t, model.BulkOperation{
		Kind:      model.BulkOperationApprove,
		Approvals: []model.Approval{{ProductID: products[0].ID, Description: "<p>ok</p>"}},
	})

	assert.False(t, job.Failed())
	assert.Equal(t, []string{products[0].ID}, h.catalog.updatedIDs())
}

func TestBulkUpdate_SecondJobForBusyShopConflicts(t *testing.T) {
	release := make(chan struct{})
	describer := &fakeDescriber{fn: func(urls []string) (map[string]string, error) {
		<-release
		out := map[string]string{}
		for _, u := range urls {
			out[u] = "d"
		}
		return out, nil
	}}
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 1))...), describer)

	first, err := h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.NoError(t, err)

	_, err = h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.ErrorIs(t, err, ErrShopBusy)
	assert.True(t, apperrors.IsConflict(err))

	progress, err := h.svc.Progress(context.Background(), testShop, "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, progress.ID)
	assert.True(t, progress.InProgress())

	close(release)
	require.NoError(t, h.svc.Wait(context.Background()))
	assert.False(t, h.jobs.get(first.ID).InProgress())
}

func TestBulkUpdate_JobOutlivesRequestContext(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 2))...), &fakeDescriber{})

	ctx, cancel := context.WithCancel(context.Background())
	job, err := h.svc.Start(ctx, testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.NoError(t, err)
	cancel()

	require.NoError(t, h.svc.Wait(context.Background()))
	assert.False(t, h.jobs.get(job.ID).Failed())
	assert.Len(t, h.catalog.updatedIDs(), 2)
}

func TestBulkUpdate_FinalizeFailureIsNotRetried(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 1))...), &fakeDescriber{})
	h.jobs.closeErr = errors.New("db gone")

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.True(t, job.InProgress())
	assert.Equal(t, 1, h.jobs.closes)
}

func TestBulkUpdate_ProgressNotFound(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(), &fakeDescriber{})

	_, err := h.svc.Progress(context.Background(), testShop, "")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = h.svc.Progress(context.Background(), testShop, "6f1c1d0e-4b7a-4a43-9a53-0d2b8f8c1e11")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = h.svc.Progress(context.Background(), testShop, "not-a-uuid")
	assert.True(t, apperrors.IsValidation(err))
}

func TestBulkUpdate_ProgressHidesOtherShopsJobs(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 1))...), &fakeDescriber{})
	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	_, err := h.svc.Progress(context.Background(), "other.myshopify.com", job.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBulkUpdate_HeartbeatsAfterEveryPage(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(
		testutil.Products(1, 5),
		testutil.Products(6, 5),
		testutil.Products(11, 2),
	)...), &fakeDescriber{})
	h.describer.fn = func(urls []string) (map[string]string, error) {
		h.clock.AddTime(10 * time.Minute)
		return captionsFor(urls), nil
	}

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.Equal(t, 3, h.jobs.heartbeats())
	assert.Equal(t, testutil.TestTime().Add(30*time.Minute), job.HeartbeatAt)
	assert.False(t, job.Failed())
}

func TestBulkUpdate_HeartbeatingJobSurvivesReaper(t *testing.T) {
	reached := make(chan struct{})
	release := make(chan struct{})
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 5), testutil.Products(6, 5))...), &fakeDescriber{})
	h.describer.fn = func(urls []string) (map[string]string, error) {
		if h.describer.callCount() == 1 {
			// The first page alone outlasts the stale threshold.
			h.clock.AddTime(3 * time.Hour)
		} else {
			close(reached)
			<-release
		}
		return captionsFor(urls), nil
	}
	reaper, err := NewReaperService(ReaperServiceOptions{
		Repo:   h.jobs,
		Config: config.ReaperConfig{Schedule: "@every 5m", StaleAfter: 2 * time.Hour},
		Clock:  h.clock,
	})
	require.NoError(t, err)

	job, err := h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.NoError(t, err)
	<-reached

	closed, err := reaper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, closed)
	assert.True(t, h.jobs.get(job.ID).InProgress())

	close(release)
	require.NoError(t, h.svc.Wait(context.Background()))
	final := h.jobs.get(job.ID)
	assert.False(t, final.Failed())
	assert.Len(t, h.catalog.updatedIDs(), 10)
}

func TestBulkUpdate_ReapedJobStopsSweep(t *testing.T) {
	reached := make(chan struct{})
	release := make(chan struct{})
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 5), testutil.Products(6, 5))...), &fakeDescriber{})
	h.describer.fn = func(urls []string) (map[string]string, error) {
		if h.describer.callCount() == 1 {
			close(reached)
			<-release
		}
		return captionsFor(urls), nil
	}
	reaper, err := NewReaperService(ReaperServiceOptions{
		Repo:   h.jobs,
		Config: config.ReaperConfig{Schedule: "@every 5m", StaleAfter: 2 * time.Hour},
		Clock:  h.clock,
	})
	require.NoError(t, err)

	job, err := h.svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.NoError(t, err)
	<-reached

	h.clock.AddTime(3 * time.Hour)
	closed, err := reaper.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	close(release)
	require.NoError(t, h.svc.Wait(context.Background()))
	assert.True(t, h.jobs.get(job.ID).Failed())
	assert.Equal(t, 1, h.catalog.fetchCount(), "no page is fetched after the job was closed")
	assert.Len(t, h.catalog.updatedIDs(), 5)
}

func TestBulkUpdate_HeartbeatErrorKeepsSweeping(t *testing.T) {
	h := newBulkHarness(t, newFakeCatalog(pagesOf(testutil.Products(1, 5), testutil.Products(6, 1))...), &fakeDescriber{})
	h.jobs.beatErr = errors.New("db blip")

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.False(t, job.Failed())
	assert.Len(t, h.catalog.updatedIDs(), 6)
}

func TestBulkUpdate_LostLockStopsSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockShopLocker(ctrl)
	locker.EXPECT().TryAcquire(gomock.Any(), testShop).Return(func(context.Context) {}, true, nil)
	locker.EXPECT().Extend(gomock.Any(), testShop).Return(false, nil)
	withLocker := func(p *BulkUpdatePipeline) { p.Locker = locker }
	h := newBulkHarness(t,
		newFakeCatalog(pagesOf(testutil.Products(1, 5), testutil.Products(6, 5))...),
		&fakeDescriber{},
		withLocker,
	)

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationAll})

	assert.True(t, job.Failed())
	assert.Equal(t, 1, h.catalog.fetchCount())
	assert.Len(t, h.catalog.updatedIDs(), 5)
}

func TestBulkUpdate_ApprovalsHeartbeatPerChunk(t *testing.T) {
	products := testutil.Products(1, 7)
	h := newBulkHarness(t, newFakeCatalog(pagesOf(products)...), &fakeDescriber{})
	approvals := make([]model.Approval, 0, len(products))
	for _, p := range products {
		approvals = append(approvals, model.Approval{ProductID: p.ID, Description: "<p>ok</p>"})
	}

	job := h.startAndWait(t, model.BulkOperation{Kind: model.BulkOperationApprove, Approvals: approvals})

	assert.False(t, job.Failed())
	assert.Equal(t, 2, h.jobs.heartbeats())
	assert.Len(t, h.updates.joinsFor(job.ID), 7)
}

func TestBulkUpdate_LockerErrorSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	locker := mocks.NewMockShopLocker(ctrl)
	locker.EXPECT().TryAcquire(gomock.Any(), testShop).Return(nil, false, errors.New("redis down"))

	updates := newMemUpdates()
	wb, err := NewWriteBackService(WriteBackServiceOptions{Updates: updates, Describer: &fakeDescriber{}})
	require.NoError(t, err)
	svc := MustNewBulkUpdateService(BulkUpdateServiceOptions{
		Repos: BulkUpdateRepos{Jobs: newMemJobs(updates), Sessions: newFakeSessions(testShop)},
		Pipeline: BulkUpdatePipeline{
			Catalogs:  fakeFactory{catalog: newFakeCatalog()},
			WriteBack: wb,
			Locker:    locker,
		},
	})

	_, err = svc.Start(context.Background(), testShop, model.BulkOperation{Kind: model.BulkOperationAll})
	require.ErrorContains(t, err, "redis down")
}
