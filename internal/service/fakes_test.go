package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
)

const testShop = "beanies.myshopify.com"

// fakeCatalog serves fixed pages and records every call made to it.
type fakeCatalog struct {
	mu sync.Mutex

	pages    []model.ProductConnection
	products map[string]model.Product
	fetchErr error
	failOn   string

	fetches []string // After cursor of each fetch, "" for the first page
	updates []string // product ids in write order
	written map[string]string
}

var _ core.CatalogClient = (*fakeCatalog)(nil)

func newFakeCatalog(pages ...model.ProductConnection) *fakeCatalog {
	c := &fakeCatalog{pages: pages, products: map[string]model.Product{}, written: map[string]string{}}
	for _, p := range pages {
		for _, n := range p.Nodes {
			c.products[n.ID] = n
		}
	}
	return c
}

func (c *fakeCatalog) ListProducts(_ context.Context, q model.ProductQuery) (model.ProductConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	after := ""
	if q.After != nil {
		after = *q.After
	}
	c.fetches = append(c.fetches, after)
	if c.fetchErr != nil {
		return model.ProductConnection{}, c.fetchErr
	}

	idx := 0
	if after != "" {
		if _, err := fmt.Sscanf(after, "cursor-%d", &idx); err != nil {
			return model.ProductConnection{}, err
		}
	}
	if idx >= len(c.pages) {
		return model.ProductConnection{}, errors.New("page out of range")
	}
	return c.pages[idx], nil
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (*model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return &p, nil
}

func (c *fakeCatalog) UpdateProductDescription(_ context.Context, id, desc string) (*model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.failOn {
		return nil, errors.New("storefront unavailable")
	}
	c.updates = append(c.updates, id)
	c.written[id] = desc
	p := c.products[id]
	p.Description = desc
	c.products[id] = p
	return &p, nil
}

func (c *fakeCatalog) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fetches)
}

func (c *fakeCatalog) updatedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.updates...)
}

// pagesOf splits products into linked pages with "cursor-N" end cursors.
func pagesOf(pages ...[]model.Product) []model.ProductConnection {
	out := make([]model.ProductConnection, 0, len(pages))
	for i, nodes := range pages {
		out = append(out, model.ProductConnection{
			Nodes: nodes,
			PageInfo: model.PageInfo{
				EndCursor:   fmt.Sprintf("cursor-%d", i+1),
				HasNextPage: i < len(pages)-1,
			},
		})
	}
	return out
}

type fakeFactory struct {
	catalog core.CatalogClient
	err     error
}

func (f fakeFactory) ForSession(model.ShopSession) (core.CatalogClient, error) {
	return f.catalog, f.err
}

type fakeSessions struct {
	sessions map[string]model.ShopSession
}

func newFakeSessions(shops ...string) *fakeSessions {
	s := &fakeSessions{sessions: map[string]model.ShopSession{}}
	for _, shop := range shops {
		s.sessions[shop] = model.ShopSession{Shop: shop, AccessToken: "shpat_" + shop}
	}
	return s
}

func (s *fakeSessions) GetByShop(_ context.Context, shop string) (*model.ShopSession, error) {
	sess, ok := s.sessions[shop]
	if !ok {
		return nil, data.ErrShopSessionNotFound
	}
	return &sess, nil
}

func (s *fakeSessions) Upsert(_ context.Context, session model.ShopSession) error {
	s.sessions[session.Shop] = session
	return nil
}

func (s *fakeSessions) DeleteByShop(_ context.Context, shop string) (bool, error) {
	_, ok := s.sessions[shop]
	delete(s.sessions, shop)
	return ok, nil
}

// fakeDescriber returns "<p>about URL</p>" for every URL unless fn is set.
type fakeDescriber struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(urls []string) (map[string]string, error)
}

func (d *fakeDescriber) DescribeImages(_ context.Context, _ string, urls []string) (map[string]string, error) {
	d.mu.Lock()
	d.calls = append(d.calls, append([]string(nil), urls...))
	fn := d.fn
	d.mu.Unlock()

	if fn != nil {
		return fn(urls)
	}
	return captionsFor(urls), nil
}

func captionsFor(urls []string) map[string]string {
	out := make(map[string]string, len(urls))
	for _, u := range urls {
		out[u] = captionFor(u)
	}
	return out
}

func (d *fakeDescriber) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func captionFor(url string) string {
	return "<p>about " + url + "</p>"
}

// memUpdates is an in-memory DescriptionUpdateRepository that keeps join rows.
type memUpdates struct {
	mu        sync.Mutex
	rows      []model.DescriptionUpdate
	bulkJoins map[string][]string // job id -> update ids
	failAfter int                 // fail every Create once this many rows exist; 0 disables
}

var _ core.DescriptionUpdateRepository = (*memUpdates)(nil)

func newMemUpdates() *memUpdates {
	return &memUpdates{bulkJoins: map[string][]string{}}
}

func (m *memUpdates) Create(_ context.Context, u model.DescriptionUpdate, src model.DescriptionUpdateSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter > 0 && len(m.rows) >= m.failAfter {
		return errors.New("insert failed")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().Add(time.Duration(len(m.rows)) * time.Millisecond)
	m.rows = append(m.rows, u)
	if src.BulkUpdateRequestID != "" {
		m.bulkJoins[src.BulkUpdateRequestID] = append(m.bulkJoins[src.BulkUpdateRequestID], u.ID)
	}
	return nil
}

func (m *memUpdates) ProductIDsWithUpdates(_ context.Context, shopID string, ids []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string]bool{}
	for _, r := range m.rows {
		if r.ShopID == shopID && want[r.ProductID] {
			out[r.ProductID] = true
		}
	}
	return out, nil
}

func (m *memUpdates) LatestByProduct(_ context.Context, shopID string, ids []string) (map[string]model.DescriptionUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[string]model.DescriptionUpdate{}
	for _, r := range m.rows {
		if r.ShopID != shopID || !want[r.ProductID] {
			continue
		}
		if cur, ok := out[r.ProductID]; !ok || r.CreatedAt.After(cur.CreatedAt) {
			out[r.ProductID] = r
		}
	}
	return out, nil
}

func (m *memUpdates) snapshot() []model.DescriptionUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.DescriptionUpdate(nil), m.rows...)
}

func (m *memUpdates) joinsFor(jobID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bulkJoins[jobID]...)
}

// memJobs is an in-memory BulkUpdateRepository.
type memJobs struct {
	mu        sync.Mutex
	jobs      map[string]model.BulkUpdateJob
	updates   *memUpdates
	createErr error
	closeErr  error
	closes    int
	beats     int
	beatErr   error
}

var _ core.BulkUpdateRepository = (*memJobs)(nil)

func newMemJobs(updates *memUpdates) *memJobs {
	return &memJobs{jobs: map[string]model.BulkUpdateJob{}, updates: updates}
}

func (m *memJobs) Create(_ context.Context, job model.BulkUpdateJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if job.HeartbeatAt.IsZero() {
		job.HeartbeatAt = job.StartTime
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobs) Close(_ context.Context, p core.CloseBulkUpdateParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	if m.closeErr != nil {
		return false, m.closeErr
	}
	job, ok := m.jobs[p.ID]
	if !ok || job.EndTime != nil {
		return false, nil
	}
	end, failed := p.End, p.Failed
	job.EndTime, job.Error = &end, &failed
	m.jobs[p.ID] = job
	return true, nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*model.BulkUpdateJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, data.ErrBulkUpdateNotFound
	}
	return &job, nil
}

func (m *memJobs) LatestForShop(_ context.Context, shopID string) (*model.BulkUpdateJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.BulkUpdateJob
	for _, j := range m.jobs {
		if j.ShopID == shopID {
			all = append(all, j)
		}
	}
	if len(all) == 0 {
		return nil, data.ErrBulkUpdateNotFound
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	return &all[0], nil
}

func (m *memJobs) CountDescriptionUpdates(_ context.Context, id string) (int, error) {
	return len(m.updates.joinsFor(id)), nil
}

func (m *memJobs) Heartbeat(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beatErr != nil {
		return false, m.beatErr
	}
	job, ok := m.jobs[id]
	if !ok || job.EndTime != nil {
		return false, nil
	}
	m.beats++
	if at.After(job.HeartbeatAt) {
		job.HeartbeatAt = at
	}
	m.jobs[id] = job
	return true, nil
}

func (m *memJobs) CloseStale(_ context.Context, lastSeenBefore time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var closed int64
	for id, job := range m.jobs {
		if job.EndTime != nil || !job.HeartbeatAt.Before(lastSeenBefore) {
			continue
		}
		end, failed := lastSeenBefore, true
		job.EndTime, job.Error = &end, &failed
		m.jobs[id] = job
		closed++
	}
	return closed, nil
}

func (m *memJobs) heartbeats() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beats
}

func (m *memJobs) get(id string) model.BulkUpdateJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}
