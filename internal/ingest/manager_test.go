// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	reviews  map[string]*models.RawReview // keyed product|source|source_review_id
}

func newFakeStore(products ...*models.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[string]*models.Product),
		reviews:  make(map[string]*models.RawReview),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (s *fakeStore) ListProducts(_ context.Context, category models.Category, includeDiscontinued bool) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Product
	for _, p := range s.products {
		if p.Category == category && (includeDiscontinued || !p.Discontinued) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertReview(_ context.Context, r *models.RawReview) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.ProductID + "|" + r.Source + "|" + r.SourceReviewID
	if _, exists := s.reviews[key]; exists {
		return false, nil
	}
	s.reviews[key] = r
	return true, nil
}

func (s *fakeStore) reviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

type fakePublisher struct {
	mu       sync.Mutex
	triggers []string
}

func (p *fakePublisher) PublishExtractionTrigger(_ context.Context, productID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.triggers = append(p.triggers, productID)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.triggers)
}

// newReviewServer serves a search endpoint and one page of two reviews.
func newReviewServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			fmt.Fprint(w, `{"results":[{"id":"ghost-16"}]}`)
		case "/products/ghost-16/reviews":
			fmt.Fprint(w, `{"reviews":[
				{"id":"r1","body":"Great daily trainer"},
				{"id":"r2","body":"Runs a touch narrow"}
			],"has_more":false}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestManager(t *testing.T, store Store, publisher TriggerPublisher, sources ...config.SourceConfig) (*Manager, context.CancelFunc) {
	t.Helper()

	cfg := &config.IngestConfig{
		Workers:        2,
		UserAgent:      "stridefit-test",
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  1,
		RetryDelay:     time.Millisecond,
		Sources:        sources,
	}
	m := NewManager(cfg, store, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Serve(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func waitForJob(t *testing.T, m *Manager, jobID string) Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := m.JobStatus(jobID)
		if !ok {
			t.Fatalf("JobStatus(%s) not found", jobID)
		}
		if job.State != JobPending && job.State != JobRunning {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", jobID)
	return Job{}
}

func TestTriggerIngestionUnknownProduct(t *testing.T) {
	m, _ := newTestManager(t, newFakeStore(), &fakePublisher{})

	if _, err := m.TriggerIngestion(context.Background(), "missing"); err == nil {
		t.Error("TriggerIngestion(missing) succeeded, want error")
	}
}

func TestIngestionStoresReviewsAndTriggersExtraction(t *testing.T) {
	srv := newReviewServer(t)
	defer srv.Close()

	store := newFakeStore(testRunningProduct())
	publisher := &fakePublisher{}
	m, _ := newTestManager(t, store, publisher, testSourceConfig(srv.URL))

	jobID, err := m.TriggerIngestion(context.Background(), "brooks-ghost-16")
	if err != nil {
		t.Fatalf("TriggerIngestion() error = %v", err)
	}

	job := waitForJob(t, m, jobID)
	if job.State != JobCompleted {
		t.Errorf("job state = %q, want completed (errors: %v)", job.State, job.SourceErrors)
	}
	if job.ReviewsFetched != 2 || job.ReviewsStored != 2 {
		t.Errorf("fetched/stored = %d/%d, want 2/2", job.ReviewsFetched, job.ReviewsStored)
	}
	if store.reviewCount() != 2 {
		t.Errorf("stored reviews = %d, want 2", store.reviewCount())
	}
	if publisher.count() != 1 {
		t.Errorf("extraction triggers = %d, want exactly 1", publisher.count())
	}
}

func TestDoubleIngestionIsIdempotent(t *testing.T) {
	srv := newReviewServer(t)
	defer srv.Close()

	store := newFakeStore(testRunningProduct())
	publisher := &fakePublisher{}
	m, _ := newTestManager(t, store, publisher, testSourceConfig(srv.URL))
	ctx := context.Background()

	first, err := m.TriggerIngestion(ctx, "brooks-ghost-16")
	if err != nil {
		t.Fatalf("first TriggerIngestion() error = %v", err)
	}
	waitForJob(t, m, first)

	second, err := m.TriggerIngestion(ctx, "brooks-ghost-16")
	if err != nil {
		t.Fatalf("second TriggerIngestion() error = %v", err)
	}
	job := waitForJob(t, m, second)

	if job.ReviewsStored != 0 {
		t.Errorf("second run stored = %d, want 0 (all duplicates)", job.ReviewsStored)
	}
	if store.reviewCount() != 2 {
		t.Errorf("total reviews = %d, want 2 after double ingest", store.reviewCount())
	}
	if publisher.count() != 1 {
		t.Errorf("extraction triggers = %d, want 1 (no trigger without new reviews)", publisher.count())
	}
}

func TestPartialWhenOneSourceFails(t *testing.T) {
	good := newReviewServer(t)
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()

	badCfg := testSourceConfig(bad.URL)
	badCfg.Name = "badsource"

	store := newFakeStore(testRunningProduct())
	publisher := &fakePublisher{}
	m, _ := newTestManager(t, store, publisher, testSourceConfig(good.URL), badCfg)

	jobID, err := m.TriggerIngestion(context.Background(), "brooks-ghost-16")
	if err != nil {
		t.Fatalf("TriggerIngestion() error = %v", err)
	}

	job := waitForJob(t, m, jobID)
	if job.State != JobPartial {
		t.Errorf("job state = %q, want partial", job.State)
	}
	if _, ok := job.SourceErrors["badsource"]; !ok {
		t.Errorf("source errors = %v, want badsource entry", job.SourceErrors)
	}
	if job.ReviewsStored != 2 {
		t.Errorf("stored = %d, want 2 from the healthy source", job.ReviewsStored)
	}
	if publisher.count() != 1 {
		t.Errorf("extraction triggers = %d, want 1 for the partial run", publisher.count())
	}
}

func TestAllSourcesFailedMarksJobFailed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()

	store := newFakeStore(testRunningProduct())
	publisher := &fakePublisher{}
	m, _ := newTestManager(t, store, publisher, testSourceConfig(bad.URL))

	jobID, err := m.TriggerIngestion(context.Background(), "brooks-ghost-16")
	if err != nil {
		t.Fatalf("TriggerIngestion() error = %v", err)
	}

	job := waitForJob(t, m, jobID)
	if job.State != JobFailed {
		t.Errorf("job state = %q, want failed", job.State)
	}
	if publisher.count() != 0 {
		t.Errorf("extraction triggers = %d, want 0 for a failed run", publisher.count())
	}
}

func TestTriggerCategory(t *testing.T) {
	srv := newReviewServer(t)
	defer srv.Close()

	other := testRunningProduct()
	other.ID = "brooks-ghost-15"
	discontinued := testRunningProduct()
	discontinued.ID = "old-shoe"
	discontinued.Discontinued = true

	store := newFakeStore(testRunningProduct(), other, discontinued)
	m, _ := newTestManager(t, store, &fakePublisher{}, testSourceConfig(srv.URL))

	ids, err := m.TriggerCategory(context.Background(), models.CategoryRunning)
	if err != nil {
		t.Fatalf("TriggerCategory() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("triggered jobs = %d, want 2 (discontinued excluded)", len(ids))
	}

	if _, err := m.TriggerCategory(context.Background(), "surfing"); err == nil {
		t.Error("TriggerCategory(surfing) succeeded, want error")
	}
}
