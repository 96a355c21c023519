// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/stridefit/stridefit/internal/cache"
	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
)

// Store is the slice of the database the pipeline needs.
type Store interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, category models.Category, includeDiscontinued bool) ([]*models.Product, error)
	InsertReview(ctx context.Context, r *models.RawReview) (bool, error)
}

// TriggerPublisher publishes extraction triggers after a run stores new
// reviews.
type TriggerPublisher interface {
	PublishExtractionTrigger(ctx context.Context, productID string) error
}

// Manager owns the ingestion worker pool, the job registry, and the
// per-product serialization of runs.
type Manager struct {
	cfg       *config.IngestConfig
	store     Store
	publisher TriggerPublisher
	sources   []Source

	registry *jobRegistry
	seen     *cache.SeenFilter

	queue chan *Job

	// inFlight serializes jobs per product.
	mu       sync.Mutex
	inFlight map[string]chan struct{}
}

// NewManager builds a manager with one Source per config entry.
func NewManager(cfg *config.IngestConfig, store Store, publisher TriggerPublisher) *Manager {
	client := &http.Client{Timeout: cfg.RequestTimeout}

	sources := make([]Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		sources = append(sources, NewSource(sc, client, cfg.UserAgent))
	}

	return &Manager{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		sources:   sources,
		registry:  newJobRegistry(1000),
		seen:      cache.NewSeenFilter(100000, 24*time.Hour),
		queue:     make(chan *Job, 256),
		inFlight:  make(map[string]chan struct{}),
	}
}

// Serve runs the worker pool until the context is canceled. Implements
// the supervisor service contract.
func (m *Manager) Serve(ctx context.Context) error {
	workers := m.cfg.Workers
	if workers <= 0 {
		workers = 2
	}

	logging.Info().Int("workers", workers).Int("sources", len(m.sources)).Msg("Ingestion manager starting")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-m.queue:
					m.runJob(ctx, job)
				}
			}
		}()
	}

	wg.Wait()
	return ctx.Err()
}

func (m *Manager) String() string { return "ingest-manager" }

// TriggerIngestion queues one ingestion job for a product and returns
// the job ID.
func (m *Manager) TriggerIngestion(ctx context.Context, productID string) (string, error) {
	product, err := m.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("unknown product %q", productID)
		}
		return "", fmt.Errorf("failed to load product: %w", err)
	}

	job := m.registry.create(product.ID)
	select {
	case m.queue <- job:
	default:
		m.registry.finish(job.ID, JobFailed, 0, 0, map[string]string{"queue": "ingestion queue full"})
		return "", fmt.Errorf("ingestion queue full")
	}
	return job.ID, nil
}

// TriggerCategory queues one job per non-discontinued product in a
// category and returns the job IDs.
func (m *Manager) TriggerCategory(ctx context.Context, category models.Category) ([]string, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	products, err := m.store.ListProducts(ctx, category, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		id, err := m.TriggerIngestion(ctx, p.ID)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JobStatus returns a snapshot of a job by ID.
func (m *Manager) JobStatus(jobID string) (Job, bool) {
	return m.registry.get(jobID)
}

// runJob executes one ingestion run end to end.
func (m *Manager) runJob(ctx context.Context, job *Job) {
	release := m.acquireProduct(ctx, job.ProductID)
	if release == nil {
		m.registry.finish(job.ID, JobFailed, 0, 0, map[string]string{"job": "canceled while waiting for product lock"})
		return
	}
	defer release()

	m.registry.start(job.ID)
	log := logging.Ctx(ctx).With().Str("job_id", job.ID).Str("product_id", job.ProductID).Logger()

	product, err := m.store.GetProduct(ctx, job.ProductID)
	if err != nil {
		m.registry.finish(job.ID, JobFailed, 0, 0, map[string]string{"store": err.Error()})
		metrics.IngestJobsTotal.WithLabelValues(string(JobFailed)).Inc()
		return
	}

	totalFetched, totalStored := 0, 0
	sourceErrors := make(map[string]string)

	for _, source := range m.sources {
		fetched, stored, err := m.runSource(ctx, source, product)
		totalFetched += fetched
		totalStored += stored
		metrics.RecordIngestFetch(source.Name(), fetched, stored, err)
		if err != nil {
			sourceErrors[source.Name()] = err.Error()
			log.Warn().Err(err).Str("source", source.Name()).Msg("Source failed")
		}
		if ctx.Err() != nil {
			sourceErrors["job"] = ctx.Err().Error()
			break
		}
	}

	state := JobCompleted
	switch {
	case len(sourceErrors) == len(m.sources) && len(m.sources) > 0:
		state = JobFailed
	case len(sourceErrors) > 0:
		state = JobPartial
	}
	m.registry.finish(job.ID, state, totalFetched, totalStored, sourceErrors)
	metrics.IngestJobsTotal.WithLabelValues(string(state)).Inc()

	log.Info().
		Str("state", string(state)).
		Int("fetched", totalFetched).
		Int("stored", totalStored).
		Msg("Ingestion job finished")

	if totalStored > 0 && m.publisher != nil {
		if err := m.publisher.PublishExtractionTrigger(ctx, job.ProductID); err != nil {
			log.Error().Err(err).Msg("Failed to publish extraction trigger")
		}
	}
}

// runSource fetches all pages of one source for a product.
func (m *Manager) runSource(ctx context.Context, source Source, product *models.Product) (fetched, stored int, err error) {
	var pageURL string
	err = m.retryWithBackoff(ctx, func() error {
		var rerr error
		pageURL, rerr = source.ResolveProductPage(ctx, product)
		return rerr
	})
	if err != nil {
		return 0, 0, err
	}

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return fetched, stored, ctx.Err()
		}

		var (
			reviews []*models.RawReview
			more    bool
		)
		err = m.retryWithBackoff(ctx, func() error {
			var rerr error
			reviews, more, rerr = source.FetchReviews(ctx, pageURL, page)
			return rerr
		})
		if err != nil {
			// Pages already stored stand; the source reports partial.
			return fetched, stored, err
		}

		for _, review := range reviews {
			review.ProductID = product.ID
			fetched++

			key := review.ProductID + "|" + review.Source + "|" + review.SourceReviewID
			if m.seen.Seen(key) {
				continue
			}

			inserted, err := m.store.InsertReview(ctx, review)
			if err != nil {
				return fetched, stored, fmt.Errorf("failed to store review: %w", err)
			}
			m.seen.Record(key)
			if inserted {
				stored++
			}
		}

		if !more {
			return fetched, stored, nil
		}
	}
}

// retryWithBackoff retries transient failures with exponential backoff,
// honoring context cancellation during waits.
func (m *Manager) retryWithBackoff(ctx context.Context, fn func() error) error {
	attempts := m.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := m.cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}

		if attempt < attempts-1 {
			logging.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", attempts).Dur("delay", delay).Msg("Retrying fetch")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}

// acquireProduct blocks until the product's slot is free, returning a
// release func. Returns nil if the context is canceled first.
func (m *Manager) acquireProduct(ctx context.Context, productID string) func() {
	for {
		m.mu.Lock()
		ch, busy := m.inFlight[productID]
		if !busy {
			done := make(chan struct{})
			m.inFlight[productID] = done
			m.mu.Unlock()
			return func() {
				m.mu.Lock()
				delete(m.inFlight, productID)
				m.mu.Unlock()
				close(done)
			}
		}
		m.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil
		}
	}
}
