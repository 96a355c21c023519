// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package api

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/ingest"
	"github.com/stridefit/stridefit/internal/models"
	"github.com/stridefit/stridefit/internal/scoring"
)

type fakeAPIStore struct {
	products     []*models.Product
	profiles     map[string]*models.FitProfile
	matchResults []*models.MatchResult
	vectors      []*models.WeightVector
	pingErr      error
	upserted     *models.FitProfile
}

func (s *fakeAPIStore) ListProducts(_ context.Context, category models.Category, includeDiscontinued bool) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range s.products {
		if p.Category != category {
			continue
		}
		if p.Discontinued && !includeDiscontinued {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeAPIStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *fakeAPIStore) ListFitProfilesByIDs(_ context.Context, ids []string) (map[string]*models.FitProfile, error) {
	out := make(map[string]*models.FitProfile)
	for _, id := range ids {
		if fp, ok := s.profiles[id]; ok {
			out[id] = fp
		}
	}
	return out, nil
}

func (s *fakeAPIStore) GetFitProfile(_ context.Context, productID string) (*models.FitProfile, error) {
	fp, ok := s.profiles[productID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return fp, nil
}

func (s *fakeAPIStore) UpsertFitProfile(_ context.Context, fp *models.FitProfile) error {
	if s.profiles == nil {
		s.profiles = make(map[string]*models.FitProfile)
	}
	s.profiles[fp.ProductID] = fp
	s.upserted = fp
	return nil
}

func (s *fakeAPIStore) InsertMatchResult(_ context.Context, mr *models.MatchResult) error {
	s.matchResults = append(s.matchResults, mr)
	return nil
}

func (s *fakeAPIStore) ListMatchResults(_ context.Context, status models.ReviewStatus, _, _ int) ([]*models.MatchResult, error) {
	var out []*models.MatchResult
	for _, mr := range s.matchResults {
		if status == "" || mr.ReviewStatus == status {
			out = append(out, mr)
		}
	}
	return out, nil
}

func (s *fakeAPIStore) ListWeightVectors(_ context.Context) ([]*models.WeightVector, error) {
	return s.vectors, nil
}

func (s *fakeAPIStore) Ping(_ context.Context) error {
	return s.pingErr
}

type fakeIngester struct {
	jobs       map[string]ingest.Job
	productErr error
}

func (f *fakeIngester) TriggerIngestion(_ context.Context, productID string) (string, error) {
	if f.productErr != nil {
		return "", f.productErr
	}
	return "job-" + productID, nil
}

func (f *fakeIngester) TriggerCategory(_ context.Context, category models.Category) ([]string, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return []string{"job-1", "job-2"}, nil
}

func (f *fakeIngester) JobStatus(jobID string) (ingest.Job, bool) {
	job, ok := f.jobs[jobID]
	return job, ok
}

type fakeReviewer struct {
	decisionErr error
	signalErr   error
	decisions   []models.Decision
	signals     []models.SignalKind
}

func (f *fakeReviewer) RecordDecision(_ context.Context, matchResultID string, decision models.Decision, replacement []string, notes string) (*models.TrainingExample, error) {
	if f.decisionErr != nil {
		return nil, f.decisionErr
	}
	f.decisions = append(f.decisions, decision)
	return &models.TrainingExample{ID: "ex-1", MatchResultID: matchResultID, Decision: decision}, nil
}

func (f *fakeReviewer) RecordSignal(_ context.Context, _ string, kind models.SignalKind) error {
	if f.signalErr != nil {
		return f.signalErr
	}
	f.signals = append(f.signals, kind)
	return nil
}

type fakeWeightManager struct {
	err error
}

func (f *fakeWeightManager) Rollback(_ context.Context, version int) (*models.WeightVector, error) {
	if f.err != nil {
		return nil, f.err
	}
	wv := models.DefaultWeights()
	wv.Version = version
	wv.Source = models.WeightSourceRollback
	return wv, nil
}

type staticWeights struct{}

func (staticWeights) Active() *models.WeightVector { return models.DefaultWeights() }

func runningCatalog() []*models.Product {
	var out []*models.Product
	for i, id := range []string{"ghost-16", "clifton-9", "pegasus-41"} {
		out = append(out, &models.Product{
			ID:       id,
			Brand:    "Test",
			Model:    id,
			Category: models.CategoryRunning,
			Terrain:  models.TerrainRoad,
			Support:  models.SupportNeutral,
			Cushion:  models.CushionBalanced,
			PriceUSD: 110 + float64(i*10),
			Distances: []models.Distance{
				models.Distance5K, models.Distance10K,
			},
		})
	}
	return out
}

type testEnv struct {
	store    *fakeAPIStore
	ingester *fakeIngester
	reviewer *fakeReviewer
	manager  *fakeWeightManager
	handler  *Handler
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &fakeAPIStore{
		products: runningCatalog(),
		profiles: map[string]*models.FitProfile{
			"ghost-16": {ProductID: "ghost-16", Sentiment: 0.8, ReviewCount: 12},
		},
		vectors: []*models.WeightVector{models.DefaultWeights()},
	}
	ingester := &fakeIngester{jobs: map[string]ingest.Job{}}
	reviewer := &fakeReviewer{}
	manager := &fakeWeightManager{}

	engine, err := scoring.NewEngine(scoring.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	handler := NewHandler(
		&config.CacheConfig{FitProfileSize: 64, FitProfileTTL: time.Minute},
		store, engine, staticWeights{}, ingester, reviewer, manager,
	)
	router := NewRouter(&config.ServerConfig{
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}, handler)

	return &testEnv{store: store, ingester: ingester, reviewer: reviewer, manager: manager, handler: handler, router: router}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var resp APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestRecommendationsFromQuizAnswers(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/recommendations", map[string]any{
		"answers": map[string]any{
			"category":      "running",
			"terrain":       "road",
			"distance_band": "mid",
			"budget":        "100_150",
		},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Fatal("Success = false")
	}
	if len(env.store.matchResults) != 1 {
		t.Fatalf("stored %d match results, want 1", len(env.store.matchResults))
	}
	mr := env.store.matchResults[0]
	if err := mr.ValidateRanking(); err != nil {
		t.Errorf("ranking invariants violated: %v", err)
	}
	if mr.ReviewStatus != models.StatusPending {
		t.Errorf("ReviewStatus = %q, want pending", mr.ReviewStatus)
	}
}

func TestRecommendationsFromTypedProfile(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/recommendations", map[string]any{
		"profile": map[string]any{
			"category":   "running",
			"terrain":    "road",
			"foot_width": "standard",
			"arch_type":  "neutral",
			"pronation":  "neutral",
			"budget":     "100_150",
			"distances":  []string{"10k"},
		},
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestInvalidateFitProfileServesFreshRow(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"profile": map[string]any{
			"category":   "running",
			"terrain":    "road",
			"foot_width": "standard",
			"arch_type":  "neutral",
			"pronation":  "neutral",
			"budget":     "100_150",
		},
	}

	// First request primes the cache with the stored profile.
	if rec, _ := env.do(t, http.MethodPost, "/api/v1/recommendations", body); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !env.handler.fitCache.Contains("ghost-16") {
		t.Fatal("fit profile not cached after recommendation request")
	}

	// An extraction rewrites the row; without invalidation the serving
	// path would keep scoring the stale snapshot until the TTL lapses.
	env.store.profiles["ghost-16"] = &models.FitProfile{ProductID: "ghost-16", Sentiment: 0.2, ReviewCount: 30}
	env.handler.InvalidateFitProfile("ghost-16")
	if env.handler.fitCache.Contains("ghost-16") {
		t.Fatal("fit profile still cached after invalidation")
	}

	if rec, _ := env.do(t, http.MethodPost, "/api/v1/recommendations", body); rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	fp, ok := env.handler.fitCache.Get("ghost-16")
	if !ok {
		t.Fatal("fit profile not re-cached after invalidation")
	}
	if fp.Sentiment != 0.2 {
		t.Errorf("cached Sentiment = %v, want fresh 0.2", fp.Sentiment)
	}
}

func TestRecommendationsRequiresExactlyOneInput(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/recommendations", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty input status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/recommendations", map[string]any{
		"answers": map[string]any{"category": "running", "budget": "100_150"},
		"profile": map[string]any{"category": "running"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("both inputs status = %d, want 400", rec.Code)
	}
}

func TestSignalEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/feedback/mr-1", map[string]any{"signal": "click"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(env.reviewer.signals) != 1 || env.reviewer.signals[0] != models.SignalClick {
		t.Errorf("signals = %v, want [click]", env.reviewer.signals)
	}

	rec, resp := env.do(t, http.MethodPost, "/api/v1/feedback/mr-1", map[string]any{"signal": "meh"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid signal status = %d, want 400", rec.Code)
	}
	if resp.Error == nil {
		t.Error("invalid signal response missing error details")
	}

	env.reviewer.signalErr = sql.ErrNoRows
	rec, _ = env.do(t, http.MethodPost, "/api/v1/feedback/missing", map[string]any{"signal": "click"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown result status = %d, want 404", rec.Code)
	}
}

func TestAdminReview(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/v1/admin/match-results/mr-1/review", map[string]any{
		"decision": "approved",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Error("Success = false")
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/match-results/mr-1/review", map[string]any{
		"decision": "maybe",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid decision status = %d, want 400", rec.Code)
	}

	env.reviewer.decisionErr = sql.ErrNoRows
	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/match-results/zzz/review", map[string]any{
		"decision": "approved",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown result status = %d, want 404", rec.Code)
	}
}

func TestAdminMatchResultsStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	env.store.matchResults = []*models.MatchResult{
		{ID: "a", ReviewStatus: models.StatusPending},
		{ID: "b", ReviewStatus: models.StatusApproved},
	}

	rec, resp := env.do(t, http.MethodGet, "/api/v1/admin/match-results?status=pending", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	raw, _ := json.Marshal(resp.Data)
	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Errorf("results = %v, want only pending", results)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/admin/match-results?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status = %d, want 400", rec.Code)
	}
}

func TestAdminIngest(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/admin/ingest", map[string]any{"product_id": "ghost-16"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/ingest", map[string]any{"category": "running"})
	if rec.Code != http.StatusAccepted {
		t.Errorf("category status = %d, want 202", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/ingest", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty target status = %d, want 400", rec.Code)
	}

	env.ingester.productErr = sql.ErrNoRows
	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/ingest", map[string]any{"product_id": "nope"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", rec.Code)
	}
}

func TestAdminJobStatus(t *testing.T) {
	env := newTestEnv(t)
	env.ingester.jobs["job-1"] = ingest.Job{ID: "job-1", ProductID: "ghost-16", State: ingest.JobCompleted}

	rec, _ := env.do(t, http.MethodGet, "/api/v1/admin/jobs/job-1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/admin/jobs/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", rec.Code)
	}
}

func TestAdminFitProfileOverride(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodPut, "/api/v1/admin/fit-profiles/ghost-16", map[string]any{
		"profile": map[string]any{
			"product_id": "ghost-16",
			"sizing":     "size_up_half",
			"toe_box":    "roomy",
		},
		"overrides": []string{"sizing", "toe_box"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	fp := env.store.upserted
	if fp.Sizing != models.SizingUpHalf {
		t.Errorf("Sizing = %q, want size_up_half", fp.Sizing)
	}
	if fp.ToeBox != models.ToeBoxRoomy {
		t.Errorf("ToeBox = %q, want roomy", fp.ToeBox)
	}
	if len(fp.ManualOverrides) != 2 {
		t.Errorf("ManualOverrides = %v, want 2 pinned fields", fp.ManualOverrides)
	}
	// The unpinned sentiment from the prior profile survives.
	if fp.Sentiment != 0.8 {
		t.Errorf("Sentiment = %v, want prior 0.8", fp.Sentiment)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/v1/admin/fit-profiles/ghost-16", map[string]any{
		"profile":   map[string]any{"product_id": "ghost-16"},
		"overrides": []string{"nonexistent_field"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid override field status = %d, want 400", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPut, "/api/v1/admin/fit-profiles/unknown", map[string]any{
		"profile":   map[string]any{"product_id": "unknown"},
		"overrides": []string{"sizing"},
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", rec.Code)
	}
}

func TestAdminWeightsAndRollback(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/v1/admin/weights", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("weights status = %d, want 200", rec.Code)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/weights/rollback", map[string]any{"version": 1})
	if rec.Code != http.StatusOK {
		t.Errorf("rollback status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/weights/rollback", map[string]any{"version": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("version 0 status = %d, want 400", rec.Code)
	}

	env.manager.err = sql.ErrNoRows
	rec, _ = env.do(t, http.MethodPost, "/api/v1/admin/weights/rollback", map[string]any{"version": 99})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown version status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	env.store.pingErr = fmt.Errorf("database closed")
	rec, _ = env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}
