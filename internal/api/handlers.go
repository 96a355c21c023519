// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stridefit/stridefit/internal/cache"
	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/ingest"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
	"github.com/stridefit/stridefit/internal/quiz"
	"github.com/stridefit/stridefit/internal/scoring"
	"github.com/stridefit/stridefit/internal/validation"
)

// Store is the persistence surface the handlers need.
type Store interface {
	ListProducts(ctx context.Context, category models.Category, includeDiscontinued bool) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListFitProfilesByIDs(ctx context.Context, productIDs []string) (map[string]*models.FitProfile, error)
	GetFitProfile(ctx context.Context, productID string) (*models.FitProfile, error)
	UpsertFitProfile(ctx context.Context, fp *models.FitProfile) error
	InsertMatchResult(ctx context.Context, mr *models.MatchResult) error
	ListMatchResults(ctx context.Context, status models.ReviewStatus, limit, offset int) ([]*models.MatchResult, error)
	ListWeightVectors(ctx context.Context) ([]*models.WeightVector, error)
	Ping(ctx context.Context) error
}

// Ingester triggers and reports review ingestion jobs.
type Ingester interface {
	TriggerIngestion(ctx context.Context, productID string) (string, error)
	TriggerCategory(ctx context.Context, category models.Category) ([]string, error)
	JobStatus(jobID string) (ingest.Job, bool)
}

// Reviewer records admin decisions and user signals.
type Reviewer interface {
	RecordDecision(ctx context.Context, matchResultID string, decision models.Decision, replacement []string, notes string) (*models.TrainingExample, error)
	RecordSignal(ctx context.Context, matchResultID string, kind models.SignalKind) error
}

// WeightManager rolls the active weight vector back to a prior version.
type WeightManager interface {
	Rollback(ctx context.Context, version int) (*models.WeightVector, error)
}

// WeightSource yields the vector the serving path scores with.
type WeightSource interface {
	Active() *models.WeightVector
}

// Handler carries the dependencies behind the HTTP surface.
type Handler struct {
	store    Store
	engine   *scoring.Engine
	weights  WeightSource
	ingester Ingester
	reviewer Reviewer
	manager  WeightManager

	fitCache *cache.LRU[*models.FitProfile]
}

// NewHandler wires the handler set.
func NewHandler(cfg *config.CacheConfig, store Store, engine *scoring.Engine, weights WeightSource, ingester Ingester, reviewer Reviewer, manager WeightManager) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		weights:  weights,
		ingester: ingester,
		reviewer: reviewer,
		manager:  manager,
		fitCache: cache.NewLRU[*models.FitProfile](cfg.FitProfileSize, cfg.FitProfileTTL),
	}
}

// InvalidateFitProfile drops a product's cached fit profile so the next
// recommendation request reads the fresh row. Called after any write to
// the profile: admin pinning here, extraction refreshes via the trigger
// consumer.
func (h *Handler) InvalidateFitProfile(productID string) {
	h.fitCache.Remove(productID)
}

// Recommendations scores the catalog for a profile and persists the
// result for later review. Accepts raw quiz answers or a typed profile.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req recommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var profile *models.UserProfile
	switch {
	case req.Answers != nil && req.Profile != nil:
		rw.BadRequest("provide answers or a profile, not both")
		return
	case req.Answers != nil:
		built, err := quiz.Build(req.Answers)
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		profile = built
	case req.Profile != nil:
		if err := req.Profile.Validate(); err != nil {
			rw.BadRequest(err.Error())
			return
		}
		profile = req.Profile
	default:
		rw.BadRequest("provide answers or a profile")
		return
	}

	products, err := h.store.ListProducts(r.Context(), profile.Category, false)
	if err != nil {
		rw.InternalError(err, "failed to load catalog")
		return
	}
	if len(products) == 0 {
		rw.NotFound("no active products in category")
		return
	}

	candidates, err := h.loadCandidates(r.Context(), products)
	if err != nil {
		rw.InternalError(err, "failed to load fit profiles")
		return
	}

	start := time.Now()
	result, err := h.engine.Score(profile, candidates, h.weights.Active())
	if err != nil {
		rw.InternalError(err, "scoring failed")
		return
	}
	metrics.RecordScoring(string(profile.Category), len(candidates), time.Since(start))

	if err := h.store.InsertMatchResult(r.Context(), result); err != nil {
		rw.InternalError(err, "failed to store match result")
		return
	}

	rw.Created(result)
}

// loadCandidates pairs products with fit profiles, serving repeat reads
// from the LRU.
func (h *Handler) loadCandidates(ctx context.Context, products []*models.Product) ([]scoring.Candidate, error) {
	candidates := make([]scoring.Candidate, 0, len(products))
	var missing []string
	byID := make(map[string]*models.Product, len(products))

	for _, p := range products {
		byID[p.ID] = p
		if fp, ok := h.fitCache.Get(p.ID); ok {
			metrics.CacheHits.WithLabelValues("fit_profiles").Inc()
			candidates = append(candidates, scoring.Candidate{Product: p, Fit: fp})
			continue
		}
		metrics.CacheMisses.WithLabelValues("fit_profiles").Inc()
		missing = append(missing, p.ID)
	}

	if len(missing) > 0 {
		profiles, err := h.store.ListFitProfilesByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, id := range missing {
			fp := profiles[id]
			if fp != nil {
				h.fitCache.Add(id, fp)
			}
			candidates = append(candidates, scoring.Candidate{Product: byID[id], Fit: fp})
		}
	}
	return candidates, nil
}

// Signal records one user interaction with a match result.
func (h *Handler) Signal(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	matchResultID := chi.URLParam(r, "matchResultID")

	var req signalRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.ToAPIError())
		return
	}

	err := h.reviewer.RecordSignal(r.Context(), matchResultID, models.SignalKind(req.Signal))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rw.NotFound("match result not found")
	case err != nil:
		rw.InternalError(err, "failed to record signal")
	default:
		rw.Success(map[string]string{"match_result_id": matchResultID, "signal": req.Signal})
	}
}

// AdminMatchResults lists match results for the review queue.
func (h *Handler) AdminMatchResults(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	status := models.ReviewStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		rw.BadRequest("unknown status " + string(status))
		return
	}
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	results, err := h.store.ListMatchResults(r.Context(), status, limit, offset)
	if err != nil {
		rw.InternalError(err, "failed to list match results")
		return
	}
	rw.Success(results)
}

// AdminReview applies an admin decision to a match result.
func (h *Handler) AdminReview(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	matchResultID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.ToAPIError())
		return
	}

	example, err := h.reviewer.RecordDecision(r.Context(), matchResultID, models.Decision(req.Decision), req.Ranking, req.Notes)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rw.NotFound("match result not found")
	case err != nil:
		rw.BadRequest(err.Error())
	default:
		rw.Created(example)
	}
}

// AdminIngest triggers review ingestion for a product or a category.
func (h *Handler) AdminIngest(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	switch {
	case req.ProductID != "" && req.Category != "":
		rw.BadRequest("provide product_id or category, not both")
	case req.ProductID != "":
		jobID, err := h.ingester.TriggerIngestion(r.Context(), req.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			rw.NotFound("product not found")
			return
		}
		if err != nil {
			rw.InternalError(err, "failed to trigger ingestion")
			return
		}
		rw.Accepted(map[string]any{"job_ids": []string{jobID}})
	case req.Category != "":
		jobIDs, err := h.ingester.TriggerCategory(r.Context(), models.Category(req.Category))
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		rw.Accepted(map[string]any{"job_ids": jobIDs})
	default:
		rw.BadRequest("provide product_id or category")
	}
}

// AdminJobStatus reports one ingestion job.
func (h *Handler) AdminJobStatus(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	job, ok := h.ingester.JobStatus(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("job not found")
		return
	}
	rw.Success(job)
}

// AdminFitProfileOverride pins admin-edited fields on a fit profile.
// Pinned fields survive future extractions verbatim.
func (h *Handler) AdminFitProfileOverride(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)
	productID := chi.URLParam(r, "productID")

	var req fitProfileOverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.ToAPIError())
		return
	}

	if _, err := h.store.GetProduct(r.Context(), productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			rw.NotFound("product not found")
			return
		}
		rw.InternalError(err, "failed to load product")
		return
	}

	current, err := h.store.GetFitProfile(r.Context(), productID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		rw.InternalError(err, "failed to load fit profile")
		return
	}
	if current == nil {
		current = models.EmptyFitProfile(productID)
	}

	applyOverrides(current, &req.Profile, req.Overrides)
	current.UpdatedAt = time.Now().UTC()

	if err := h.store.UpsertFitProfile(r.Context(), current); err != nil {
		rw.InternalError(err, "failed to store fit profile")
		return
	}
	h.InvalidateFitProfile(productID)

	logging.Ctx(r.Context()).Info().
		Str("product_id", productID).
		Strs("overrides", req.Overrides).
		Msg("Fit profile fields pinned")
	rw.Success(current)
}

// AdminWeights lists the weight vector history with the active marker.
func (h *Handler) AdminWeights(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	vectors, err := h.store.ListWeightVectors(r.Context())
	if err != nil {
		rw.InternalError(err, "failed to list weight vectors")
		return
	}
	rw.Success(vectors)
}

// AdminWeightsRollback restores a historical weight vector.
func (h *Handler) AdminWeightsRollback(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req rollbackRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.ToAPIError())
		return
	}

	restored, err := h.manager.Rollback(r.Context(), req.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			rw.NotFound("weight version not found")
			return
		}
		rw.InternalError(err, "rollback failed")
		return
	}
	rw.Success(restored)
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	if err := h.store.Ping(r.Context()); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ok"})
}

// applyOverrides copies the named fields from src onto dst and records
// them as pinned.
func applyOverrides(dst, src *models.FitProfile, fields []string) {
	pinned := make(map[string]bool, len(dst.ManualOverrides))
	for _, f := range dst.ManualOverrides {
		pinned[f] = true
	}

	for _, field := range fields {
		switch field {
		case "sizing":
			dst.Sizing = src.Sizing
		case "width":
			dst.Width = src.Width
		case "toe_box":
			dst.ToeBox = src.ToeBox
		case "arch_support":
			dst.ArchSupport = src.ArchSupport
		case "durability":
			dst.Durability = src.Durability
		case "expected_mileage":
			dst.ExpectedMileageMin = src.ExpectedMileageMin
			dst.ExpectedMileageMax = src.ExpectedMileageMax
		case "pros":
			dst.Pros = src.Pros
		case "cons":
			dst.Cons = src.Cons
		case "works_well_for":
			dst.WorksWellFor = src.WorksWellFor
		case "avoid_if":
			dst.AvoidIf = src.AvoidIf
		case "notable_quotes":
			dst.NotableQuotes = src.NotableQuotes
		case "sentiment":
			dst.Sentiment = src.Sentiment
		}
		if !pinned[field] {
			dst.ManualOverrides = append(dst.ManualOverrides, field)
			pinned[field] = true
		}
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
