// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package optimizer

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
	"github.com/stridefit/stridefit/internal/scoring"
)

const (
	defaultInterval        = 6 * time.Hour
	defaultMinExamples     = 20
	defaultHoldoutFraction = 0.2
	defaultLearningRate    = 0.1
	defaultNDCGDepth       = 5
	maxBatchSize           = 1000
)

// Outcome classifies one optimization run.
type Outcome string

const (
	// OutcomePromoted means a new weight vector version went live.
	OutcomePromoted Outcome = "promoted"
	// OutcomeHeld means the proposal failed the hold-out guard and the
	// active vector stays.
	OutcomeHeld Outcome = "held"
	// OutcomeSkipped means too few unconsumed examples, or a run was
	// already in flight.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeError means the run failed before reaching a verdict.
	OutcomeError Outcome = "error"
)

// Store is the persistence surface the optimizer needs.
type Store interface {
	CountUnconsumedExamples(ctx context.Context) (int, error)
	ListUnconsumedExamples(ctx context.Context, limit int) ([]*models.TrainingExample, error)
	MarkExamplesConsumed(ctx context.Context, ids []string) error
	GetActiveWeights(ctx context.Context) (*models.WeightVector, error)
	GetWeights(ctx context.Context, version int) (*models.WeightVector, error)
	InsertWeightVector(ctx context.Context, wv *models.WeightVector) (int, error)
	ListProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
	ListFitProfilesByIDs(ctx context.Context, productIDs []string) (map[string]*models.FitProfile, error)
}

// WeightSink receives the new active vector after a promotion or
// rollback, so the serving path never reads the database per request.
type WeightSink interface {
	SetActive(wv *models.WeightVector)
}

// Optimizer runs batch weight optimization. At most one run is active
// at a time; overlapping triggers are skipped, not queued.
type Optimizer struct {
	cfg    *config.OptimizerConfig
	store  Store
	engine *scoring.Engine
	sink   WeightSink

	mu sync.Mutex
}

// New creates an optimizer.
func New(cfg *config.OptimizerConfig, store Store, engine *scoring.Engine, sink WeightSink) *Optimizer {
	return &Optimizer{
		cfg:    cfg,
		store:  store,
		engine: engine,
		sink:   sink,
	}
}

// Serve runs scheduled optimization until the context is cancelled.
// Runs under the supervision tree.
func (o *Optimizer) Serve(ctx context.Context) error {
	interval := o.cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	logging.Info().Dur("interval", interval).Msg("Weight optimizer starting")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			outcome, err := o.Run(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Optimization run failed")
			}
			metrics.OptimizerRuns.WithLabelValues(string(outcome)).Inc()
		}
	}
}

func (o *Optimizer) String() string {
	return "weight-optimizer"
}

// Run executes one optimization attempt. Safe to call concurrently;
// only one attempt proceeds and the rest report OutcomeSkipped.
func (o *Optimizer) Run(ctx context.Context) (Outcome, error) {
	if !o.mu.TryLock() {
		return OutcomeSkipped, nil
	}
	defer o.mu.Unlock()

	minExamples := o.cfg.MinExamples
	if minExamples <= 0 {
		minExamples = defaultMinExamples
	}

	count, err := o.store.CountUnconsumedExamples(ctx)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to count training examples: %w", err)
	}
	if count < minExamples {
		logging.Debug().Int("unconsumed", count).Int("min_examples", minExamples).
			Msg("Skipping optimization, batch too small")
		return OutcomeSkipped, nil
	}

	examples, err := o.store.ListUnconsumedExamples(ctx, maxBatchSize)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to load training examples: %w", err)
	}

	active, err := o.store.GetActiveWeights(ctx)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to load active weights: %w", err)
	}

	train, holdout := splitExamples(examples, o.holdoutFraction())
	if len(holdout) == 0 {
		// Tiny batches leave nothing to guard with; evaluate on the
		// training split rather than promoting blind.
		holdout = train
	}

	scores, err := o.captureFactorScores(ctx, train, active)
	if err != nil {
		return OutcomeError, err
	}

	learningRate := o.cfg.LearningRate
	if learningRate <= 0 {
		learningRate = defaultLearningRate
	}
	proposed := proposeWeights(active, train, scores, learningRate)

	activeScore, err := o.evaluate(ctx, active, holdout)
	if err != nil {
		return OutcomeError, err
	}
	proposedScore, err := o.evaluate(ctx, proposed, holdout)
	if err != nil {
		return OutcomeError, err
	}

	log := logging.Ctx(ctx).With().
		Int("examples", len(examples)).
		Int("holdout", len(holdout)).
		Float64("active_ndcg", activeScore).
		Float64("proposed_ndcg", proposedScore).
		Logger()

	if proposedScore < activeScore-o.cfg.Tolerance {
		log.Warn().Msg("Proposal failed hold-out guard, keeping active weights")
		if err := o.consumeExamples(ctx, examples); err != nil {
			return OutcomeError, err
		}
		return OutcomeHeld, nil
	}

	proposed.Active = true
	proposed.Source = models.WeightSourceOptimizer
	proposed.ParentVersion = active.Version
	proposed.HoldoutNDCG = proposedScore

	version, err := o.store.InsertWeightVector(ctx, proposed)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to store weight vector: %w", err)
	}
	if err := o.consumeExamples(ctx, examples); err != nil {
		return OutcomeError, err
	}

	o.sink.SetActive(proposed)
	metrics.OptimizerHoldoutNDCG.Set(proposedScore)
	metrics.ActiveWeightVersion.Set(float64(version))

	log.Info().Int("version", version).Msg("Weight vector promoted")
	return OutcomePromoted, nil
}

// Rollback reactivates a historical vector by storing a copy of it as a
// new version, so the version history stays append-only.
func (o *Optimizer) Rollback(ctx context.Context, version int) (*models.WeightVector, error) {
	target, err := o.store.GetWeights(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight version %d: %w", version, err)
	}

	restored := target.Clone()
	restored.Active = true
	restored.Source = models.WeightSourceRollback
	restored.ParentVersion = target.Version
	restored.HoldoutNDCG = target.HoldoutNDCG

	newVersion, err := o.store.InsertWeightVector(ctx, restored)
	if err != nil {
		return nil, fmt.Errorf("failed to store rollback vector: %w", err)
	}

	o.sink.SetActive(restored)
	metrics.ActiveWeightVersion.Set(float64(newVersion))

	logging.Ctx(ctx).Info().Int("version", newVersion).Int("restored_from", version).
		Msg("Weight vector rolled back")
	return restored, nil
}

func (o *Optimizer) holdoutFraction() float64 {
	f := o.cfg.HoldoutFraction
	if f <= 0 || f >= 1 {
		f = defaultHoldoutFraction
	}
	return f
}

func (o *Optimizer) consumeExamples(ctx context.Context, examples []*models.TrainingExample) error {
	ids := make([]string, len(examples))
	for i, ex := range examples {
		ids[i] = ex.ID
	}
	if err := o.store.MarkExamplesConsumed(ctx, ids); err != nil {
		return fmt.Errorf("failed to mark examples consumed: %w", err)
	}
	return nil
}

// splitExamples partitions by a hash of the example ID, so the same
// example always lands on the same side regardless of batch order.
func splitExamples(examples []*models.TrainingExample, holdoutFraction float64) (train, holdout []*models.TrainingExample) {
	threshold := uint32(holdoutFraction * 100)
	for _, ex := range examples {
		h := fnv.New32a()
		h.Write([]byte(ex.ID))
		if h.Sum32()%100 < threshold {
			holdout = append(holdout, ex)
		} else {
			train = append(train, ex)
		}
	}
	return train, holdout
}

// captureFactorScores re-scores each adjusted example under the given
// weights to learn which factors drove each product's placement.
func (o *Optimizer) captureFactorScores(ctx context.Context, examples []*models.TrainingExample, weights *models.WeightVector) (map[string]factorScores, error) {
	scores := make(map[string]factorScores, len(examples))
	for _, ex := range examples {
		if ex.Decision != models.DecisionAdjusted {
			continue
		}
		mr, err := o.rescore(ctx, ex, weights)
		if err != nil {
			return nil, err
		}
		exScores := make(factorScores, len(mr.Entries))
		for _, entry := range mr.Entries {
			exScores[entry.ProductID] = entry.Factors
		}
		scores[ex.ID] = exScores
	}
	return scores, nil
}

// evaluate computes the confidence-weighted mean ranking quality of the
// weights over the examples. Positive examples count NDCG against the
// ideal ranking; negative examples count the complement, rewarding
// weights that rank away from rejected orderings.
func (o *Optimizer) evaluate(ctx context.Context, weights *models.WeightVector, examples []*models.TrainingExample) (float64, error) {
	depth := o.cfg.NDCGDepth
	if depth <= 0 {
		depth = defaultNDCGDepth
	}

	sum := 0.0
	weightSum := 0.0
	for _, ex := range examples {
		mr, err := o.rescore(ctx, ex, weights)
		if err != nil {
			return 0, err
		}

		score := ndcgAt(mr.ProductIDs(), ex.IdealRanking, depth)
		if ex.Label == models.LabelNegative {
			score = 1 - score
		}
		sum += score * ex.Confidence
		weightSum += ex.Confidence
	}
	if weightSum == 0 {
		return 0, nil
	}
	return sum / weightSum, nil
}

// rescore replays one example's profile against its original candidate
// set under the given weights.
func (o *Optimizer) rescore(ctx context.Context, ex *models.TrainingExample, weights *models.WeightVector) (*models.MatchResult, error) {
	products, err := o.store.ListProductsByIDs(ctx, ex.SystemRanking)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for example %s: %w", ex.ID, err)
	}
	profiles, err := o.store.ListFitProfilesByIDs(ctx, ex.SystemRanking)
	if err != nil {
		return nil, fmt.Errorf("failed to load fit profiles for example %s: %w", ex.ID, err)
	}

	candidates := make([]scoring.Candidate, len(products))
	for i, p := range products {
		candidates[i] = scoring.Candidate{Product: p, Fit: profiles[p.ID]}
	}

	profile := ex.Profile
	mr, err := o.engine.Score(&profile, candidates, weights)
	if err != nil {
		return nil, fmt.Errorf("failed to rescore example %s: %w", ex.ID, err)
	}
	return mr, nil
}
