// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package events

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/stridefit/stridefit/internal/cache"
	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/extract"
	"github.com/stridefit/stridefit/internal/logging"
)

const defaultDedupWindow = 5 * time.Minute

// Extractor regenerates one product's fit profile.
type Extractor interface {
	ExtractProduct(ctx context.Context, productID string) (extract.Outcome, error)
}

// FitCacheInvalidator drops a product's cached fit profile after the
// extractor rewrites the stored one. Nil-safe at the call site.
type FitCacheInvalidator interface {
	InvalidateFitProfile(productID string)
}

// Consumer drains extraction triggers and runs the extractor. Repeat
// triggers for the same product inside the dedup window coalesce into a
// single trailing run, so back-to-back ingest jobs cost one LLM call
// but the last trigger's reviews are never left unextracted.
type Consumer struct {
	bus         *Bus
	extractor   Extractor
	invalidator FitCacheInvalidator
	dedup       *cache.Deduper
	window      time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewConsumer wires the consumer to the bus and extractor. invalidator
// may be nil when no serving cache exists.
func NewConsumer(cfg *config.EventsConfig, bus *Bus, extractor Extractor, invalidator FitCacheInvalidator) *Consumer {
	window := cfg.TriggerDedupWindow
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Consumer{
		bus:         bus,
		extractor:   extractor,
		invalidator: invalidator,
		dedup:       cache.NewDeduper(4096, window),
		window:      window,
		pending:     make(map[string]*time.Timer),
	}
}

// Serve consumes triggers until the context is cancelled. Runs under
// the supervision tree.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	defer c.stopPending()

	logging.Info().Msg("Extraction trigger consumer starting")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) String() string {
	return "trigger-consumer"
}

// handle processes one trigger. Triggers are fire-and-forget, so every
// message is acked: a failed extraction is logged and retried on the
// next trigger, not redelivered.
func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var trigger ExtractionTrigger
	if err := json.Unmarshal(msg.Payload, &trigger); err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed extraction trigger")
		return
	}
	if trigger.ProductID == "" {
		logging.Warn().Str("message_id", msg.UUID).Msg("Dropping extraction trigger without product")
		return
	}

	log := logging.Ctx(ctx).With().Str("product_id", trigger.ProductID).Logger()

	if c.dedup.IsDuplicate(trigger.ProductID) {
		c.coalesce(ctx, trigger.ProductID)
		log.Debug().Msg("Coalescing duplicate extraction trigger")
		return
	}

	c.extract(ctx, trigger.ProductID)
}

// coalesce folds a duplicate trigger into one trailing run per product:
// the first duplicate inside the window arms a timer, later ones are
// absorbed by it. The trailing run picks up whatever reviews landed
// after the leading extraction started.
func (c *Consumer) coalesce(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, armed := c.pending[productID]; armed {
		return
	}
	c.pending[productID] = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		delete(c.pending, productID)
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		// Re-arm the dedup window so triggers racing the trailing run
		// coalesce again instead of running back to back.
		c.dedup.IsDuplicate(productID)
		c.extract(ctx, productID)
	})
}

// stopPending cancels armed trailing runs on shutdown.
func (c *Consumer) stopPending() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, timer := range c.pending {
		timer.Stop()
		delete(c.pending, id)
	}
}

func (c *Consumer) extract(ctx context.Context, productID string) {
	log := logging.Ctx(ctx).With().Str("product_id", productID).Logger()

	outcome, err := c.extractor.ExtractProduct(ctx, productID)
	if err != nil {
		// Forget the key so the next trigger retries immediately.
		c.dedup.Forget(productID)
		log.Error().Err(err).Msg("Extraction failed")
		return
	}
	if c.invalidator != nil && (outcome == extract.OutcomeUpdated || outcome == extract.OutcomeRejected) {
		c.invalidator.InvalidateFitProfile(productID)
	}
	log.Info().Str("outcome", string(outcome)).Msg("Extraction trigger handled")
}
