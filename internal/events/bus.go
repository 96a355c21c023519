// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/stridefit/stridefit/internal/logging"
)

// TopicExtractionTriggers is the bus topic for extraction triggers.
const TopicExtractionTriggers = "extraction.triggers"

// ExtractionTrigger asks the extractor to regenerate one product's fit
// profile.
type ExtractionTrigger struct {
	ProductID   string    `json:"product_id"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Bus is the in-process trigger bus. Publishers and subscribers share
// one GoChannel pub/sub, so messages never leave the process.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the trigger bus.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, newWatermillLogger()),
	}
}

// PublishExtractionTrigger emits a trigger for the product. Satisfies
// the ingest manager's publisher contract.
func (b *Bus) PublishExtractionTrigger(ctx context.Context, productID string) error {
	trigger := ExtractionTrigger{
		ProductID:   productID,
		TriggeredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction trigger: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(TopicExtractionTriggers, msg); err != nil {
		return fmt.Errorf("failed to publish extraction trigger: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("product_id", productID).Msg("Extraction trigger published")
	return nil
}

// Subscribe returns the trigger message stream for the consumer.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicExtractionTriggers)
}

// Close shuts the bus down. Pending messages are dropped.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// watermillLogger bridges Watermill's logging into zerolog.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.event(logging.Error().Err(err), fields).Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.event(logging.Debug(), fields).Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.event(logging.Debug(), fields).Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.event(logging.Debug(), fields).Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}

func (l *watermillLogger) event(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range l.fields {
		ev = ev.Interface(k, v)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}
