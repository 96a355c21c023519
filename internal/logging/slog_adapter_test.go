// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFn    func(*slog.Logger)
		contains string
	}{
		{
			name:     "debug",
			logFn:    func(l *slog.Logger) { l.Debug("debug msg") },
			contains: `"level":"debug"`,
		},
		{
			name:     "info",
			logFn:    func(l *slog.Logger) { l.Info("info msg") },
			contains: `"level":"info"`,
		},
		{
			name:     "warn",
			logFn:    func(l *slog.Logger) { l.Warn("warn msg") },
			contains: `"level":"warn"`,
		},
		{
			name:     "error",
			logFn:    func(l *slog.Logger) { l.Error("error msg") },
			contains: `"level":"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			zl := zerolog.New(&buf).Level(zerolog.TraceLevel)
			logger := slog.New(NewSlogHandlerWithLogger(zl))

			tt.logFn(logger)

			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output = %s, want substring %s", buf.String(), tt.contains)
			}
		})
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl))

	logger.Info("attrs",
		slog.String("name", "value"),
		slog.Int("count", 42),
		slog.Bool("ok", true),
	)

	out := buf.String()
	for _, want := range []string{`"name":"value"`, `"count":42`, `"ok":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	handler := NewSlogHandlerWithLogger(zl).WithAttrs([]slog.Attr{
		slog.String("service", "optimizer"),
	})
	logger := slog.New(handler)

	logger.Info("pre-configured")

	if !strings.Contains(buf.String(), `"service":"optimizer"`) {
		t.Errorf("output missing pre-configured attr: %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl).WithGroup("job"))

	logger.Info("grouped", slog.String("id", "j1"))

	if !strings.Contains(buf.String(), `"job.id":"j1"`) {
		t.Errorf("output missing group-prefixed attr: %s", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	zl := zerolog.New(nil).Level(zerolog.WarnLevel)
	handler := NewSlogHandlerWithLogger(zl)

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
