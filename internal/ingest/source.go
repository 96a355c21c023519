// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/stridefit/stridefit/internal/config"
	"github.com/stridefit/stridefit/internal/logging"
	"github.com/stridefit/stridefit/internal/metrics"
	"github.com/stridefit/stridefit/internal/models"
)

// maxErrorBodySize caps how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// ErrNotFound marks a terminal fetch failure: the source does not know
// the product. Not retried.
var ErrNotFound = errors.New("product not found at source")

// IsTransient reports whether a fetch error is worth retrying. Breaker
// rejections and terminal lookups are not.
func IsTransient(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// Source is one external review provider.
type Source interface {
	// Name returns the registered source name.
	Name() string

	// Expert reports whether the source carries expert reviews.
	Expert() bool

	// ResolveProductPage finds the source's review page URL for a
	// product, leaving the {page} placeholder in place for FetchReviews
	// to fill. Returns ErrNotFound when the source does not list it.
	ResolveProductPage(ctx context.Context, product *models.Product) (string, error)

	// FetchReviews fetches one page of reviews from a resolved page
	// URL. The bool reports whether more pages remain.
	FetchReviews(ctx context.Context, pageURL string, page int) ([]*models.RawReview, bool, error)
}

// jsonSource fetches reviews from a paginated JSON endpoint described
// entirely by configuration.
type jsonSource struct {
	cfg       config.SourceConfig
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[*http.Response]
}

// NewSource builds a Source from its config entry, sharing the given
// HTTP client.
func NewSource(cfg config.SourceConfig, client *http.Client, userAgent string) Source {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 1
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Source breaker state change")
			metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
		},
	})

	return &jsonSource{
		cfg:       cfg,
		client:    client,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   breaker,
	}
}

func (s *jsonSource) Name() string { return s.cfg.Name }

func (s *jsonSource) Expert() bool { return s.cfg.Expert }

// expandPath substitutes {key} placeholders in a configured path
// template. pairs alternate key, value; values must already be escaped
// for the position they land in. Unknown placeholders are left intact.
func expandPath(path string, pairs ...string) string {
	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(path)
}

// searchResult is the wire shape of a source's product search response.
type searchResult struct {
	Results []struct {
		ID    string `json:"id"`
		Brand string `json:"brand"`
		Model string `json:"model"`
	} `json:"results"`
}

func (s *jsonSource) ResolveProductPage(ctx context.Context, product *models.Product) (string, error) {
	if product == nil {
		return "", fmt.Errorf("product is nil")
	}

	searchURL := s.cfg.BaseURL + expandPath(s.cfg.SearchPath,
		"brand", url.QueryEscape(product.Brand),
		"model", url.QueryEscape(product.Model),
	)

	var result searchResult
	if err := s.getJSON(ctx, searchURL, &result); err != nil {
		return "", fmt.Errorf("failed to search %s: %w", s.cfg.Name, err)
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("%s has no listing for %s: %w", s.cfg.Name, product.DisplayName(), ErrNotFound)
	}

	// {page} stays in the template for FetchReviews to fill per page.
	return s.cfg.BaseURL + expandPath(s.cfg.ReviewsPath,
		"product", url.PathEscape(result.Results[0].ID),
	), nil
}

// reviewPage is the wire shape of one page of reviews.
type reviewPage struct {
	Reviews []json.RawMessage `json:"reviews"`
	HasMore bool              `json:"has_more"`
}

// reviewEntry is a single review as the sources serve it.
type reviewEntry struct {
	ID       string  `json:"id"`
	Reviewer string  `json:"reviewer,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Title    string  `json:"title,omitempty"`
	Body     string  `json:"body"`
	Date     string  `json:"date,omitempty"` // RFC 3339
	URL      string  `json:"url,omitempty"`
}

func (s *jsonSource) FetchReviews(ctx context.Context, pageURL string, page int) ([]*models.RawReview, bool, error) {
	var wire reviewPage
	if err := s.getJSON(ctx, expandPath(pageURL, "page", strconv.Itoa(page)), &wire); err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s page %d: %w", s.cfg.Name, page, err)
	}

	reviewType := models.ReviewUser
	if s.cfg.Expert {
		reviewType = models.ReviewExpert
	}

	entries := wire.Reviews
	if s.cfg.PageSize > 0 && len(entries) > s.cfg.PageSize {
		entries = entries[:s.cfg.PageSize]
	}

	reviews := make([]*models.RawReview, 0, len(entries))
	parseFailures := 0
	for _, raw := range entries {
		var entry reviewEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.ID == "" || entry.Body == "" {
			parseFailures++
			continue
		}

		review := &models.RawReview{
			Source:         s.cfg.Name,
			SourceReviewID: entry.ID,
			SourceURL:      entry.URL,
			ReviewerName:   entry.Reviewer,
			Rating:         entry.Rating,
			Title:          entry.Title,
			Body:           entry.Body,
			Type:           reviewType,
		}
		if entry.Date != "" {
			if t, err := time.Parse(time.RFC3339, entry.Date); err == nil {
				review.ReviewDate = t
			}
		}
		reviews = append(reviews, review)
	}

	if parseFailures > 0 {
		logging.Warn().
			Str("source", s.cfg.Name).
			Int("page", page).
			Int("failures", parseFailures).
			Msg("Skipped unparseable review entries")
	}

	more := wire.HasMore && page < s.cfg.MaxPages
	return reviews, more, nil
}

// getJSON performs a rate-limited GET through the breaker and decodes
// the JSON body into out.
func (s *jsonSource) getJSON(ctx context.Context, reqURL string, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := s.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode >= 500 {
			body := readBodyForError(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, s.cfg.Name, body)
		}
		return resp, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, s.cfg.Name, readBodyForError(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", s.cfg.Name, err)
	}
	return nil
}

// readBodyForError reads at most maxErrorBodySize of a response body
// for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
