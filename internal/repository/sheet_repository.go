package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stwalsh4118/plotsight/api/internal/logger"
	"github.com/stwalsh4118/plotsight/api/internal/metrics"
)

// ErrSheetUnavailable wraps any fetch failure that survives the retry
// loop. Callers match it with errors.Is to distinguish "the sheet is
// down" from data problems inside a successfully fetched sheet.
var ErrSheetUnavailable = errors.New("sheet unavailable")

// retryBackoff is the pause between fetch attempts.
const retryBackoff = 500 * time.Millisecond

// SheetRepository defines the interface for inventory sheet access.
// It returns raw CSV bytes; normalization belongs to the ingest package.
type SheetRepository interface {
	// FetchCSV downloads one worksheet as CSV. gid selects the
	// worksheet; an empty gid fetches the spreadsheet's default sheet.
	// Returns an error wrapping ErrSheetUnavailable after all retries
	// are exhausted.
	FetchCSV(ctx context.Context, gid string) ([]byte, error)

	// Ping checks that the sheet endpoint is reachable, for readiness
	// probes. It performs no retries.
	Ping(ctx context.Context) error
}

// sheetRepository fetches published Google Sheets CSV exports over HTTP.
type sheetRepository struct {
	client  *http.Client
	baseURL string
	retries int
	log     *logger.Logger
}

// NewSheetRepository creates a SheetRepository for the spreadsheet at
// baseURL (the document URL without the /export suffix). Each attempt
// is bounded by timeout; retries is the total number of attempts.
func NewSheetRepository(baseURL string, timeout time.Duration, retries int, log *logger.Logger) SheetRepository {
	if retries < 1 {
		retries = 1
	}
	return &sheetRepository{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		retries: retries,
		log:     log,
	}
}

// FetchCSV downloads the worksheet, retrying transient failures. Retry
// policy lives here and only here; nothing downstream re-fetches.
func (r *sheetRepository) FetchCSV(ctx context.Context, gid string) ([]byte, error) {
	exportURL := r.exportURL(gid)

	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		body, err := r.fetchOnce(ctx, exportURL)
		if err == nil {
			metrics.SheetFetches.WithLabelValues("success").Inc()
			return body, nil
		}
		lastErr = err
		metrics.SheetFetches.WithLabelValues("failure").Inc()

		r.log.Warn("Sheet fetch attempt failed", map[string]interface{}{
			"url":     exportURL,
			"attempt": attempt,
			"retries": r.retries,
			"error":   err.Error(),
		})

		// Context errors are not transient; give up immediately.
		if ctx.Err() != nil {
			break
		}
		if attempt < r.retries {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSheetUnavailable, ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrSheetUnavailable, r.retries, lastErr)
}

// fetchOnce performs a single export request.
func (r *sheetRepository) fetchOnce(ctx context.Context, exportURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet body: %w", err)
	}
	return body, nil
}

// Ping issues a single HEAD request against the default export URL.
func (r *sheetRepository) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.exportURL(""), nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheet endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("sheet endpoint responded with status %d", resp.StatusCode)
	}
	return nil
}

// exportURL builds the CSV export URL for the given worksheet gid.
func (r *sheetRepository) exportURL(gid string) string {
	u := r.baseURL + "/export?format=csv"
	if gid != "" {
		u += "&gid=" + url.QueryEscape(gid)
	}
	return u
}
