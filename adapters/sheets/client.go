package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sheetimport/adapters/excel"
	"sheetimport/domain/core"
	"sheetimport/ports"
)

const (
	// DefaultBaseURL is the public spreadsheet host
	DefaultBaseURL = "https://docs.google.com"

	defaultMaxBytes = 32 << 20
)

// authHosts are the sign-in hosts a private document redirects to
var authHosts = []string{"accounts.google.com"}

// ClientConfig holds configuration for the export client
type ClientConfig struct {
	BaseURL  string
	MaxBytes int64
}

// Client downloads spreadsheet exports and classifies failures
type Client struct {
	baseURL  string
	maxBytes int64
	http     ports.HTTPDoer
}

// NewClient creates an export client. A nil doer uses http.DefaultClient;
// timeouts are imposed by the caller through the request context.
func NewClient(config ClientConfig, doer ports.HTTPDoer) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaultMaxBytes
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		maxBytes: config.MaxBytes,
		http:     doer,
	}
}

// FetchWorkbook downloads the whole document as xlsx
func (c *Client) FetchWorkbook(ctx context.Context, ref DocumentRef) ([]byte, error) {
	return c.fetch(ctx, c.exportURL(ref, "xlsx", nil))
}

// FetchTab downloads one tab as delimited text
func (c *Client) FetchTab(ctx context.Context, ref DocumentRef, tabID int) ([]byte, error) {
	return c.fetch(ctx, c.exportURL(ref, "csv", &tabID))
}

func (c *Client) exportURL(ref DocumentRef, format string, tabID *int) string {
	q := url.Values{}
	var path string
	if ref.Published {
		path = fmt.Sprintf("/spreadsheets/d/e/%s/pub", url.PathEscape(ref.ID.String()))
		q.Set("output", format)
		if tabID != nil {
			q.Set("single", "true")
		}
	} else {
		path = fmt.Sprintf("/spreadsheets/d/%s/export", url.PathEscape(ref.ID.String()))
		q.Set("format", format)
	}
	if tabID != nil {
		q.Set("gid", fmt.Sprintf("%d", *tabID))
	}
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidURL, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if redirectedToSignIn(resp) {
		return nil, fmt.Errorf("%w: redirected to sign-in", core.ErrAccessDenied)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, core.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", core.ErrAccessDenied, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, core.NewUnreadableSourceError(fmt.Sprintf("document exceeds %d bytes", c.maxBytes), nil)
	}

	// Private documents answer 200 with the sign-in page
	if excel.IsHTML(body) {
		return nil, core.ErrNotPublic
	}

	log.Printf("[Sheets] fetched %d bytes in %v", len(body), time.Since(startTime).Round(time.Millisecond))
	return body, nil
}

func redirectedToSignIn(resp *http.Response) bool {
	var final *url.URL
	if resp.Request != nil {
		final = resp.Request.URL
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc, err := resp.Location(); err == nil {
			final = loc
		}
	}
	if final == nil {
		return false
	}
	for _, host := range authHosts {
		if strings.EqualFold(final.Hostname(), host) {
			return true
		}
	}
	return strings.Contains(final.Path, "ServiceLogin")
}

func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", core.ErrFetchTimeout, err)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %v", core.ErrFetchCancelled, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", core.ErrFetchTimeout, err)
	}
	return fmt.Errorf("%w: %v", core.ErrFetchFailed, err)
}
