package scholar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/papercheck/papercheck/internal/cache"
	"github.com/papercheck/papercheck/internal/model"
	"github.com/papercheck/papercheck/internal/util"
	"github.com/papercheck/papercheck/internal/worker"
)

const paperFields = "title,abstract,year,externalIds,openAccessPdf"

// Paper is the metadata returned for one looked-up reference.
type Paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`

	ExternalIDs map[string]any `json:"externalIds"`

	OpenAccessPDF *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

type searchResponse struct {
	Total int     `json:"total"`
	Data  []Paper `json:"data"`
}

// Client looks up reference metadata in the Semantic Scholar Graph API.
// Lookups go through the layered cache and a per-host rate limiter; PDF
// downloads additionally respect robots.txt.
type Client struct {
	baseURL    string
	userAgent  string
	maxPDF     int64
	httpClient *http.Client
	cache      cache.Cache
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	logger     *slog.Logger
}

// NewClient creates a lookup client. cache may be nil to disable caching.
func NewClient(cfg model.ScholarConfig, store cache.Cache, limiter *worker.Limiter, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		maxPDF:    cfg.MaxPDFBytes,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		cache:   store,
		limiter: limiter,
		robots:  util.NewRobotsChecker(cfg.UserAgent, timeout),
		logger:  logger,
	}
}

// Lookup finds paper metadata for a reference. It prefers an exact DOI
// lookup and falls back to a title search. A lookup that finds nothing
// returns (nil, nil).
func (c *Client) Lookup(ctx context.Context, doi, title string) (*Paper, error) {
	key := cache.Key("lookup:" + strings.ToLower(doi) + ":" + normalizeTitle(title))
	if c.cache != nil {
		if raw, ok := c.cache.Get(key); ok {
			var paper Paper
			if err := json.Unmarshal(raw, &paper); err == nil {
				return &paper, nil
			}
		}
	}

	var paper *Paper
	var err error
	if doi != "" {
		paper, err = c.byDOI(ctx, doi)
		if err != nil {
			return nil, err
		}
	}
	if paper == nil && title != "" {
		paper, err = c.byTitle(ctx, title)
		if err != nil {
			return nil, err
		}
	}
	if paper == nil {
		return nil, nil
	}

	if c.cache != nil {
		if raw, err := json.Marshal(paper); err == nil {
			_ = c.cache.Set(key, raw, 0)
		}
	}
	return paper, nil
}

func (c *Client) byDOI(ctx context.Context, doi string) (*Paper, error) {
	endpoint := fmt.Sprintf("%s/paper/DOI:%s?fields=%s", c.baseURL, url.PathEscape(doi), paperFields)

	var paper Paper
	found, err := c.getJSON(ctx, endpoint, &paper)
	if err != nil {
		return nil, fmt.Errorf("DOI lookup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &paper, nil
}

func (c *Client) byTitle(ctx context.Context, title string) (*Paper, error) {
	endpoint := fmt.Sprintf("%s/paper/search?query=%s&limit=1&fields=%s",
		c.baseURL, url.QueryEscape(normalizeTitle(title)), paperFields)

	var resp searchResponse
	found, err := c.getJSON(ctx, endpoint, &resp)
	if err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	if !found || len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// getJSON performs a rate-limited GET and decodes the body into out.
// A 404 reports not-found without error.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return false, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return false, fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

// FetchPDFText downloads a paper's open-access PDF and extracts its text.
// Hosts that disallow the fetch via robots.txt yield an empty string.
func (c *Client) FetchPDFText(ctx context.Context, paper *Paper) (string, error) {
	if paper == nil || paper.OpenAccessPDF == nil || paper.OpenAccessPDF.URL == "" {
		return "", nil
	}
	pdfURL := paper.OpenAccessPDF.URL

	allowed, crawlDelay, err := c.robots.CanFetch(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	if !allowed {
		c.logger.Info("pdf fetch disallowed by robots.txt", "url", pdfURL)
		return "", nil
	}
	if crawlDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(crawlDelay):
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, pdfURL); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download pdf: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pdf download failed (%d)", resp.StatusCode)
	}

	limit := c.maxPDF
	if limit <= 0 {
		limit = 20 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	return extractPDFText(data)
}

var extraneousWhitespace = regexp.MustCompile(`\s+`)

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(builder.String(), " ")), nil
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}
