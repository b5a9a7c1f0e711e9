package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ndisplan/ragserver/corpus"
	"github.com/ndisplan/ragserver/models"
)

// Crawler walks one site breadth-first and turns its pages into chunk
// records. The page budget bounds pages fetched, not chunks produced.
type Crawler struct {
	client       *http.Client
	limiter      *rate.Limiter
	maxPages     int
	maxBytes     int64
	maxTextChars int
	chunkSize    int
	chunkOverlap int
	log          *zap.Logger
}

type Options struct {
	MaxPages     int
	MaxBytes     int64
	MaxTextChars int
	ChunkSize    int
	ChunkOverlap int
	DelaySec     float64
}

func New(client *http.Client, opts Options, log *zap.Logger) *Crawler {
	limit := rate.Inf
	if opts.DelaySec > 0 {
		limit = rate.Limit(1 / opts.DelaySec)
	}
	return &Crawler{
		client:       client,
		limiter:      rate.NewLimiter(limit, 1),
		maxPages:     opts.MaxPages,
		maxBytes:     opts.MaxBytes,
		maxTextChars: opts.MaxTextChars,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		log:          log.Named("crawler"),
	}
}

// Crawl fetches pages from startURL outward, never leaving its host, until
// the queue drains or the page budget is spent. Chunks seen before (by
// content fingerprint) within this crawl are dropped. Returns the surviving
// records and the number of pages fetched. Individual page failures are
// logged and skipped; only a bad start URL or a cancelled context fail the
// crawl.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]models.Record, int, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, 0, fmt.Errorf("invalid start url %q: %w", startURL, err)
	}

	var (
		records []models.Record
		queue   = []string{start.String()}
		visited = make(map[string]struct{})
		seen    = make(map[string]struct{})
		pages   int
	)

	for len(queue) > 0 && pages < c.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}

		current := queue[0]
		queue = queue[1:]
		if _, done := visited[current]; done {
			continue
		}
		visited[current] = struct{}{}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, pages, err
		}

		pageURL, err := url.Parse(current)
		if err != nil {
			continue
		}

		if !c.preflight(ctx, current) {
			c.log.Debug("preflight rejected page", zap.String("url", current))
			continue
		}

		doc, err := c.fetch(ctx, current)
		if err != nil {
			c.log.Warn("failed to fetch page", zap.String("url", current), zap.Error(err))
			continue
		}
		pages++

		title := pageTitle(doc)
		text := pageText(doc)
		if len(text) > c.maxTextChars {
			text = text[:c.maxTextChars]
		}
		text = corpus.NormalizeText(text)

		records = append(records, c.pageRecords(pageURL, title, text, seen)...)
		queue = append(queue, c.unvisited(pageLinks(doc, pageURL), visited)...)
	}

	c.log.Info("crawl finished",
		zap.String("start", startURL),
		zap.Int("pages", pages),
		zap.Int("chunks", len(records)))
	return records, pages, nil
}

// pageRecords chunks one page's text into records, dropping chunks whose
// fingerprint already appeared in this crawl.
func (c *Crawler) pageRecords(pageURL *url.URL, title, text string, seen map[string]struct{}) []models.Record {
	chunks := corpus.Split(text, c.chunkSize, c.chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	urlPath := pageURL.Path
	if urlPath == "" {
		urlPath = "/"
	}
	fileName := strings.TrimPrefix(pageURL.Path, "/")
	if fileName == "" {
		fileName = "index.html"
	}

	var records []models.Record
	for i, chunk := range chunks {
		fp := corpus.WebFingerprint(chunk)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		records = append(records, models.Record{
			ID:         pageURL.Host + urlPath + "#" + strconv.Itoa(i+1),
			SourceType: models.SourceTypeWeb,
			FileName:   fileName,
			URL:        pageURL.String(),
			Title:      title,
			Text:       chunk,
			SHA1:       fp,
			Meta: models.RecordMeta{
				ChunkIndex:  i + 1,
				TotalChunks: len(chunks),
			},
		})
	}
	return records
}

func (c *Crawler) unvisited(links []string, visited map[string]struct{}) []string {
	var fresh []string
	for _, link := range links {
		if _, done := visited[link]; !done {
			fresh = append(fresh, link)
		}
	}
	return fresh
}

// preflight asks for headers only and rejects pages that are not HTML or
// whose declared size exceeds the byte cap.
func (c *Crawler) preflight(ctx context.Context, pageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return false
	}
	if resp.ContentLength > 0 && resp.ContentLength > c.maxBytes {
		return false
	}
	return true
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Chunked responses carry no Content-Length for preflight to check.
	return goquery.NewDocumentFromReader(io.LimitReader(resp.Body, c.maxBytes))
}
