// Package preview fetches a remote document and extracts a lightweight link
// preview (title, description, image, site name, icon) from its markup.
package preview

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/law-makers/linkclean/internal/reqctx"
	urlutil "github.com/law-makers/linkclean/internal/utils/url"
	"github.com/law-makers/linkclean/pkg/models"
)

const (
	// MaxTimeout bounds every preview fetch regardless of the caller's deadline
	MaxTimeout = 8 * time.Second

	DefaultUserAgent    = "LinkcleanPreviewBot/1.0 (+https://github.com/law-makers/linkclean)"
	DefaultMaxBodyBytes = 2 * 1024 * 1024

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// Fetcher is implemented by anything that can produce a preview for a URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) models.PreviewResult
}

// Options configures an Extractor
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Headers      map[string]string
}

// Extractor issues exactly one GET per Fetch call and turns the response
// into a preview record
type Extractor struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
	headers   map[string]string
}

// New creates an Extractor. A nil client gets a default pooled client.
func New(client *http.Client, opts Options) *Extractor {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 || opts.Timeout > MaxTimeout {
		opts.Timeout = MaxTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Extractor{
		client:    client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		maxBody:   opts.MaxBodyBytes,
		headers:   opts.Headers,
	}
}

// Fetch retrieves rawURL and extracts its preview. It never panics and never
// returns a Go error: every failure is reported through the result's Kind
// and Message, possibly alongside a partial record.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) (result models.PreviewResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = reqctx.WithRequestContext(ctx)
	rc := reqctx.GetRequestContext(ctx)
	logger := log.With().Str("request_id", rc.RequestID).Str("url", rawURL).Logger()

	result.URL = rawURL

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Preview extraction panicked")
			result.Record = nil
			result.Kind = models.ErrorKindNetworkError
			result.Message = MsgNetworkError
		}
	}()

	record, perr := e.fetch(ctx, rawURL, &logger)
	result.Record = record
	if perr != nil {
		result.Kind = perr.Kind
		result.Message = perr.Message
		logger.Debug().
			Err(perr).
			Dur("elapsed", rc.Elapsed()).
			Msg("Preview incomplete")
		return result
	}

	logger.Debug().
		Dur("elapsed", rc.Elapsed()).
		Msg("Preview extracted")
	return result
}

func (e *Extractor) fetch(ctx context.Context, rawURL string, logger *zerolog.Logger) (*models.PreviewRecord, *Error) {
	if err := urlutil.ValidateURL(rawURL); err != nil {
		return nil, &Error{Kind: models.ErrorKindNetworkError, Message: MsgNetworkError, Underlying: err}
	}
	reqURL, _ := url.Parse(rawURL)
	host := urlutil.Hostname(rawURL)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: models.ErrorKindNetworkError, Message: MsgNetworkError, Underlying: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", acceptHeader)
	for key, value := range e.headers {
		req.Header.Set(key, value)
	}

	logger.Debug().Dur("timeout", e.timeout).Msg("Starting preview fetch")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(reqctx.NewRequestError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := parseMediaType(contentType)
	logger.Debug().
		Int("status", resp.StatusCode).
		Str("content_type", mediaType).
		Msg("Response received")

	if strings.HasPrefix(mediaType, "image/") {
		return imageRecord(reqURL, rawURL, host), nil
	}
	if !isHTML(mediaType) {
		return nil, &Error{Kind: models.ErrorKindUnsupportedContentType, Message: MsgNotHTML}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return nil, classifyFetchError(err)
	}

	var body io.Reader = bytes.NewReader(data)
	if decoded, err := charset.NewReader(bytes.NewReader(data), contentType); err == nil {
		body = decoded
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &Error{Kind: models.ErrorKindNetworkError, Message: MsgNetworkError, Underlying: err}
	}

	docURL := reqURL
	if resp.Request != nil && resp.Request.URL != nil {
		docURL = resp.Request.URL
	}

	record, found := Extract(doc, docURL, host)
	if !found {
		// keep the site name and icon fallbacks so there is still a card to show
		record.Title = host
		return &record, &Error{Kind: models.ErrorKindNoMetadataFound, Message: MsgNoMetadata}
	}
	return &record, nil
}

// imageRecord previews a URL that points straight at an image
func imageRecord(reqURL *url.URL, rawURL, host string) *models.PreviewRecord {
	title := reqURL.Path
	if i := strings.LastIndex(title, "/"); i >= 0 {
		title = title[i+1:]
	}
	if title == "" {
		title = host
	}
	return &models.PreviewRecord{ImageURL: rawURL, Title: title}
}

func parseMediaType(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(mediaType)
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isHTML(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
