// Package batch cleans many links at once and optionally previews them with
// bounded concurrency, per-domain throttling and a shared preview cache.
package batch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/linkclean/internal/cache"
	"github.com/law-makers/linkclean/internal/preview"
	"github.com/law-makers/linkclean/internal/ratelimit"
	"github.com/law-makers/linkclean/internal/sanitize"
	"github.com/law-makers/linkclean/pkg/models"
)

// Options tunes a Runner
type Options struct {
	Concurrency int
	Preview     bool
	CacheTTL    time.Duration
	// OnItem is called once per finished item, from worker goroutines
	OnItem func(models.BatchItem)
}

// Runner processes a batch of raw inputs
type Runner struct {
	blocked sanitize.Set
	fetcher preview.Fetcher
	cache   cache.Cache
	limiter ratelimit.RateLimiter
	opts    Options
}

// New creates a Runner. fetcher may be nil when previews are off; cache and
// limiter may be nil to disable caching and throttling.
func New(blocked sanitize.Set, fetcher preview.Fetcher, c cache.Cache, limiter ratelimit.RateLimiter, opts Options) *Runner {
	opts.Concurrency = clampConcurrency(opts.Concurrency)
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if fetcher == nil {
		opts.Preview = false
	}
	return &Runner{
		blocked: blocked,
		fetcher: fetcher,
		cache:   c,
		limiter: limiter,
		opts:    opts,
	}
}

// Run processes inputs and returns one item per input, in input order.
// Per-item failures are recorded on the item; the only error returned is
// the context's when the run is cancelled.
func (r *Runner) Run(ctx context.Context, inputs []string) ([]models.BatchItem, error) {
	items := make([]models.BatchItem, len(inputs))
	if len(inputs) == 0 {
		return items, nil
	}

	start := time.Now()
	var previewed, cached atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Concurrency)

	for i, input := range inputs {
		i, input := i, input
		items[i] = models.BatchItem{Index: i, Input: input}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			item, fromCache := r.process(groupCtx, i, input)
			items[i] = item
			if item.Preview != nil {
				previewed.Add(1)
				if fromCache {
					cached.Add(1)
				}
			}
			if r.opts.OnItem != nil {
				r.opts.OnItem(item)
			}
			return nil
		})
	}

	err := group.Wait()

	log.Info().
		Int("items", len(inputs)).
		Int64("previewed", previewed.Load()).
		Int64("cache_hits", cached.Load()).
		Int("concurrency", r.opts.Concurrency).
		Dur("elapsed", time.Since(start)).
		Msg("Batch finished")

	return items, err
}

func (r *Runner) process(ctx context.Context, index int, input string) (models.BatchItem, bool) {
	start := time.Now()
	item := models.BatchItem{
		Index:  index,
		Input:  input,
		Result: sanitize.Sanitize(input, r.blocked),
	}
	if item.Result.OK() {
		item.Domain = ratelimit.Domain(item.Result.CleanedURL)
	}

	var fromCache bool
	if r.opts.Preview && item.Result.OK() {
		var res models.PreviewResult
		res, fromCache = r.preview(ctx, item.Result.CleanedURL)
		item.Preview = &res
	}

	item.Duration = time.Since(start).Milliseconds()
	return item, fromCache
}

func (r *Runner) preview(ctx context.Context, cleanedURL string) (models.PreviewResult, bool) {
	key := cache.CacheKeyFromURL(cleanedURL)
	if r.cache != nil {
		if res, ok := r.cache.Get(key); ok {
			res.URL = cleanedURL
			return res, true
		}
	}

	if !r.limiter.Allow(cleanedURL) {
		log.Debug().Str("url", cleanedURL).Msg("Domain throttled, waiting for a token")
		if err := r.limiter.Wait(ctx, cleanedURL); err != nil {
			log.Debug().Err(err).Str("url", cleanedURL).Msg("Rate limit wait aborted")
			return models.PreviewResult{
				URL:     cleanedURL,
				Kind:    models.ErrorKindTimeout,
				Message: preview.MsgTimeout,
			}, false
		}
	}

	res := r.fetcher.Fetch(ctx, cleanedURL)
	if r.cache != nil && cache.Cacheable(res) {
		r.cache.Set(key, res, r.opts.CacheTTL)
	}
	return res, false
}
