package resolver

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/presencekit/bridge/internal/activity"
	"github.com/presencekit/bridge/internal/resilience"
	"golang.org/x/time/rate"
)

// metadataDoc is the presence-definition document fetched per application.
type metadataDoc struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// metadataClient fetches presence-definition documents from the public
// repository, rate limited and guarded by a circuit breaker.
type metadataClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

func newMetadataClient(base string, rps float64) *metadataClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 1
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.Logger = nil

	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(5 * time.Second).
		SetHeader("User-Agent", "presence-bridge/"+activity.Version).
		SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	return &metadataClient{
		http:    httpClient,
		limiter: limiter,
		breaker: resilience.New("metadata-repo", resilience.Settings{
			Threshold: 5,
			Cooldown:  time.Minute,
		}),
	}
}

// metadata fetches the document for one application name within a bucket.
func (c *metadataClient) metadata(ctx context.Context, bucket, name string) (*metadataDoc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var doc metadataDoc
	err := c.breaker.Execute(func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&doc).
			ForceContentType("application/json"). // repo serves raw files as text/plain
			Get(fmt.Sprintf("/%s/%s/metadata.json", bucket, url.PathEscape(name)))
		if err != nil {
			return fmt.Errorf("metadata fetch: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("metadata fetch: %s", resp.Status())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
