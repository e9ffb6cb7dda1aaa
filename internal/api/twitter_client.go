package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hirefeed/internal/cache"
	"hirefeed/internal/config"
	"hirefeed/internal/errors"
	"hirefeed/internal/models"
	"hirefeed/internal/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("hirefeed/api")

const recentSearchPath = "/tweets/search/recent"

type SearchClient interface {
	// SearchRecent never returns a nil response: on error it is empty.
	SearchRecent(ctx context.Context, query string) (*models.SearchResponse, error)
}

type searchClient struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

func NewSearchClient(logger *zap.Logger, config *config.Config, cache cache.Cache) SearchClient {
	return &searchClient{
		client: &http.Client{
			Timeout: config.TwitterAPITimeout,
		},
		logger: logger,
		config: config,
		cache:  cache,
	}
}

func (c *searchClient) SearchRecent(ctx context.Context, query string) (*models.SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "SearchRecent")
	defer span.End()

	empty := &models.SearchResponse{}

	if c.config.BearerToken == "" {
		c.logger.Warn("twitter bearer token not configured")
		span.SetAttributes(telemetry.String("search.result", "no_credential"))
		return empty, errors.Unauthorized("bearer token not configured", nil)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(c.config.SearchMaxResults))
	if c.config.SearchTweetFields != "" {
		params.Set("tweet.fields", c.config.SearchTweetFields)
	}

	// A positive CacheTTL lets runs inside the window share one response.
	// Off by default so every run issues its own request.
	caching := c.config.CacheTTL > 0
	cacheKey := "twitter:search:recent:" + params.Encode()
	if caching {
		var cached models.SearchResponse
		err := c.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			c.logger.Debug("cache hit for recent search", zap.String("query", query))
			return &cached, nil
		} else if err != cache.ErrNotFound {
			span.SetAttributes(telemetry.String("cache.result", "error"))
			span.RecordError(err)
			c.logger.Warn("cache error for recent search", zap.Error(err))
		} else {
			span.SetAttributes(telemetry.String("cache.result", "miss"))
		}
	}

	endpoint := strings.TrimRight(c.config.TwitterAPIBaseURL, "/") + recentSearchPath + "?" + params.Encode()
	c.logger.Debug("searching recent tweets",
		zap.String("query", query),
		zap.Int("max_results", c.config.SearchMaxResults))
	span.SetAttributes(telemetry.String("http.url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		return empty, errors.Internal("creating request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.BearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to execute request", zap.Error(err))
		return empty, errors.Internal("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodGet),
	)

	if resp.StatusCode != http.StatusOK {
		problem := readProblem(resp.Body)
		c.logger.Error("unexpected status code",
			zap.Int("status_code", resp.StatusCode),
			zap.String("title", problem.Title),
			zap.String("detail", problem.Detail))
		return empty, errors.FromHTTPStatus(resp.StatusCode, "recent search")
	}

	var result models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		c.logger.Error("failed to decode response", zap.Error(err))
		return empty, errors.Internal("decoding response", err)
	}

	for _, apiErr := range result.Errors {
		c.logger.Warn("partial error in search response",
			zap.String("title", apiErr.Title),
			zap.String("detail", apiErr.Detail))
	}

	span.SetAttributes(telemetry.Int("search.result_count", len(result.Data)))
	c.logger.Info("search response stats",
		zap.Int("result_count", result.Meta.ResultCount),
		zap.String("newest_id", result.Meta.NewestID),
		zap.Bool("has_more", result.Meta.NextToken != ""))

	for _, tweet := range result.Data {
		if tweet.PublicMetrics == nil {
			continue
		}
		c.logger.Debug("fetched tweet",
			zap.String("id", tweet.ID),
			zap.Int("retweets", tweet.PublicMetrics.RetweetCount),
			zap.Int("likes", tweet.PublicMetrics.LikeCount))
	}

	if caching {
		if err := c.cache.Set(ctx, cacheKey, &result, c.config.CacheTTL); err != nil {
			c.logger.Warn("failed to cache recent search results", zap.Error(err))
		}
	}

	return &result, nil
}

// readProblem decodes an error body if there is one; failures are ignored.
func readProblem(body io.Reader) models.APIError {
	var problem models.APIError
	_ = json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&problem)
	return problem
}
