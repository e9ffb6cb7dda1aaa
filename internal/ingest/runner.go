package ingest

import (
	"context"
	"fmt"

	"hirefeed/internal/api"
	"hirefeed/internal/config"
	"hirefeed/internal/keywords"
	"hirefeed/internal/messaging"
	"hirefeed/internal/models"
	"hirefeed/internal/store"
	"hirefeed/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("hirefeed/ingest")

// Summary describes one run. Failures along the way are logged and show
// up here as zero counts, never as an error.
type Summary struct {
	RunID      string
	Query      string
	Fetched    int
	Inserted   int
	Duplicates int
	Failed     int
	Published  int
}

func (s Summary) String() string {
	if s.Fetched == 0 {
		return "No tweets found"
	}
	return fmt.Sprintf("Saved %d job postings (%d duplicates skipped, %d failed)",
		s.Inserted, s.Duplicates, s.Failed)
}

type Runner struct {
	client    api.SearchClient
	store     store.Store
	publisher messaging.Publisher
	logger    *zap.Logger
	config    *config.Config
}

func NewRunner(client api.SearchClient, store store.Store, publisher messaging.Publisher, logger *zap.Logger, config *config.Config) *Runner {
	return &Runner{
		client:    client,
		store:     store,
		publisher: publisher,
		logger:    logger,
		config:    config,
	}
}

// Run fetches one page of recent matches, stores the new ones and
// publishes them.
func (r *Runner) Run(ctx context.Context) Summary {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()

	summary := Summary{
		RunID: uuid.NewString(),
		Query: keywords.BuildQuery(r.config.SearchKeywords),
	}
	logger := r.logger.With(zap.String("run_id", summary.RunID))
	span.SetAttributes(telemetry.String("run.id", summary.RunID))

	logger.Info("searching for job postings", zap.String("query", summary.Query))
	resp, err := r.client.SearchRecent(ctx, summary.Query)
	if err != nil {
		span.RecordError(err)
		logger.Error("search failed", zap.Error(err))
		return summary
	}

	summary.Fetched = len(resp.Data)
	span.SetAttributes(telemetry.Int("run.fetched", summary.Fetched))
	if summary.Fetched == 0 {
		logger.Info("no tweets found")
		return summary
	}

	postings := make([]*models.JobPosting, 0, len(resp.Data))
	skipped := 0
	for i := range resp.Data {
		tweet := &resp.Data[i]
		if tweet.ID == "" {
			skipped++
			logger.Warn("skipping tweet without id", zap.Int("index", i))
			continue
		}
		postings = append(postings, tweet.ToJobPosting(r.config.SearchKeywords))
	}

	var result store.SaveResult
	if len(postings) > 0 {
		result, err = r.store.SaveJobPostings(ctx, postings)
		if err != nil {
			span.RecordError(err)
			logger.Error("failed to save job postings", zap.Error(err))
		}
	}
	summary.Inserted = result.Inserted()
	summary.Duplicates = result.Duplicates
	summary.Failed = result.Failed + skipped

	for _, posting := range result.Saved {
		if err := r.publisher.PublishJobPosting(ctx, posting); err != nil {
			logger.Warn("failed to publish job posting",
				zap.String("tweet_id", posting.TweetID),
				zap.Error(err))
			continue
		}
		summary.Published++
	}

	span.SetAttributes(
		telemetry.Int("run.inserted", summary.Inserted),
		telemetry.Int("run.duplicates", summary.Duplicates),
		telemetry.Int("run.failed", summary.Failed),
	)
	logger.Info("run complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("inserted", summary.Inserted),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
		zap.Int("published", summary.Published))

	return summary
}
