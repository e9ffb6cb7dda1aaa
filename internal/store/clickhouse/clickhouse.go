package clickhouse

import (
	"context"
	"fmt"

	"hirefeed/internal/models"
	"hirefeed/internal/store"
	"hirefeed/internal/telemetry"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("hirefeed/store/clickhouse")

// Rows sharing tweet_id collapse on merge. SaveJobPostings also skips ids
// that are already present.
const createJobPostingsTable = `
	CREATE TABLE IF NOT EXISTS job_postings (
		tweet_id String,
		content String,
		author String,
		url String,
		created_at String,
		keywords String,
		inserted_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(inserted_at)
	ORDER BY tweet_id
`

type Store struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func New(conn clickhouse.Conn, logger *zap.Logger) *Store {
	return &Store{conn: conn, logger: logger}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, createJobPostingsTable); err != nil {
		return fmt.Errorf("create job_postings table: %w", err)
	}
	return nil
}

func (s *Store) SaveJobPostings(ctx context.Context, postings []*models.JobPosting) (store.SaveResult, error) {
	ctx, span := tracer.Start(ctx, "SaveJobPostings")
	defer span.End()

	var result store.SaveResult
	if len(postings) == 0 {
		return result, nil
	}

	existing, err := s.existingIDs(ctx, postings)
	if err != nil {
		span.RecordError(err)
		return store.SaveResult{Failed: len(postings)}, err
	}

	fresh := newPostings(postings, existing)
	result.Duplicates = len(postings) - len(fresh)
	if len(fresh) == 0 {
		return result, nil
	}

	batch, err := s.conn.PrepareBatch(ctx,
		"INSERT INTO job_postings (tweet_id, content, author, url, created_at, keywords)")
	if err != nil {
		span.RecordError(err)
		return store.SaveResult{Failed: len(postings)}, fmt.Errorf("prepare batch: %w", err)
	}

	for _, posting := range fresh {
		if err := batch.Append(
			posting.TweetID,
			posting.Content,
			posting.Author,
			posting.URL,
			posting.CreatedAt,
			posting.Keywords,
		); err != nil {
			result.Failed++
			s.logger.Error("failed to save job posting",
				zap.String("tweet_id", posting.TweetID),
				zap.Error(err))
			continue
		}
		result.Saved = append(result.Saved, posting)
	}

	if err := batch.Send(); err != nil {
		span.RecordError(err)
		return store.SaveResult{Failed: len(postings)}, fmt.Errorf("send batch: %w", err)
	}

	span.SetAttributes(
		telemetry.Int("postings.inserted", result.Inserted()),
		telemetry.Int("postings.duplicates", result.Duplicates),
	)
	return result, nil
}

func (s *Store) existingIDs(ctx context.Context, postings []*models.JobPosting) (map[string]bool, error) {
	ids := make([]string, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.TweetID)
	}

	rows, err := s.conn.Query(ctx, "SELECT DISTINCT tweet_id FROM job_postings WHERE tweet_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("query existing job postings: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tweet id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// newPostings keeps the first posting for each id not in existing.
func newPostings(postings []*models.JobPosting, existing map[string]bool) []*models.JobPosting {
	seen := make(map[string]bool, len(postings))
	fresh := make([]*models.JobPosting, 0, len(postings))
	for _, p := range postings {
		if existing[p.TweetID] || seen[p.TweetID] {
			continue
		}
		seen[p.TweetID] = true
		fresh = append(fresh, p)
	}
	return fresh
}

func (s *Store) CountJobPostings(ctx context.Context) (int, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, "SELECT uniqExact(tweet_id) FROM job_postings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count job postings: %w", err)
	}
	return int(count), nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}
