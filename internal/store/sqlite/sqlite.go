package sqlite

import (
	"context"
	"fmt"

	"hirefeed/internal/models"
	"hirefeed/internal/store"
	"hirefeed/internal/telemetry"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("hirefeed/store/sqlite")

type jobPostingRow struct {
	bun.BaseModel `bun:"table:job_postings"`

	ID        int64  `bun:"id,pk,autoincrement"`
	TweetID   string `bun:"tweet_id,notnull"`
	Content   string `bun:"content,notnull"`
	Author    string `bun:"author,notnull"`
	URL       string `bun:"url,notnull"`
	CreatedAt string `bun:"created_at,notnull"`
	Keywords  string `bun:"keywords,notnull"`
}

func newRow(p *models.JobPosting) *jobPostingRow {
	return &jobPostingRow{
		TweetID:   p.TweetID,
		Content:   p.Content,
		Author:    p.Author,
		URL:       p.URL,
		CreatedAt: p.CreatedAt,
		Keywords:  p.Keywords,
	}
}

type Store struct {
	db     *bun.DB
	logger *zap.Logger
}

func New(db *bun.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) SaveJobPostings(ctx context.Context, postings []*models.JobPosting) (store.SaveResult, error) {
	ctx, span := tracer.Start(ctx, "SaveJobPostings")
	defer span.End()

	var result store.SaveResult
	if len(postings) == 0 {
		return result, nil
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, posting := range postings {
			inserted, err := s.insertIgnore(ctx, tx, posting)
			if err != nil {
				result.Failed++
				s.logger.Error("failed to save job posting",
					zap.String("tweet_id", posting.TweetID),
					zap.Error(err))
				continue
			}
			if !inserted {
				result.Duplicates++
				s.logger.Debug("job posting already stored", zap.String("tweet_id", posting.TweetID))
				continue
			}
			result.Saved = append(result.Saved, posting)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return store.SaveResult{Failed: len(postings)}, fmt.Errorf("save job postings: %w", err)
	}

	span.SetAttributes(
		telemetry.Int("postings.inserted", result.Inserted()),
		telemetry.Int("postings.duplicates", result.Duplicates),
		telemetry.Int("postings.failed", result.Failed),
	)
	return result, nil
}

func (s *Store) insertIgnore(ctx context.Context, tx bun.Tx, posting *models.JobPosting) (bool, error) {
	res, err := tx.NewInsert().
		Model(newRow(posting)).
		ExcludeColumn("id").
		On("CONFLICT (tweet_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert job posting: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) CountJobPostings(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*jobPostingRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count job postings: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
