package messaging

import (
	"context"
	"time"

	"hirefeed/internal/config"
	"hirefeed/internal/errors"
	"hirefeed/internal/models"
	"hirefeed/internal/telemetry"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("hirefeed/messaging")

const (
	JobPostingsSubject = "jobs.new"

	// Nats-Msg-Id lets JetStream streams on the subject drop redeliveries.
	msgIDHeader = "Nats-Msg-Id"
)

var msgIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

type Publisher interface {
	PublishJobPosting(ctx context.Context, posting *models.JobPosting) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewPublisher connects to NATS, or returns a no-op publisher when no URL
// is configured.
func NewPublisher(logger *zap.Logger, config *config.Config) (Publisher, error) {
	if config.NATSURL == "" {
		logger.Debug("NATS_URL not set, job postings will not be published")
		return NopPublisher{}, nil
	}

	opts := []nats.Option{
		nats.Name("hirefeed"),
		nats.Timeout(config.NATSConnTimeout),
		nats.ReconnectWait(time.Second),
	}

	conn, err := nats.Connect(config.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}, nil
}

// MessageID is stable for a tweet id, so a re-published posting carries
// the same id.
func MessageID(posting *models.JobPosting) string {
	return uuid.NewSHA1(msgIDNamespace, []byte(posting.TweetID)).String()
}

func (p *natsPublisher) PublishJobPosting(ctx context.Context, posting *models.JobPosting) error {
	_, span := tracer.Start(ctx, "PublishJobPosting")
	defer span.End()

	data, err := posting.MarshalBinary()
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling job posting", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobPostingsSubject),
		telemetry.Int("message.size", len(data)),
	)

	msg := nats.NewMsg(JobPostingsSubject)
	msg.Data = data
	msg.Header.Set(msgIDHeader, MessageID(posting))

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job posting",
			zap.String("tweet_id", posting.TweetID),
			zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published job posting",
		zap.String("tweet_id", posting.TweetID),
		zap.String("subject", JobPostingsSubject))
	return nil
}

// Close flushes buffered messages before closing the connection.
func (p *natsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Flush(); err != nil {
			p.logger.Warn("failed to flush NATS connection", zap.Error(err))
		}
		p.conn.Close()
	}
}

type NopPublisher struct{}

func (NopPublisher) PublishJobPosting(context.Context, *models.JobPosting) error { return nil }

func (NopPublisher) Close() {}
