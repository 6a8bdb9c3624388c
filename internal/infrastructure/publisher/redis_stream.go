package publisher

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/propline/internal/domain/marketquote"
)

const DefaultStreamPrefix = "props.line_changes"

// RedisStreamPublisher fans line changes out to one Redis stream per sport.
// Stream key format: {prefix}.{sport}
type RedisStreamPublisher struct {
	client redis.UniversalClient
	prefix string
	maxLen int64
}

// NewRedisStreamPublisher trims each stream to roughly maxLen entries when
// maxLen > 0.
func NewRedisStreamPublisher(client redis.UniversalClient, prefix string, maxLen int64) *RedisStreamPublisher {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultStreamPrefix
	}
	return &RedisStreamPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

func (p *RedisStreamPublisher) StreamKey(sport string) string {
	return p.prefix + "." + strings.ToLower(strings.TrimSpace(sport))
}

// PublishLineChanges writes every change through a single pipeline.
func (p *RedisStreamPublisher) PublishLineChanges(ctx context.Context, sport string, changes []marketquote.LineChange) error {
	if len(changes) == 0 {
		return nil
	}

	streamKey := p.StreamKey(sport)
	pipe := p.client.Pipeline()
	for _, change := range changes {
		data, err := sonic.MarshalString(change)
		if err != nil {
			return errors.Wrapf(err, "marshal line change quote=%s", change.QuotePublic)
		}

		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: streamKey,
			MaxLen: p.maxLen,
			Approx: p.maxLen > 0,
			Values: map[string]any{
				"quote_id": change.QuotePublic,
				"run_id":   change.RunID,
				"data":     data,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "publish %d line changes to stream %s", len(changes), streamKey)
	}
	return nil
}
