package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/pageflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const recordField = "record"

// Journal implements ports.ErrorJournal on a Redis stream.
type Journal struct {
	client *backend.Client
	stream string
	maxLen int64
}

type Option func(*Journal)

// WithStream sets the stream key.
func WithStream(stream string) Option {
	return func(j *Journal) {
		j.stream = stream
	}
}

// WithMaxLen caps the stream length. Zero keeps every record.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// New creates a new Redis journal with options.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		stream: "pageflow:errors",
		maxLen: 10000,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends the record to the stream.
func (j *Journal) Record(ctx context.Context, record domain.ErrorRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal error record: %w", err)
	}

	err = j.client.XAdd(ctx, &backend.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Values: map[string]any{recordField: data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to redis stream: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.ErrorRecord, error) {
	var (
		msgs []backend.XMessage
		err  error
	)
	if limit > 0 {
		msgs, err = j.client.XRevRangeN(ctx, j.stream, "+", "-", int64(limit)).Result()
	} else {
		msgs, err = j.client.XRevRange(ctx, j.stream, "+", "-").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read redis stream: %w", err)
	}

	records := make([]domain.ErrorRecord, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values[recordField].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no record", msg.ID)
		}
		var rec domain.ErrorRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error record %s: %w", msg.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
