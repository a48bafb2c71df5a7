package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change is one typed row-level change on a table. Consumers treat any
// change as a signal to refetch whatever view they hold; the payload is
// deliberately small.
type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
}

// Bus fans change events out to every subscriber. Publish never blocks on
// slow consumers.
type Bus interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(ctx context.Context) (<-chan Change, func())
	Close() error
}

// RedisBus carries changes over a redis pub/sub channel so every server
// instance sees writes made through any other instance.
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(redisURL, channel string) (*RedisBus, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBus{
		client:  client,
		channel: channel,
	}, nil
}

func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Change, func()) {
	sub := b.client.Subscribe(ctx, b.channel)
	out := make(chan Change, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				logger.Debug.Printf("Dropping malformed change event: %v", err)
				continue
			}
			select {
			case out <- change:
			default:
				// slow consumer, drop rather than stall the feed
			}
		}
	}()

	return out, func() { sub.Close() }
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

// MemoryBus is a single-process bus used when no redis URL is configured,
// and in tests.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[int]chan Change
	next int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan Change)}
}

func (b *MemoryBus) Publish(_ context.Context, change Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context) (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Change, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
