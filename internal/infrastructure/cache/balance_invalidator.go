package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinv "github.com/stitchline/backend/internal/application/inventory"
	"github.com/stitchline/backend/internal/infrastructure/config"
)

const (
	// DefaultInvalidationChannel is the pub/sub channel balance invalidations
	// are broadcast on.
	DefaultInvalidationChannel = "stitchline:balance:invalidate"

	defaultCloseTimeout = 5 * time.Second
)

// BalanceInvalidationMessage is the payload broadcast when ledger writes make
// cached balances stale. Subscribers drop their cached balances for the
// listed SKUs.
type BalanceInvalidationMessage struct {
	SkuIDs    []uuid.UUID `json:"sku_ids"`
	Timestamp int64       `json:"timestamp"`
}

// RedisBalanceInvalidator broadcasts balance invalidations over Redis Pub/Sub.
// Delivery is best effort: the ledger is the source of truth and read caches
// recover by recomputing on miss.
type RedisBalanceInvalidator struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisBalanceInvalidatorOption is a functional option for configuring the invalidator
type RedisBalanceInvalidatorOption func(*RedisBalanceInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisBalanceInvalidatorOption {
	return func(i *RedisBalanceInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisBalanceInvalidatorOption {
	return func(i *RedisBalanceInvalidator) {
		i.logger = logger
	}
}

// NewRedisBalanceInvalidator creates an invalidator with its own Redis client
func NewRedisBalanceInvalidator(cfg config.RedisConfig, opts ...RedisBalanceInvalidatorOption) (*RedisBalanceInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	invalidator := &RedisBalanceInvalidator{
		client:     client,
		ownsClient: true,
		channel:    DefaultInvalidationChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisBalanceInvalidatorWithClient creates an invalidator with an existing
// Redis client. The caller retains ownership of the client and is responsible
// for closing it.
func NewRedisBalanceInvalidatorWithClient(client *redis.Client, opts ...RedisBalanceInvalidatorOption) *RedisBalanceInvalidator {
	invalidator := &RedisBalanceInvalidator{
		client:     client,
		ownsClient: false,
		channel:    DefaultInvalidationChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// InvalidateBalances broadcasts that the balances for the given SKUs are stale
func (i *RedisBalanceInvalidator) InvalidateBalances(ctx context.Context, skuIDs []uuid.UUID) error {
	if len(skuIDs) == 0 {
		return nil
	}

	msg := BalanceInvalidationMessage{
		SkuIDs:    skuIDs,
		Timestamp: time.Now().UnixNano(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		i.logger.Error("Failed to marshal balance invalidation message",
			zap.Int("sku_count", len(skuIDs)),
			zap.Error(err))
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish balance invalidation message",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("Published balance invalidation message",
		zap.Int("sku_count", len(skuIDs)),
		zap.String("channel", i.channel))

	return nil
}

// Subscribe starts listening for balance invalidation messages. The callback
// is invoked for each received message. This method blocks and should be
// called in a goroutine.
func (i *RedisBalanceInvalidator) Subscribe(ctx context.Context, callback func(msg BalanceInvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to balance invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Balance invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Balance invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var invalidation BalanceInvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &invalidation); err != nil {
				i.logger.Error("Failed to unmarshal balance invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			// Run the callback off the receive loop so a slow subscriber
			// cannot stall delivery
			go func(m BalanceInvalidationMessage) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in balance invalidation callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(invalidation)
		}
	}
}

// markDone safely marks the invalidator as done
func (i *RedisBalanceInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close releases any resources held by the invalidator
func (i *RedisBalanceInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (i *RedisBalanceInvalidator) GetClient() *redis.Client {
	return i.client
}

// Ensure RedisBalanceInvalidator implements BalanceCacheInvalidator
var _ appinv.BalanceCacheInvalidator = (*RedisBalanceInvalidator)(nil)
