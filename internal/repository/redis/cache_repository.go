package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
)

// CacheRepository backs the catalog/user caches and the notification
// queue on a single Redis client.
type CacheRepository struct {
	client *redis.Client
}

var _ domain.NotificationQueue = (*CacheRepository)(nil)

// NewCacheRepository creates a new Redis cache repository
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

// Cache keys
const (
	CatalogKey    = "catalog:products"
	UserKeyPrefix = "user:"

	NotificationQueueKey = "notification_queue"

	// TTL durations
	CatalogCacheTTL = 5 * time.Minute
	UserCacheTTL    = 30 * time.Minute
)

// Catalog caching
func (r *CacheRepository) CacheCatalog(products []*domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		logger.Error("Failed to marshal catalog for cache", logger.ErrorField(err))
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	err = r.client.Set(context.Background(), CatalogKey, data, CatalogCacheTTL).Err()
	if err != nil {
		logger.Error("Failed to cache catalog", logger.ErrorField(err))
		return fmt.Errorf("failed to cache catalog: %w", err)
	}

	logger.Debug("Catalog cached successfully",
		logger.Int("products", len(products)),
	)

	return nil
}

func (r *CacheRepository) GetCatalog() ([]*domain.Product, error) {
	data, err := r.client.Get(context.Background(), CatalogKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		logger.Error("Failed to get catalog from cache", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get catalog from cache: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		logger.Error("Failed to unmarshal cached catalog", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to unmarshal cached catalog: %w", err)
	}

	return products, nil
}

func (r *CacheRepository) InvalidateCatalog() error {
	err := r.client.Del(context.Background(), CatalogKey).Err()
	if err != nil {
		logger.Error("Failed to invalidate catalog cache", logger.ErrorField(err))
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// User caching
func (r *CacheRepository) CacheUser(user *domain.User) error {
	key := UserKeyPrefix + user.ID

	data, err := json.Marshal(user)
	if err != nil {
		logger.Error("Failed to marshal user for cache",
			logger.String("user_id", user.ID),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	err = r.client.Set(context.Background(), key, data, UserCacheTTL).Err()
	if err != nil {
		logger.Error("Failed to cache user",
			logger.String("user_id", user.ID),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

func (r *CacheRepository) GetUser(userID string) (*domain.User, error) {
	key := UserKeyPrefix + userID

	data, err := r.client.Get(context.Background(), key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		logger.Error("Failed to get user from cache",
			logger.String("user_id", userID),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		logger.Error("Failed to unmarshal cached user",
			logger.String("user_id", userID),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (r *CacheRepository) InvalidateUser(userID string) error {
	key := UserKeyPrefix + userID
	return r.client.Del(context.Background(), key).Err()
}

// Notification queue operations
func (r *CacheRepository) EnqueueNotification(n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		logger.Error("Failed to marshal notification",
			logger.String("kind", n.Kind),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = r.client.LPush(context.Background(), NotificationQueueKey, data).Err()
	if err != nil {
		logger.Error("Failed to enqueue notification",
			logger.String("kind", n.Kind),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	return nil
}

func (r *CacheRepository) DequeueNotification() (*domain.Notification, error) {
	result, err := r.client.BRPop(context.Background(), 5*time.Second, NotificationQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue empty
		}
		return nil, fmt.Errorf("failed to dequeue notification: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var n domain.Notification
	if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
		logger.Error("Failed to unmarshal queued notification", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to unmarshal queued notification: %w", err)
	}

	return &n, nil
}

func (r *CacheRepository) GetQueueLength() (int64, error) {
	length, err := r.client.LLen(context.Background(), NotificationQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// Health check
func (r *CacheRepository) Ping() error {
	return r.client.Ping(context.Background()).Err()
}
