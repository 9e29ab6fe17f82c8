package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/models"
)

// ProfileCacheRepository keeps serialized user records in Redis so repeated
// profile reads skip the store. Entries are invalidated on every mutation.
type ProfileCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached profiles
}

// NewProfileCacheRepository creates a new repository instance with a TTL.
func NewProfileCacheRepository(client *redis.Client, expiration time.Duration) *ProfileCacheRepository {
	return &ProfileCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func profileKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Get returns the cached user or nil on a miss.
func (r *ProfileCacheRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	key := profileKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logger.Log.Errorw("profile cache get failed", "key", key, "error", err)
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		logger.Log.Errorw("profile cache entry corrupt", "key", key, "error", err)
		return nil, err
	}

	return &user, nil
}

// Set caches the user record with the configured expiration.
func (r *ProfileCacheRepository) Set(ctx context.Context, user *models.User) error {
	key := profileKey(user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()
	if err != nil {
		logger.Log.Errorw("profile cache set failed", "key", key, "error", err)
	}

	return err
}

// Delete drops the cached record, if any.
func (r *ProfileCacheRepository) Delete(ctx context.Context, userID string) error {
	key := profileKey(userID)

	err := r.client.Del(ctx, key).Err()
	if err != nil {
		logger.Log.Errorw("profile cache delete failed", "key", key, "error", err)
	}

	return err
}
