// AngelaMos | 2026
// engagement.go

package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EngagementStore keeps likes and saves as redis sets. Both are
// ephemeral: losing redis loses them, which is the intended weight of
// a double-tap.
type EngagementStore interface {
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, count int64, err error)
	ToggleSave(ctx context.Context, postID, userID string) (saved bool, err error)
	LikeCount(ctx context.Context, postID string) (int64, error)
	Liked(ctx context.Context, postID, userID string) (bool, error)
	Saved(ctx context.Context, postID, userID string) (bool, error)
}

type engagementStore struct {
	redis *redis.Client
}

func NewEngagementStore(redisClient *redis.Client) EngagementStore {
	return &engagementStore{redis: redisClient}
}

func likeKey(postID string) string {
	return "feed:likes:" + postID
}

func saveKey(userID string) string {
	return "feed:saves:" + userID
}

func (s *engagementStore) ToggleLike(
	ctx context.Context,
	postID, userID string,
) (bool, int64, error) {
	key := likeKey(postID)

	added, err := s.redis.SAdd(ctx, key, userID).Result()
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	liked := added == 1
	if !liked {
		if err := s.redis.SRem(ctx, key, userID).Err(); err != nil {
			return false, 0, fmt.Errorf("toggle like: %w", err)
		}
	}

	count, err := s.redis.SCard(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}

	return liked, count, nil
}

func (s *engagementStore) ToggleSave(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	key := saveKey(userID)

	added, err := s.redis.SAdd(ctx, key, postID).Result()
	if err != nil {
		return false, fmt.Errorf("toggle save: %w", err)
	}

	if added == 1 {
		return true, nil
	}

	if err := s.redis.SRem(ctx, key, postID).Err(); err != nil {
		return false, fmt.Errorf("toggle save: %w", err)
	}

	return false, nil
}

func (s *engagementStore) LikeCount(
	ctx context.Context,
	postID string,
) (int64, error) {
	count, err := s.redis.SCard(ctx, likeKey(postID)).Result()
	if err != nil {
		return 0, fmt.Errorf("like count: %w", err)
	}
	return count, nil
}

func (s *engagementStore) Liked(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	liked, err := s.redis.SIsMember(ctx, likeKey(postID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("liked: %w", err)
	}
	return liked, nil
}

func (s *engagementStore) Saved(
	ctx context.Context,
	postID, userID string,
) (bool, error) {
	saved, err := s.redis.SIsMember(ctx, saveKey(userID), postID).Result()
	if err != nil {
		return false, fmt.Errorf("saved: %w", err)
	}
	return saved, nil
}
