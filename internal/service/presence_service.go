package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceKeyPrefix = "presence:"
	onlineUsersKey    = "online_users"

	// Online marks expire rather than relying on clean disconnects; a
	// wedged connection stops refreshing and ages out.
	onlineTTL = 5 * time.Minute
)

// PresenceService tracks which users currently hold a live channel, backed
// by redis so presence survives across instances.
type PresenceService struct {
	client *redis.Client
}

func NewPresenceService(client *redis.Client) *PresenceService {
	return &PresenceService{client: client}
}

func (s *PresenceService) SetOnline(ctx context.Context, email string) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, onlineUsersKey, email)
	pipe.Set(ctx, presenceKeyPrefix+email, "online", onlineTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *PresenceService) SetOffline(ctx context.Context, email string) error {
	pipe := s.client.Pipeline()
	pipe.SRem(ctx, onlineUsersKey, email)
	pipe.Del(ctx, presenceKeyPrefix+email)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *PresenceService) IsOnline(ctx context.Context, email string) (bool, error) {
	status, err := s.client.Get(ctx, presenceKeyPrefix+email).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == "online", nil
}

func (s *PresenceService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, onlineUsersKey).Result()
}
