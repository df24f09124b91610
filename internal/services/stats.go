package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"fanhub/internal/models"
	"fanhub/internal/repositories"
)

const (
	statsCacheKey = "cache:platform_stats"
	statsCacheTTL = 5 * time.Minute
)

// StatsService computes platform-wide numbers, caching them in Redis
// so the public stats endpoint does not hit Postgres on every request.
type StatsService struct {
	profiles repositories.ProfileRepository
	billing  repositories.BillingRepository
	redis    *redis.Client
}

// NewStatsService constructs a StatsService.
func NewStatsService(profiles repositories.ProfileRepository, billing repositories.BillingRepository, client *redis.Client) *StatsService {
	return &StatsService{profiles: profiles, billing: billing, redis: client}
}

// PlatformStats returns cached stats, recomputing on miss.
func (s *StatsService) PlatformStats(ctx context.Context) (models.PlatformStats, error) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var cached models.PlatformStats
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("stats cache read failed: %v", err)
		}
	}

	creators, err := s.profiles.CountCreators(ctx)
	if err != nil {
		return models.PlatformStats{}, err
	}
	supporters, err := s.profiles.CountSupporters(ctx)
	if err != nil {
		return models.PlatformStats{}, err
	}
	earnings, err := s.billing.TotalCompletedAmount(ctx)
	if err != nil {
		return models.PlatformStats{}, err
	}

	stats := models.PlatformStats{
		CreatorCount:   creators,
		SupporterCount: supporters,
		TotalEarnings:  earnings,
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				log.Printf("stats cache write failed: %v", err)
			}
		}
	}
	return stats, nil
}
