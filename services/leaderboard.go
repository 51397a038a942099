package services

import (
	"context"
	"encoding/json"

	"spellbook-system/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LeaderboardEntry is the public ranking row; XP values are non-increasing in
// list order.
type LeaderboardEntry struct {
	Username string `json:"username"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
}

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100

	// Redis layout: a sorted set of userID -> XP plus a hash of userID ->
	// entry JSON, rebuilt together by the scheduler.
	keyLeaderboardXP   = "leaderboard:xp"
	keyLeaderboardInfo = "leaderboard:info"

	// rebuildCap bounds how many users a cache rebuild snapshots.
	rebuildCap = 1000
)

type LeaderboardService struct {
	DB    *gorm.DB
	Redis *redis.Client // nil disables the cache; reads fall through to the DB
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Redis: rdb}
}

// Top returns up to limit users ordered by XP descending. Out-of-range limits
// clamp to the default/max instead of erroring.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if s.Redis != nil {
		if entries, err := s.topFromCache(ctx, limit); err == nil && len(entries) > 0 {
			return entries, nil
		}
		// cold or unreachable cache: answer from the database
	}
	return s.topFromDB(limit)
}

func (s *LeaderboardService) topFromDB(limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := s.DB.Model(&models.User{}).
		Select("username, xp, level").
		Order("xp DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

func (s *LeaderboardService) topFromCache(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	ids, err := s.Redis.ZRevRange(ctx, keyLeaderboardXP, 0, int64(limit-1)).Result()
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	raw, err := s.Redis.HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(raw))
	for _, v := range raw {
		payload, ok := v.(string)
		if !ok {
			continue
		}
		var e LeaderboardEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RebuildCache snapshots the users table into the sorted set. The delete and
// repopulate run in one MULTI/EXEC block so readers never see a half-built
// board.
func (s *LeaderboardService) RebuildCache(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}

	var users []models.User
	if err := s.DB.Select("id, username, xp, level").
		Order("xp DESC").
		Limit(rebuildCap).
		Find(&users).Error; err != nil {
		return err
	}

	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, keyLeaderboardXP, keyLeaderboardInfo)
	for _, u := range users {
		payload, err := json.Marshal(LeaderboardEntry{Username: u.Username, XP: u.XP, Level: u.Level})
		if err != nil {
			return err
		}
		pipe.ZAdd(ctx, keyLeaderboardXP, redis.Z{Score: float64(u.XP), Member: u.ID})
		pipe.HSet(ctx, keyLeaderboardInfo, u.ID, payload)
	}
	_, err := pipe.Exec(ctx)
	return err
}
