package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
)

const dailyUsageKey = "usage:daily:pending"

// Counter buffers per-day token usage in a Redis hash and periodically folds
// it into the usage_trackings table. Without Redis it writes through.
type Counter struct {
	rdb   *redis.Client
	usage repository.UsageRepository
	key   string
}

func New(rdb *redis.Client, usage repository.UsageRepository) *Counter {
	return &Counter{rdb: rdb, usage: usage, key: dailyUsageKey}
}

// AddDailyUsage records tokens against the UTC date of at.
func (c *Counter) AddDailyUsage(ctx context.Context, userID string, at time.Time, tokens int64) error {
	if userID == "" || tokens <= 0 {
		return nil
	}
	date := at.UTC().Format(models.UsageDateLayout)
	if c.rdb == nil {
		return c.usage.AddDaily(ctx, []repository.DailyUsage{{UserID: userID, Date: date, Tokens: tokens}})
	}
	return c.rdb.HIncrBy(ctx, c.key, field(userID, date), tokens).Err()
}

// Flush drains the pending hash into the database.
// Uses RENAME to a temporary key so increments arriving mid-flush land in a fresh hash.
func (c *Counter) Flush(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}

	tmpKey := fmt.Sprintf("%s:tmp:%d", c.key, time.Now().UnixNano())
	if err := c.rdb.Rename(ctx, c.key, tmpKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}

	data, err := c.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	entries := parseEntries(data)
	if len(entries) > 0 {
		if err := c.usage.AddDaily(ctx, entries); err != nil {
			// Put the amounts back so the next flush retries them.
			c.restore(ctx, entries)
			c.rdb.Del(ctx, tmpKey)
			return err
		}
	}
	return c.rdb.Del(ctx, tmpKey).Err()
}

func (c *Counter) restore(ctx context.Context, entries []repository.DailyUsage) {
	pipe := c.rdb.Pipeline()
	for _, e := range entries {
		pipe.HIncrBy(ctx, c.key, field(e.UserID, e.Date), e.Tokens)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("failed to restore pending daily usage", "entries", len(entries), "err", err)
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (c *Counter) Run(ctx context.Context, interval time.Duration) {
	if c.rdb == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := c.Flush(context.WithoutCancel(ctx)); err != nil {
				slog.Error("final daily usage flush failed", "err", err)
			}
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				slog.Error("daily usage flush failed", "err", err)
			}
		}
	}
}

func field(userID, date string) string {
	return date + "|" + userID
}

// parseEntries turns hash fields into sorted rollup increments, skipping
// malformed fields and zero amounts.
func parseEntries(data map[string]string) []repository.DailyUsage {
	entries := make([]repository.DailyUsage, 0, len(data))
	for k, v := range data {
		date, userID, ok := strings.Cut(k, "|")
		if !ok || date == "" || userID == "" {
			continue
		}
		if _, err := time.Parse(models.UsageDateLayout, date); err != nil {
			continue
		}
		tokens, err := strconv.ParseInt(v, 10, 64)
		if err != nil || tokens == 0 {
			continue
		}
		entries = append(entries, repository.DailyUsage{UserID: userID, Date: date, Tokens: tokens})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}
