package counter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/database"
)

func TestParseEntries(t *testing.T) {
	got := parseEntries(map[string]string{
		field("user_b", "2025-01-02"): "10",
		field("user_a", "2025-01-02"): "5",
		field("user_a", "2025-01-01"): "7",
		field("user_c", "2025-01-01"): "0",
		"no-separator":                "3",
		"not-a-date|user_d":           "3",
		field("user_e", "2025-01-01"): "x",
	})

	assert.Equal(t, []repository.DailyUsage{
		{UserID: "user_a", Date: "2025-01-01", Tokens: 7},
		{UserID: "user_a", Date: "2025-01-02", Tokens: 5},
		{UserID: "user_b", Date: "2025-01-02", Tokens: 10},
	}, got)
}

func TestFieldKeepsUserIDIntact(t *testing.T) {
	entries := parseEntries(map[string]string{field("user_2abc|x", "2025-03-04"): "1"})
	require.Len(t, entries, 1)
	assert.Equal(t, "user_2abc|x", entries[0].UserID)
}

func TestAddDailyUsageWritesThroughWithoutRedis(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	usage := repository.NewUsageRepository(db)
	c := New(nil, usage)

	day := time.Date(2025, 5, 6, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	require.NoError(t, c.AddDailyUsage(ctx, "user_1", day, 120))
	require.NoError(t, c.AddDailyUsage(ctx, "user_1", day, 30))
	require.NoError(t, c.AddDailyUsage(ctx, "user_1", day, 0))
	require.NoError(t, c.AddDailyUsage(ctx, "", day, 10))

	rows, err := usage.ListDaily(ctx, "user_1", "2025-05-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-05-06", rows[0].Date)
	assert.Equal(t, int64(150), rows[0].TokensUsed)

	assert.NoError(t, c.Flush(ctx))
}
