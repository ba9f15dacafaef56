// Package leaderboard keeps cross-room player rankings and recent match
// history in Redis.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/quizarena/internal/arena"
)

// HistorySize is the number of match summaries kept.
const HistorySize = 100

type Entry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Points   int64  `json:"points"`
	Wins     int64  `json:"wins"`
}

type Board struct {
	rdb    *redis.Client
	prefix string
}

// New returns a Board whose keys all start with prefix.
func New(rdb *redis.Client, prefix string) *Board {
	return &Board{rdb: rdb, prefix: prefix}
}

func (b *Board) key(name string) string { return b.prefix + name }

// Record adds a finished match to the rankings. All writes go in one
// MULTI/EXEC so a match is counted entirely or not at all.
func (b *Board) Record(ctx context.Context, res arena.MatchResult) error {
	summary, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding match: %w", err)
	}

	_, err = b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range res.Standings {
			if s.Score > 0 {
				pipe.ZIncrBy(ctx, b.key("points"), float64(s.Score), s.PlayerID)
			}
			pipe.HSet(ctx, b.key("names"), s.PlayerID, s.Name)
		}
		for _, id := range winners(res) {
			pipe.ZIncrBy(ctx, b.key("wins"), 1, id)
		}
		pipe.LPush(ctx, b.key("matches"), summary)
		pipe.LTrim(ctx, b.key("matches"), 0, HistorySize-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording match %s: %w", res.ID, err)
	}
	return nil
}

// Top returns the n highest point totals.
func (b *Board) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	zs, err := b.rdb.ZRevRangeWithScores(ctx, b.key("points"), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	if len(zs) == 0 {
		return []Entry{}, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.Member.(string)
	}

	pipe := b.rdb.Pipeline()
	names := pipe.HMGet(ctx, b.key("names"), ids...)
	wins := make([]*redis.FloatCmd, len(ids))
	for i, id := range ids {
		wins[i] = pipe.ZScore(ctx, b.key("wins"), id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reading player details: %w", err)
	}

	nameVals := names.Val()
	entries := make([]Entry, len(zs))
	for i, z := range zs {
		e := Entry{Rank: i + 1, PlayerID: ids[i], Name: ids[i], Points: int64(z.Score)}
		if i < len(nameVals) {
			if s, ok := nameVals[i].(string); ok && s != "" {
				e.Name = s
			}
		}
		if w, err := wins[i].Result(); err == nil {
			e.Wins = int64(w)
		}
		entries[i] = e
	}
	return entries, nil
}

// Recent returns up to n match summaries, newest first.
func (b *Board) Recent(ctx context.Context, n int) ([]arena.MatchResult, error) {
	if n <= 0 {
		return []arena.MatchResult{}, nil
	}
	raw, err := b.rdb.LRange(ctx, b.key("matches"), 0, int64(min(n, HistorySize)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading match history: %w", err)
	}

	out := make([]arena.MatchResult, 0, len(raw))
	for _, r := range raw {
		var m arena.MatchResult
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("decoding match history: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// winners returns the players credited with a win. Only completed matches
// award wins; everyone tied for a positive top score gets one.
func winners(res arena.MatchResult) []string {
	if !res.Completed || len(res.Standings) == 0 {
		return nil
	}
	top := res.Standings[0].Score
	if top <= 0 {
		return nil
	}
	var ids []string
	for _, s := range res.Standings {
		if s.Score != top {
			break
		}
		ids = append(ids, s.PlayerID)
	}
	return ids
}
